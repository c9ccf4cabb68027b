package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/input"
	"github.com/inkocr/inkocr/normalize"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "a/b.28.png", outputPath("a/b.ink", "", "png"))
	assert.Equal(t, "x.json", outputPath("a/b.ink", "x.json", "json"))
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	d := strokes.Drawing{Width: 280, Height: 280, Strokes: []strokes.Stroke{
		{Width: 15, Points: []strokes.Point{{X: 140, Y: 30}, {X: 140, Y: 250}}},
	}}
	data, err := d.MarshalBinary()
	require.NoError(t, err)
	src := filepath.Join(dir, "one.ink")
	require.NoError(t, os.WriteFile(src, data, 0600))

	require.NoError(t, convert(src, "", "json", 1, input.DefaultOptions()))
	raw, err := os.ReadFile(filepath.Join(dir, "one.28.json"))
	require.NoError(t, err)
	var vec []float64
	require.NoError(t, json.Unmarshal(raw, &vec))
	assert.NoError(t, normalize.Valid(vec))

	require.NoError(t, convert(src, "", "png", 2, input.DefaultOptions()))
	_, err = os.Stat(filepath.Join(dir, "one.28.png"))
	assert.NoError(t, err)

	assert.Error(t, convert("", "", "png", 1, input.DefaultOptions()))
	assert.Error(t, convert(src, "", "gif", 1, input.DefaultOptions()))
}
