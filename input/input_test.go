package input

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/normalize"
)

func cross() strokes.Drawing {
	return strokes.Drawing{
		Width:  280,
		Height: 280,
		Strokes: []strokes.Stroke{
			{Width: 15, Points: []strokes.Point{{X: 60, Y: 60}, {X: 220, Y: 220}}},
			{Width: 15, Points: []strokes.Point{{X: 220, Y: 60}, {X: 60, Y: 220}}},
		},
	}
}

func TestDrawing(t *testing.T) {
	vec, err := Drawing(cross(), 280, 280)
	require.NoError(t, err)
	require.NoError(t, normalize.Valid(vec))

	_, err = Drawing(strokes.Drawing{}, 280, 280)
	assert.Equal(t, ErrEmpty, err)
}

func TestLoadStrokeFile(t *testing.T) {
	d := cross()
	data, err := d.MarshalBinary()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "x"+strokes.Extension)
	require.NoError(t, os.WriteFile(path, data, 0600))
	assert.True(t, Supported(path))

	got, err := Load(path, DefaultOptions())
	require.NoError(t, err)
	want, err := Drawing(d, 280, 280)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadInvertedPNG(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 20; y < 80; y++ {
		for x := 45; x < 55; x++ {
			img.SetGray(x, y, color.Gray{})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "bar.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))

	// dark on light without inversion is all ink
	plain, err := Load(path, DefaultOptions())
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Invert = true
	inverted, err := Load(path, opts)
	require.NoError(t, err)
	assert.NotEqual(t, plain, inverted)
	assert.Equal(t, 0.0, inverted[0])
}

func TestUnsupported(t *testing.T) {
	assert.False(t, Supported("notes.txt"))
	assert.True(t, Supported("A.PNG"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.png"), DefaultOptions())
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	vec := make([]float64, normalize.VectorLen)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, vec, 2))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 56, 56), img.Bounds())
}
