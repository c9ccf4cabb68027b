package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/archive"
	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/input"
)

func writePNG(t *testing.T, path string, ink image.Rectangle) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := ink.Min.Y; y < ink.Max.Y; y++ {
		for x := ink.Min.X; x < ink.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "I", "1.png"), image.Rect(30, 5, 34, 60))
	writePNG(t, filepath.Join(dir, "I", "2.png"), image.Rect(20, 10, 25, 50))
	writePNG(t, filepath.Join(dir, "_", "1.png"), image.Rect(5, 30, 60, 34))
	writePNG(t, filepath.Join(dir, "_", "blank.png"), image.Rectangle{})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "I", "notes.txt"), []byte("x"), 0600))

	d := strokes.Drawing{Width: 280, Height: 280, Strokes: []strokes.Stroke{
		{Width: 15, Points: []strokes.Point{{X: 40, Y: 140}, {X: 240, Y: 140}}},
	}}
	data, err := d.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_", "3"+strokes.Extension), data, 0600))

	s := NewService(testOptions())
	report, err := s.ImportDir(context.Background(), dir, input.DefaultOptions(), 2)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Added)
	assert.Len(t, report.Skipped, 1)
	assert.Equal(t, map[string]int{"I": 2, "_": 2}, s.Counts())
}

func TestImportDirEmpty(t *testing.T) {
	s := NewService(testOptions())
	_, err := s.ImportDir(context.Background(), t.TempDir(), input.DefaultOptions(), 1)
	assert.Error(t, err)

	_, err = s.ImportDir(context.Background(), filepath.Join(t.TempDir(), "missing"), input.DefaultOptions(), 1)
	assert.Error(t, err)
}

func TestImportDirCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "bad.png"), []byte("not a png"), 0600))

	s := NewService(testOptions())
	_, err := s.ImportDir(context.Background(), dir, input.DefaultOptions(), 4)
	assert.Error(t, err)
	assert.False(t, s.HasData())
}

func TestBundleRestore(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.Train(context.Background()))

	z, err := s.Bundle()
	require.NoError(t, err)
	assert.True(t, z.Content.Trained)
	assert.Equal(t, 12, z.Content.SampleCount)

	var buf bytes.Buffer
	require.NoError(t, z.Write(&buf))
	read := archive.NewZip()
	require.NoError(t, read.Read(bytes.NewReader(buf.Bytes()), int64(buf.Len())))

	other := NewService(testOptions())
	require.NoError(t, other.Restore(read))
	assert.True(t, other.IsTrained())
	assert.Equal(t, s.Counts(), other.Counts())
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.json")
	modelPath := filepath.Join(dir, "model.json")

	s := seeded(t)
	require.NoError(t, s.Save(dataPath, modelPath))
	_, err := os.Stat(modelPath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, s.Train(context.Background()))
	require.NoError(t, s.Save(dataPath, modelPath))

	other := NewService(testOptions())
	require.NoError(t, other.Load(dataPath, modelPath))
	assert.True(t, other.IsTrained())
	assert.Equal(t, 12, other.Store().Len())

	fresh := NewService(testOptions())
	require.NoError(t, fresh.Load(filepath.Join(dir, "none.json"), filepath.Join(dir, "none-model.json")))
	assert.False(t, fresh.HasData())
}
