package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/dataset"
	"github.com/inkocr/inkocr/normalize"
)

func samples(n int) []dataset.Sample {
	res := make([]dataset.Sample, n)
	for i := range res {
		vec := make([]float64, normalize.VectorLen)
		vec[i%normalize.VectorLen] = 1
		res[i] = dataset.Sample{ImageData: vec, Label: string(rune('a' + i%26)), ID: string(rune('A' + i%26))}
	}
	return res
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(DefaultOptions()).Write(&buf, samples(5)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWriteManyPages(t *testing.T) {
	opts := DefaultOptions()
	opts.Columns = 2
	opts.Borders = false

	var one, many bytes.Buffer
	require.NoError(t, New(opts).Write(&one, samples(2)))
	require.NoError(t, New(opts).Write(&many, samples(60)))
	assert.True(t, many.Len() > one.Len())
}

func TestWriteRejectsBadSample(t *testing.T) {
	bad := []dataset.Sample{{Label: "x", ImageData: []float64{1, 2}}}
	assert.Error(t, New(DefaultOptions()).Write(&bytes.Buffer{}, bad))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	require.NoError(t, New(Options{Columns: 4}).WriteFile(path, samples(3)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
