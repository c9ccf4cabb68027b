package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/normalize"
)

func vec(v float64) []float64 {
	res := make([]float64, normalize.VectorLen)
	for i := range res {
		res[i] = v
	}
	return res
}

func TestAddAssignsIDAndLabels(t *testing.T) {
	s := NewStore()
	v0 := s.Version()

	a, err := s.Add(Sample{ImageData: vec(0.5), Label: " a "})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "a", a.Label)
	assert.NotEqual(t, v0, s.Version())

	_, err = s.Add(Sample{ImageData: vec(0), Label: "b", ID: "fixed"})
	require.NoError(t, err)
	_, err = s.Add(Sample{ImageData: vec(1), Label: "a"})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b"}, s.Labels())
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, s.Counts())

	got, ok := s.Get("fixed")
	require.True(t, ok)
	assert.Equal(t, "b", got.Label)

	_, err = s.Add(Sample{ImageData: vec(0), Label: "c", ID: "fixed"})
	assert.Error(t, err)
}

func TestAddRejectsInvalid(t *testing.T) {
	s := NewStore()
	_, err := s.Add(Sample{ImageData: vec(0), Label: "  "})
	assert.Error(t, err)
	_, err = s.Add(Sample{ImageData: make([]float64, 10), Label: "a"})
	assert.Error(t, err)
	_, err = s.Add(Sample{ImageData: vec(2), Label: "a"})
	assert.Error(t, err)
	assert.False(t, s.HasData())
}

func TestRemoveRecomputesLabels(t *testing.T) {
	s := NewStore()
	a, _ := s.Add(Sample{ImageData: vec(0), Label: "a"})
	_, _ = s.Add(Sample{ImageData: vec(0), Label: "b"})

	assert.False(t, s.Remove("missing"))
	assert.True(t, s.Remove(a.ID))
	assert.Equal(t, []string{"b"}, s.Labels())
	assert.Equal(t, map[string]int{"b": 1}, s.Counts())

	s.Clear()
	assert.Empty(t, s.Labels())
	assert.False(t, s.HasData())
}

func TestSamplesPreservesOrderAndCopies(t *testing.T) {
	s := NewStore()
	for _, l := range []string{"c", "a", "b"} {
		_, err := s.Add(Sample{ImageData: vec(0), Label: l})
		require.NoError(t, err)
	}
	samples := s.Samples()
	assert.Equal(t, "c", samples[0].Label)
	assert.Equal(t, "b", samples[2].Label)

	samples[0].Label = "z"
	assert.Equal(t, "c", s.Samples()[0].Label)
}

func TestReadiness(t *testing.T) {
	s := NewStore()
	for i := 0; i < 9; i++ {
		_, _ = s.Add(Sample{ImageData: vec(0), Label: []string{"a", "b"}[i%2]})
	}
	ok, msg := s.Readiness()
	assert.False(t, ok)
	assert.Contains(t, msg, "at least 10 samples")

	_, _ = s.Add(Sample{ImageData: vec(0), Label: "a"})
	ok, _ = s.Readiness()
	assert.True(t, ok)

	one := NewStore()
	for i := 0; i < 12; i++ {
		_, _ = one.Add(Sample{ImageData: vec(0), Label: "a"})
	}
	ok, _ = one.Readiness()
	assert.False(t, ok)
}

func TestExportImport(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Sample{ImageData: vec(0.25), Label: "x", ID: "1"})
	_, _ = s.Add(Sample{ImageData: vec(0.75), Label: "y", ID: "2"})

	data, err := s.Export()
	require.NoError(t, err)

	other := NewStore()
	require.NoError(t, other.Import(data))
	assert.Equal(t, s.Samples(), other.Samples())
	assert.Equal(t, []string{"x", "y"}, other.Labels())

	empty, err := NewStore().Export()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestImportInvalidLeavesStoreUnchanged(t *testing.T) {
	s := NewStore()
	_, _ = s.Add(Sample{ImageData: vec(0), Label: "keep"})

	assert.Error(t, s.Import([]byte("not json")))
	assert.Error(t, s.Import([]byte(`[{"imageData":[0.1],"label":"a","id":"1"}]`)))
	assert.Error(t, s.Import([]byte("null")))
	assert.Error(t, s.Import([]byte(" null ")))
	assert.Equal(t, []string{"keep"}, s.Labels())
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Import([]byte("[]")))
	assert.False(t, s.HasData())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := NewStore()
	_, _ = s.Add(Sample{ImageData: vec(0.5), Label: "q"})
	require.NoError(t, s.Save(path))

	loaded := NewStore()
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, s.Samples(), loaded.Samples())
}
