package strokes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalBinary(t *testing.T) {
	points := make([]Point, 0)
	for i := 0; i < 50; i++ {
		points = append(points, Point{X: 100, Y: float32(i), Pressure: .3})
	}

	d := Drawing{
		Width:  280,
		Height: 280,
		Strokes: []Stroke{
			{Width: 15, Points: points},
			{Width: 15, Points: []Point{{X: 10, Y: 10}, {X: 200, Y: 250, Pressure: 1}}},
			{Width: 15},
		},
	}

	data, err := d.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, HeaderV1, string(data[:HeaderLen]))

	var got Drawing
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, d.Width, got.Width)
	assert.Equal(t, d.Height, got.Height)
	require.Len(t, got.Strokes, 3)
	assert.Equal(t, points, got.Strokes[0].Points)
	assert.Equal(t, d.Strokes[1], got.Strokes[1])
	assert.Empty(t, got.Strokes[2].Points)
	assert.Equal(t, 52, got.PointCount())
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var d Drawing
	assert.Error(t, d.UnmarshalBinary([]byte("short")))
	assert.Error(t, d.UnmarshalBinary([]byte("reMarkable .lines file, version=5          ")))

	good, err := (&Drawing{Width: 1, Height: 1, Strokes: []Stroke{{Points: []Point{{X: 1}}}}}).MarshalBinary()
	require.NoError(t, err)
	assert.Error(t, d.UnmarshalBinary(good[:len(good)-4]))
}

func TestDownsample(t *testing.T) {
	short := []Point{{X: 1}, {X: 2}, {X: 3}}
	assert.Equal(t, short, Downsample(short))

	long := make([]Point, 1001)
	for i := range long {
		long[i] = Point{X: float32(i)}
	}
	got := Downsample(long)
	assert.True(t, len(got) < len(long)/3)
	assert.Equal(t, long[0], got[0])
	assert.Equal(t, long[len(long)-1], got[len(got)-1])
}
