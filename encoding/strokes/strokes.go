// Package strokes defines the ink recorded on a drawing surface and its
// binary file format.
//
// A stroke file is a fixed-length text header followed by little-endian
// values: canvas width and height (uint32), the number of strokes (uint32)
// and for every stroke its line width (float32), its number of points
// (uint32) and the points as x, y, pressure (float32).
package strokes

const (
	HeaderV1  = "inkocr strokes file, version=1  "
	HeaderLen = 32

	// Extension is the file suffix used for stroke files.
	Extension = ".ink"
)

// Point is a sampled pen position in canvas pixels.
type Point struct {
	X        float32 `json:"x"`
	Y        float32 `json:"y"`
	Pressure float32 `json:"p,omitempty"`
}

// Stroke is the path of one pen-down to pen-up gesture.
type Stroke struct {
	Width  float32 `json:"width,omitempty"`
	Points []Point `json:"points"`
}

// Drawing is every stroke drawn on a canvas of the given size.
type Drawing struct {
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Strokes []Stroke `json:"strokes"`
}

// PointCount returns the total number of points of all strokes.
func (d *Drawing) PointCount() int {
	n := 0
	for _, s := range d.Strokes {
		n += len(s.Points)
	}
	return n
}

// Downsample reduces the number of points of a long stroke by keeping every
// Nth point, N growing with the stroke length. The first and last points are
// always kept.
func Downsample(points []Point) []Point {
	if len(points) <= 2 {
		return points
	}

	rate := 1
	switch {
	case len(points) > 2000:
		rate = 6
	case len(points) > 1000:
		rate = 4
	case len(points) > 500:
		rate = 3
	case len(points) > 200:
		rate = 2
	}
	if rate == 1 {
		return points
	}

	result := make([]Point, 0, len(points)/rate+2)
	result = append(result, points[0])
	for i := rate; i < len(points)-1; i += rate {
		result = append(result, points[i])
	}
	return append(result, points[len(points)-1])
}
