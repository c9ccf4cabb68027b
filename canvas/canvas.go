// Package canvas implements the drawing surface: pen events become white
// round-capped segments on a black grayscale raster, and the strokes are
// recorded so a drawing can be saved and replayed.
package canvas

import (
	"image"
	"image/color"
	"math"

	"github.com/inkocr/inkocr/encoding/strokes"
)

const (
	DefaultSize      = 280
	DefaultLineWidth = 15
)

// Surface is a pixel canvas driven by pen down/move/up events.
type Surface struct {
	img       *image.Gray
	lineWidth float64

	strokes []strokes.Stroke
	drawing bool
	lastX   float64
	lastY   float64
}

// New returns a blank surface of the given size.
func New(width, height int) *Surface {
	return &Surface{
		img:       image.NewGray(image.Rect(0, 0, width, height)),
		lineWidth: DefaultLineWidth,
	}
}

// SetLineWidth changes the width of the segments drawn from now on.
func (s *Surface) SetLineWidth(w float64) {
	if w > 0 {
		s.lineWidth = w
	}
}

func (s *Surface) Width() int  { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// PenDown starts a stroke at (x, y). Nothing is painted until the pen moves.
func (s *Surface) PenDown(x, y float64) {
	s.drawing = true
	s.lastX, s.lastY = x, y
	s.strokes = append(s.strokes, strokes.Stroke{
		Width:  float32(s.lineWidth),
		Points: []strokes.Point{{X: float32(x), Y: float32(y), Pressure: 1}},
	})
}

// PenMove draws a segment from the previous pen position when the pen is
// down. Moves with the pen up are ignored.
func (s *Surface) PenMove(x, y float64) {
	if !s.drawing {
		return
	}
	s.segment(s.lastX, s.lastY, x, y)
	s.lastX, s.lastY = x, y

	cur := &s.strokes[len(s.strokes)-1]
	cur.Points = append(cur.Points, strokes.Point{X: float32(x), Y: float32(y), Pressure: 1})
}

// PenUp ends the current stroke. Leaving the canvas is the same as lifting
// the pen.
func (s *Surface) PenUp() {
	s.drawing = false
}

// Clear erases the ink and the recorded strokes.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
	s.strokes = nil
	s.drawing = false
}

// Empty reports whether nothing was drawn.
func (s *Surface) Empty() bool {
	for _, p := range s.img.Pix {
		if p != 0 {
			return false
		}
	}
	return true
}

// Image returns a copy of the raster.
func (s *Surface) Image() *image.Gray {
	res := image.NewGray(s.img.Rect)
	copy(res.Pix, s.img.Pix)
	return res
}

// Drawing returns the recorded strokes, long ones downsampled.
func (s *Surface) Drawing() strokes.Drawing {
	d := strokes.Drawing{
		Width:   s.Width(),
		Height:  s.Height(),
		Strokes: make([]strokes.Stroke, len(s.strokes)),
	}
	for i, st := range s.strokes {
		d.Strokes[i] = strokes.Stroke{
			Width:  st.Width,
			Points: append([]strokes.Point(nil), strokes.Downsample(st.Points)...),
		}
	}
	return d
}

// Replay renders a recorded drawing on a new surface of the given size.
// Coordinates are scaled when the drawing was captured at another size.
func Replay(d strokes.Drawing, width, height int) *Surface {
	s := New(width, height)

	sx, sy := 1.0, 1.0
	if d.Width > 0 && d.Height > 0 {
		sx = float64(width) / float64(d.Width)
		sy = float64(height) / float64(d.Height)
	}

	for _, st := range d.Strokes {
		if len(st.Points) == 0 {
			continue
		}
		if st.Width > 0 {
			s.SetLineWidth(float64(st.Width) * math.Min(sx, sy))
		}
		p := st.Points[0]
		s.PenDown(float64(p.X)*sx, float64(p.Y)*sy)
		for _, p := range st.Points[1:] {
			s.PenMove(float64(p.X)*sx, float64(p.Y)*sy)
		}
		s.PenUp()
	}
	return s
}

// segment paints a line with round caps, antialiased over one pixel.
func (s *Surface) segment(x0, y0, x1, y1 float64) {
	r := s.lineWidth / 2
	b := s.img.Rect

	minX := max(b.Min.X, int(math.Floor(math.Min(x0, x1)-r-1)))
	maxX := min(b.Max.X-1, int(math.Ceil(math.Max(x0, x1)+r+1)))
	minY := max(b.Min.Y, int(math.Floor(math.Min(y0, y1)-r-1)))
	maxY := min(b.Max.Y-1, int(math.Ceil(math.Max(y0, y1)+r+1)))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			d := distToSegment(float64(x)+0.5, float64(y)+0.5, x0, y0, x1, y1)
			coverage := r + 0.5 - d
			if coverage <= 0 {
				continue
			}
			v := uint8(255)
			if coverage < 1 {
				v = uint8(coverage * 255)
			}
			if v > s.img.GrayAt(x, y).Y {
				s.img.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
}

func distToSegment(px, py, x0, y0, x1, y1 float64) float64 {
	dx, dy := x1-x0, y1-y0
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-x0, py-y0)
	}
	t := ((px-x0)*dx + (py-y0)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(x0+t*dx), py-(y0+t*dy))
}
