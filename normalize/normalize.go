// Package normalize turns a drawn image into the fixed-size grayscale vector
// the classifier consumes: the ink is cropped to its bounding box, scaled to
// fit a 24×24 box keeping its aspect ratio, centered on a 28×28 grid and read
// back as intensities in [0,1].
package normalize

import (
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

const (
	// Size is the side of the normalized grid.
	Size = 28

	// VectorLen is the length of a normalized vector.
	VectorLen = Size * Size

	// margin left free on each side of the scaled glyph
	margin = 2

	// BoxPadding is added around the ink bounding box before cropping.
	BoxPadding = 5

	// InkThreshold is the channel value a pixel must exceed to count as ink.
	InkThreshold = 20
)

// Box is a pixel rectangle with exclusive Right and Bottom edges.
type Box struct {
	Left, Top, Right, Bottom int
}

func (b Box) Width() int  { return b.Right - b.Left }
func (b Box) Height() int { return b.Bottom - b.Top }

func (b Box) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

func isInk(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 > InkThreshold || g>>8 > InkThreshold || b>>8 > InkThreshold
}

// BoundingBox finds the ink in img, pads it by BoxPadding and clamps it to the
// image. ok is false when there is no ink.
func BoundingBox(img image.Image) (box Box, ok bool) {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := bounds.Min.X, bounds.Min.Y

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !isInk(img.At(x, y)) {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
			ok = true
		}
	}
	if !ok {
		return Box{}, false
	}

	return Box{
		Left:   max(bounds.Min.X, minX-BoxPadding),
		Top:    max(bounds.Min.Y, minY-BoxPadding),
		Right:  min(bounds.Max.X, maxX+BoxPadding),
		Bottom: min(bounds.Max.Y, maxY+BoxPadding),
	}, true
}

// fit returns the scaled glyph size: the longer side becomes Size-2*margin and
// the other follows the aspect ratio.
func fit(w, h int) (tw, th int) {
	inner := float64(Size - 2*margin)
	aspect := float64(w) / float64(h)
	if aspect > 1 {
		tw = int(inner)
		th = int(math.Round(inner / aspect))
	} else {
		th = int(inner)
		tw = int(math.Round(inner * aspect))
	}
	return max(tw, 1), max(th, 1)
}

// redChannel copies the red channel of the box into a grayscale image.
func redChannel(img image.Image, box Box) *image.Gray {
	res := image.NewGray(image.Rect(0, 0, box.Width(), box.Height()))
	for y := box.Top; y < box.Bottom; y++ {
		for x := box.Left; x < box.Right; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			res.SetGray(x-box.Left, y-box.Top, color.Gray{Y: uint8(r >> 8)})
		}
	}
	return res
}

// Grid crops, scales and centers the ink of img on a Size×Size image. A
// blank input gives a black grid.
func Grid(img image.Image) *image.Gray {
	grid := image.NewGray(image.Rect(0, 0, Size, Size))

	box, ok := BoundingBox(img)
	if !ok || box.Width() <= 0 || box.Height() <= 0 {
		return grid
	}

	tw, th := fit(box.Width(), box.Height())
	scaled := resize.Resize(uint(tw), uint(th), redChannel(img, box), resize.Bilinear)

	offset := image.Pt((Size-tw)/2, (Size-th)/2)
	draw.Copy(grid, offset, scaled, scaled.Bounds(), draw.Src, nil)
	return grid
}

// Normalize returns the VectorLen intensities of the normalized grid, row by
// row.
func Normalize(img image.Image) []float64 {
	grid := Grid(img)
	vec := make([]float64, VectorLen)
	for i, p := range grid.Pix {
		vec[i] = float64(p) / 255
	}
	return vec
}

// Invert flips dark ink on a light background into the light-on-dark form
// Normalize expects.
func Invert(img image.Image) *image.Gray {
	b := img.Bounds()
	res := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			res.SetGray(x, y, color.Gray{Y: 255 - g.Y})
		}
	}
	return res
}

// Thumbnail renders a normalized vector as an image, each cell scale pixels
// wide.
func Thumbnail(vec []float64, scale int) (*image.Gray, error) {
	if len(vec) != VectorLen {
		return nil, errors.Errorf("vector has %d values, expected %d", len(vec), VectorLen)
	}
	grid := image.NewGray(image.Rect(0, 0, Size, Size))
	for i, v := range vec {
		grid.Pix[i] = uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	if scale <= 1 {
		return grid, nil
	}

	res := image.NewGray(image.Rect(0, 0, Size*scale, Size*scale))
	draw.NearestNeighbor.Scale(res, res.Bounds(), grid, grid.Bounds(), draw.Src, nil)
	return res, nil
}

// Valid checks the length and range of a vector.
func Valid(vec []float64) error {
	if len(vec) != VectorLen {
		return errors.Errorf("image data has %d values, expected %d", len(vec), VectorLen)
	}
	for i, v := range vec {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return errors.Errorf("image data value %d out of range: %v", i, v)
		}
	}
	return nil
}
