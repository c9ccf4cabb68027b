// Package input loads drawings from PNG or stroke files and turns them into
// normalized vectors.
package input

import (
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/inkocr/inkocr/canvas"
	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/normalize"
)

// ErrEmpty is returned for a drawing without ink.
var ErrEmpty = errors.New("nothing drawn")

type Options struct {
	// Width and Height of the surface stroke files are replayed on.
	Width, Height int

	// Invert treats images as dark ink on a light background.
	Invert bool
}

func DefaultOptions() Options {
	return Options{Width: canvas.DefaultSize, Height: canvas.DefaultSize}
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", strokes.Extension:
		return true
	}
	return false
}

// Render replays a drawing on a surface of the given size.
func Render(d strokes.Drawing, width, height int) (image.Image, error) {
	if d.PointCount() == 0 {
		return nil, ErrEmpty
	}
	return canvas.Replay(d, width, height).Image(), nil
}

// Drawing normalizes recorded strokes.
func Drawing(d strokes.Drawing, width, height int) ([]float64, error) {
	img, err := Render(d, width, height)
	if err != nil {
		return nil, err
	}
	return Image(img, false)
}

// Image normalizes a light-on-dark image, inverting it first when asked.
func Image(img image.Image, invert bool) ([]float64, error) {
	if invert {
		img = normalize.Invert(img)
	}
	if _, ok := normalize.BoundingBox(img); !ok {
		return nil, ErrEmpty
	}
	return normalize.Normalize(img), nil
}

// LoadImage reads a raster image, or renders a stroke file.
func LoadImage(path string, opts Options) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), strokes.Extension) {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		var d strokes.Drawing
		if err := d.UnmarshalBinary(data); err != nil {
			return nil, errors.Wrapf(err, "can't read strokes from %s", path)
		}
		return Render(d, opts.Width, opts.Height)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't decode %s", path)
	}
	if opts.Invert {
		img = normalize.Invert(img)
	}
	return img, nil
}

// Load reads path and returns its normalized vector.
func Load(path string, opts Options) ([]float64, error) {
	img, err := LoadImage(path, opts)
	if err != nil {
		return nil, err
	}
	vec, err := Image(img, false)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return vec, nil
}

// WritePNG encodes a normalized vector as a PNG, scale pixels per cell.
func WritePNG(w io.Writer, vec []float64, scale int) error {
	img, err := normalize.Thumbnail(vec, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}
