package strokes

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// sanity bound on counts read from a file
	maxCount = 1 << 24

	strokeHeaderSize = 8
	pointSize        = 12
)

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Drawing) UnmarshalBinary(data []byte) error {
	r := reader{bytes.NewReader(data)}
	if err := r.checkHeader(); err != nil {
		return err
	}

	width, err := r.readNumber()
	if err != nil {
		return err
	}
	height, err := r.readNumber()
	if err != nil {
		return err
	}
	nbStrokes, err := r.readNumber()
	if err != nil {
		return err
	}

	if int(nbStrokes)*strokeHeaderSize > r.Len() {
		return errors.Errorf("%d strokes don't fit in %d bytes", nbStrokes, r.Len())
	}

	strokes := make([]Stroke, nbStrokes)
	for i := range strokes {
		if strokes[i], err = r.readStroke(); err != nil {
			return errors.Wrapf(err, "stroke %d", i)
		}
	}

	d.Width = int(width)
	d.Height = int(height)
	d.Strokes = strokes
	return nil
}

type reader struct {
	*bytes.Reader
}

func (r reader) checkHeader() error {
	buf := make([]byte, HeaderLen)

	n, err := r.Read(buf)
	if err != nil || n != HeaderLen {
		return errors.New("wrong header size")
	}
	if string(buf) != HeaderV1 {
		return errors.New("unknown header")
	}
	return nil
}

func (r reader) readNumber() (uint32, error) {
	var nb uint32
	if err := binary.Read(r, binary.LittleEndian, &nb); err != nil {
		return 0, errors.New("wrong number read")
	}
	if nb > maxCount {
		return 0, errors.Errorf("count %d out of range", nb)
	}
	return nb, nil
}

func (r reader) readStroke() (Stroke, error) {
	var stroke Stroke

	if err := binary.Read(r, binary.LittleEndian, &stroke.Width); err != nil {
		return stroke, errors.New("failed to read stroke")
	}

	nbPoints, err := r.readNumber()
	if err != nil {
		return stroke, err
	}
	if nbPoints == 0 {
		return stroke, nil
	}
	if int(nbPoints)*pointSize > r.Len() {
		return stroke, errors.Errorf("%d points don't fit in %d bytes", nbPoints, r.Len())
	}

	stroke.Points = make([]Point, nbPoints)
	for i := range stroke.Points {
		p := &stroke.Points[i]
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return stroke, errors.New("failed to read point")
		}
	}

	return stroke, nil
}
