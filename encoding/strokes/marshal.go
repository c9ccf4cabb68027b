package strokes

import (
	"bytes"
	"encoding/binary"
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Drawing) MarshalBinary() (data []byte, err error) {
	w := new(writer)

	w.writeHeader()
	w.writeNumber(d.Width)
	w.writeNumber(d.Height)
	w.writeNumber(len(d.Strokes))

	for _, stroke := range d.Strokes {
		w.writeStroke(stroke)
	}

	return w.Bytes(), nil
}

type writer struct {
	b bytes.Buffer
}

func (w *writer) Bytes() []byte {
	return w.b.Bytes()
}

func (w *writer) writeHeader() {
	w.b.WriteString(HeaderV1)
}

func (w *writer) writeNumber(n int) {
	binary.Write(&w.b, binary.LittleEndian, uint32(n))
}

func (w *writer) writeFloat32(f float32) {
	binary.Write(&w.b, binary.LittleEndian, f)
}

func (w *writer) writeStroke(stroke Stroke) {
	w.writeFloat32(stroke.Width)
	w.writeNumber(len(stroke.Points))

	for _, p := range stroke.Points {
		w.writeFloat32(p.X)
		w.writeFloat32(p.Y)
		w.writeFloat32(p.Pressure)
	}
}
