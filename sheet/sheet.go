// Package sheet renders collected samples as a printable PDF contact sheet.
package sheet

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/contentstream/draw"
	"github.com/unidoc/unipdf/v3/creator"
	pdf "github.com/unidoc/unipdf/v3/model"

	"github.com/inkocr/inkocr/dataset"
	"github.com/inkocr/inkocr/log"
	"github.com/inkocr/inkocr/normalize"
)

const (
	pageMargin = 36.0
	titleSize  = 14.0
	labelSize  = 8.0

	// pixels per grid cell of the embedded thumbnails
	thumbScale = 4
)

type Options struct {
	Title       string
	Columns     int
	Borders     bool
	PageNumbers bool
}

func DefaultOptions() Options {
	return Options{
		Title:       "Training samples",
		Columns:     8,
		Borders:     true,
		PageNumbers: true,
	}
}

// Generator lays out samples in a grid, one thumbnail and label per cell.
type Generator struct {
	options Options
}

func New(options Options) *Generator {
	if options.Columns <= 0 {
		options.Columns = DefaultOptions().Columns
	}
	return &Generator{options: options}
}

type layout struct {
	cell    float64
	image   float64
	top     float64
	rows    int
	columns int
}

func (g *Generator) layout(c *creator.Creator) layout {
	l := layout{columns: g.options.Columns}
	l.cell = (c.Width() - 2*pageMargin) / float64(l.columns)
	l.image = l.cell * 0.7
	l.top = pageMargin
	if g.options.Title != "" {
		l.top += titleSize * 2
	}
	l.rows = int(math.Floor((c.Height() - l.top - pageMargin) / l.cell))
	if l.rows < 1 {
		l.rows = 1
	}
	return l
}

// Write renders the samples to w.
func (g *Generator) Write(w io.Writer, samples []dataset.Sample) error {
	c := creator.New()
	c.SetPageSize(creator.PageSizeA4)

	if g.options.PageNumbers {
		c.DrawFooter(func(block *creator.Block, args creator.FooterFunctionArgs) {
			p := c.NewParagraph(fmt.Sprintf("%d / %d", args.PageNum, args.TotalPages))
			p.SetFontSize(labelSize)
			p.SetPos(block.Width()-pageMargin-20, block.Height()-pageMargin/2)
			_ = block.Draw(p)
		})
	}

	l := g.layout(c)
	perPage := l.rows * l.columns

	page, err := g.newPage(c, l)
	if err != nil {
		return err
	}
	cs := contentstream.NewContentCreator()

	for i, sample := range samples {
		slot := i % perPage
		if i > 0 && slot == 0 {
			if err := g.flushBorders(page, cs); err != nil {
				return err
			}
			if page, err = g.newPage(c, l); err != nil {
				return err
			}
			cs = contentstream.NewContentCreator()
		}

		x := pageMargin + float64(slot%l.columns)*l.cell
		y := l.top + float64(slot/l.columns)*l.cell
		if err := g.drawCell(c, cs, l, x, y, sample); err != nil {
			return errors.Wrapf(err, "sample %s", sample.ID)
		}
	}
	if err := g.flushBorders(page, cs); err != nil {
		return err
	}

	log.Trace.Printf("sheet: %d samples, %d per page", len(samples), perPage)
	return c.Write(w)
}

// WriteFile renders the samples to a new file at path.
func (g *Generator) WriteFile(path string, samples []dataset.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := g.Write(f, samples); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (g *Generator) newPage(c *creator.Creator, l layout) (*pdf.PdfPage, error) {
	page := c.NewPage()
	if g.options.Title == "" {
		return page, nil
	}
	p := c.NewParagraph(g.options.Title)
	p.SetFontSize(titleSize)
	p.SetPos(pageMargin, pageMargin)
	if err := c.Draw(p); err != nil {
		return nil, err
	}
	return page, nil
}

func (g *Generator) drawCell(c *creator.Creator, cs *contentstream.ContentCreator, l layout, x, y float64, sample dataset.Sample) error {
	thumb, err := normalize.Thumbnail(sample.ImageData, thumbScale)
	if err != nil {
		return err
	}
	// dark ink on paper
	img, err := c.NewImageFromGoImage(normalize.Invert(thumb))
	if err != nil {
		return err
	}
	img.ScaleToWidth(l.image)
	pad := (l.cell - l.image) / 2
	img.SetPos(x+pad, y+pad/2)
	if err := c.Draw(img); err != nil {
		return err
	}

	label := c.NewParagraph(sample.Label)
	label.SetFontSize(labelSize)
	label.SetPos(x+pad, y+pad/2+l.image+2)
	if err := c.Draw(label); err != nil {
		return err
	}

	if g.options.Borders {
		// content streams use a bottom-left origin
		h := c.Height()
		path := draw.NewPath().
			AppendPoint(draw.NewPoint(x, h-y)).
			AppendPoint(draw.NewPoint(x+l.cell, h-y)).
			AppendPoint(draw.NewPoint(x+l.cell, h-y-l.cell)).
			AppendPoint(draw.NewPoint(x, h-y-l.cell)).
			AppendPoint(draw.NewPoint(x, h-y))
		cs.Add_q()
		cs.Add_w(0.3)
		cs.Add_RG(0.7, 0.7, 0.7)
		draw.DrawPathWithCreator(path, cs)
		cs.Add_S()
		cs.Add_Q()
	}
	return nil
}

func (g *Generator) flushBorders(page *pdf.PdfPage, cs *contentstream.ContentCreator) error {
	if !g.options.Borders {
		return nil
	}
	ops := cs.Operations()
	if len(*ops) == 0 {
		return nil
	}
	return page.AppendContentStream(string(ops.Bytes()))
}
