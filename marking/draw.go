package marking

import (
	"bytes"

	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/contentstream/draw"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

// renderShapes writes shapes as content stream operators. font must be
// registered on the page as fontName when a text shape is present.
func renderShapes(shapes []shape, fontName core.PdfObjectName, font *model.PdfFont) ([]byte, error) {
	var buf bytes.Buffer

	for _, s := range shapes {
		switch s.kind {
		case shapePolyline:
			path := draw.NewPath()
			for _, p := range s.points {
				path = path.AppendPoint(draw.NewPoint(p.X, p.Y))
			}

			cc := contentstream.NewContentCreator()
			cc.Add_q().
				Add_RG(pdfutils.ScaleChannel(s.colour.Red), pdfutils.ScaleChannel(s.colour.Green), pdfutils.ScaleChannel(s.colour.Blue)).
				Add_w(s.width)
			draw.DrawPathWithCreator(path, cc)
			cc.Add_S().Add_Q()

			buf.Write(cc.Bytes())

		case shapeCircle:
			circle := draw.Circle{
				X:      s.centre.X - s.radius,
				Y:      s.centre.Y - s.radius,
				Width:  2 * s.radius,
				Height: 2 * s.radius,
			}

			if s.filled {
				circle.FillEnabled = true
				circle.FillColor = s.colour.DeviceRGB()
			} else {
				circle.BorderEnabled = true
				circle.BorderColor = s.colour.DeviceRGB()
				circle.BorderWidth = s.width
			}

			content, _, err := circle.Draw("")
			if err != nil {
				return nil, err
			}
			buf.Write(content)

		case shapeText:
			if fontName == "" || font == nil {
				return nil, errors.New("text shape without a font")
			}

			cc := contentstream.NewContentCreator()
			cc.Add_q().
				Add_BT().
				Add_rg(pdfutils.ScaleChannel(s.colour.Red), pdfutils.ScaleChannel(s.colour.Green), pdfutils.ScaleChannel(s.colour.Blue)).
				Add_Tf(fontName, s.size).
				Add_Tm(s.xAxis.X, s.xAxis.Y, s.yAxis.X, s.yAxis.Y, s.origin.X, s.origin.Y).
				Add_Tj(*encodeText(font, s.text)).
				Add_ET().
				Add_Q()

			buf.Write(cc.Bytes())
		}

		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func hasText(shapes []shape) bool {
	for _, s := range shapes {
		if s.kind == shapeText {
			return true
		}
	}

	return false
}

// planPage lays out the vector content of every mark on one page and folds
// the general marks into the tally. Highlights have no vector content.
func (f *Finalizer) planPage(pageIndex int, marks []pdfutils.MarkInfo, frame pdfutils.PageFrame, t Tally, w *warnings) ([]shape, Tally) {
	shapes := []shape{}

	for i := range marks {
		mark := &marks[i]

		if mark.IconType == pdfutils.Highlight {
			continue
		}

		coords := pdfutils.ToPdfSpace(*mark.Coordinates, f.cfg.Scale)
		colour := f.markColour(pageIndex, i, mark, w)

		if mark.IconType == pdfutils.Number {
			if mark.Scored() {
				shapes = append(shapes, planScore(*mark.TotalMark, coords, colour, frame, f.cfg)...)
			} else {
				shapes = append(shapes, planGlyphs(mark.IconType, coords, colour, frame, f.cfg)...)
			}
			continue
		}

		shapes = append(shapes, planGlyphs(mark.IconType, coords, colour, frame, f.cfg)...)
		t = t.addGeneral(mark, f.cfg)
	}

	return shapes, t
}

func (f *Finalizer) markColour(pageIndex, index int, mark *pdfutils.MarkInfo, w *warnings) pdfutils.RGB {
	colour, err := pdfutils.ParseColour(mark.Colour)
	if err == nil {
		return colour
	}

	w.add(pageIndex, index, err)

	// DefaultColour is checked when the Finalizer is built.
	colour, _ = pdfutils.ParseColour(f.cfg.DefaultColour)

	return colour
}

// addPdfMarks burns the vector content of every mark into its page and
// returns the tally of the general marks it drew.
func (f *Finalizer) addPdfMarks(doc *document, marks pdfutils.MarkPages, w *warnings) (Tally, error) {
	t := Tally{SectionMarks: []string{}}

	for pageIndex, page := range doc.pages {
		pageMarks := marks.Page(pageIndex)
		if len(pageMarks) == 0 {
			continue
		}

		frame, err := pdfutils.NewPageFrame(page)
		if err != nil {
			return t, errors.Wrapf(err, "page %d", pageIndex)
		}

		var shapes []shape
		shapes, t = f.planPage(pageIndex, pageMarks, frame, t, w)

		if len(shapes) == 0 {
			continue
		}

		var fontName core.PdfObjectName
		var font *model.PdfFont
		if hasText(shapes) {
			fontName, font, err = addFont(page, f.cfg.MarkFont, "PdfMarksFont")
			if err != nil {
				return t, errors.Wrapf(err, "page %d", pageIndex)
			}
		}

		content, err := renderShapes(shapes, fontName, font)
		if err != nil {
			return t, errors.Wrapf(err, "page %d", pageIndex)
		}

		if err := appendContent(page, content); err != nil {
			return t, errors.Wrapf(err, "page %d", pageIndex)
		}
	}

	return t, nil
}
