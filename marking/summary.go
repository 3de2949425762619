package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/contentstream"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

type summaryLine struct {
	text   string
	x, y   float64
	size   float64
	colour pdfutils.RGB
}

var black = pdfutils.RGB{}

// planSummary lays out the results pages: header, rule, one line per section
// mark, then general marks, rule, a blank line and the total. A line that
// would fall below the bottom margin starts a new page at the top.
func planSummary(t Tally, layout SummaryLayout) [][]summaryLine {
	pages := [][]summaryLine{{}}
	y := layout.Top

	emit := func(text string, x, size float64, colour pdfutils.RGB) {
		last := len(pages) - 1
		pages[last] = append(pages[last], summaryLine{text: text, x: x, y: y, size: size, colour: colour})
	}

	advance := func() {
		y -= layout.Step
		if y < layout.BottomMargin {
			pages = append(pages, []summaryLine{})
			y = layout.Top
		}
	}

	emit(layout.Header, layout.PageWidth/2, layout.HeaderSize, black)

	y = layout.Top - layout.RuleOffset
	emit(layout.Rule, layout.Left, layout.FontSize, layout.RuleColour)
	y -= layout.Step

	for _, label := range t.SectionMarks {
		advance()
		emit(label, layout.Left, layout.FontSize, black)
	}

	advance()
	emit("General Marks = "+pdfutils.FormatScore(t.GeneralMarks), layout.Left, layout.FontSize, black)
	advance()
	emit(layout.Rule, layout.Left, layout.FontSize, layout.RuleColour)
	advance()
	advance()
	emit("Total = "+pdfutils.FormatScore(t.TotalMark), layout.Left, layout.FontSize, black)

	return pages
}

func buildSummaryPages(t Tally, layout SummaryLayout) ([]*model.PdfPage, error) {
	planned := planSummary(t, layout)
	pages := make([]*model.PdfPage, 0, len(planned))

	for _, lines := range planned {
		page := model.NewPdfPage()
		page.MediaBox = &model.PdfRectangle{Llx: 0, Lly: 0, Urx: layout.PageWidth, Ury: layout.PageHeight}

		fontName, font, err := addFont(page, layout.Font, "PdfMarksResults")
		if err != nil {
			return nil, err
		}

		cc := contentstream.NewContentCreator()

		for _, line := range lines {
			cc.Add_BT().
				Add_rg(pdfutils.ScaleChannel(line.colour.Red), pdfutils.ScaleChannel(line.colour.Green), pdfutils.ScaleChannel(line.colour.Blue)).
				Add_Tf(fontName, line.size).
				Add_Td(line.x, line.y).
				Add_Tj(*encodeText(font, line.text)).
				Add_ET()
		}

		if err := page.AddContentStreamByString(string(cc.Bytes())); err != nil {
			return nil, err
		}

		pages = append(pages, page)
	}

	return pages, nil
}

// addSummary appends the results pages for t after the source pages.
func (f *Finalizer) addSummary(doc *document, t Tally) error {
	pages, err := buildSummaryPages(t, f.cfg.Summary)
	if err != nil {
		return errors.Wrap(err, "results page")
	}

	doc.summary = pages

	return nil
}
