package marking

import (
	"bytes"
	"io"
	"testing"

	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type pageDef struct {
	width, height float64
	rotate        *int64
}

func rot(v int64) *int64 { return &v }

func num(v float64) *float64 { return &v }

func intp(v int) *int { return &v }

// samplePDF writes a PDF with one page per definition, each with a little content.
func samplePDF(t *testing.T, defs ...pageDef) []byte {
	t.Helper()

	pdfWriter := model.NewPdfWriter()

	for _, def := range defs {
		page := model.NewPdfPage()
		page.MediaBox = &model.PdfRectangle{Llx: 0, Lly: 0, Urx: def.width, Ury: def.height}
		page.Rotate = def.rotate

		require.NoError(t, page.AddContentStreamByString("q 0 0 1 rg 10 10 50 50 re f Q"))
		require.NoError(t, pdfWriter.AddPage(page))
	}

	var buf bytes.Buffer
	require.NoError(t, pdfWriter.Write(&buf))

	return buf.Bytes()
}

func mark(iconType pdfutils.IconType, x, y float64) pdfutils.MarkInfo {
	return pdfutils.MarkInfo{
		IconType:    iconType,
		Coordinates: &pdfutils.MarkCoordinate{X: x, Y: y},
		Colour:      "#6F327A",
	}
}

func scored(x, y, score float64, label string) pdfutils.MarkInfo {
	m := mark(pdfutils.Number, x, y)
	m.TotalMark = num(score)
	m.SectionLabel = label
	return m
}

func highlight(x, y, width float64, colour string) pdfutils.MarkInfo {
	return pdfutils.MarkInfo{
		IconType:    pdfutils.Highlight,
		Coordinates: &pdfutils.MarkCoordinate{X: x, Y: y, Width: num(width)},
		Colour:      colour,
	}
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFinalizer(t *testing.T, cfg Config) *Finalizer {
	t.Helper()

	f, err := New(cfg, WithLogger(quietLogger()))
	require.NoError(t, err)

	return f
}

func readPages(t *testing.T, data []byte) []*model.PdfPage {
	t.Helper()

	pdfReader, err := pdfutils.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	n, err := pdfReader.GetNumPages()
	require.NoError(t, err)

	pages := make([]*model.PdfPage, 0, n)
	for i := 1; i <= n; i++ {
		page, err := pdfReader.GetPage(i)
		require.NoError(t, err)
		pages = append(pages, page)
	}

	return pages
}
