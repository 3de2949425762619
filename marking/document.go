package marking

import (
	"bytes"
	"fmt"

	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

// document is the in-memory PDF a finalize call works on. Source pages keep
// their index; summary pages are appended after them.
type document struct {
	pages   []*model.PdfPage
	summary []*model.PdfPage
	version core.Version
}

// minVersion is the lowest header the output gets. Annotation opacity (CA)
// needs PDF 1.4.
var minVersion = core.Version{Major: 1, Minor: 4}

func loadDocument(data []byte) (*document, error) {
	pdfReader, err := pdfutils.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, loadFailure(err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, loadFailure(err)
	}

	doc := &document{
		pages:   make([]*model.PdfPage, 0, numPages),
		version: pdfReader.PdfVersion(),
	}

	for i := 0; i < numPages; i++ {
		page, err := pdfReader.GetPage(i + 1)
		if err != nil {
			return nil, loadFailure(errors.WithMessagef(err, "page %d", i+1))
		}

		doc.pages = append(doc.pages, page)
	}

	return doc, nil
}

func (d *document) pageCount() int {
	return len(d.pages) + len(d.summary)
}

// outputVersion keeps the source header unless it is older than minVersion.
func (d *document) outputVersion() core.Version {
	v := d.version
	if v.Major < minVersion.Major || (v.Major == minVersion.Major && v.Minor < minVersion.Minor) {
		return minVersion
	}
	return v
}

func (d *document) serialize() ([]byte, error) {
	pdfWriter := model.NewPdfWriter()

	v := d.outputVersion()
	pdfWriter.SetVersion(v.Major, v.Minor)

	for i, page := range d.pages {
		if err := pdfWriter.AddPage(page); err != nil {
			return nil, errors.Wrapf(ErrSerialization, "page %d: %v", i+1, err)
		}
	}

	for _, page := range d.summary {
		if err := pdfWriter.AddPage(page); err != nil {
			return nil, errors.Wrapf(ErrSerialization, "summary page: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := pdfWriter.Write(&buf); err != nil {
		return nil, errors.Wrap(ErrSerialization, err.Error())
	}

	return buf.Bytes(), nil
}

// checkpoint writes the document out and parses it again. Whatever a stage
// left behind has to survive a save before the next stage sees it.
func (d *document) checkpoint() (*document, error) {
	data, err := d.serialize()
	if err != nil {
		return nil, err
	}

	reloaded, err := loadDocument(data)
	if err != nil {
		return nil, errors.Wrap(ErrSerialization, err.Error())
	}

	// Summary pages are only ever created by the last stage.
	return reloaded, nil
}

// addFont registers a standard 14 font on the page under an unused name.
// Text shown with it must be encoded with encodeText.
func addFont(page *model.PdfPage, base model.StdFontName, prefix string) (core.PdfObjectName, *model.PdfFont, error) {
	font, err := model.NewStandard14Font(base)
	if err != nil {
		return "", nil, err
	}

	if page.Resources == nil {
		page.Resources = model.NewPdfPageResources()
	}

	name := core.PdfObjectName(prefix)
	for i := 1; page.Resources.HasFontByName(name); i++ {
		name = core.PdfObjectName(fmt.Sprintf("%s%d", prefix, i))
	}

	if err := page.Resources.SetFontByName(name, font.ToPdfObject()); err != nil {
		return "", nil, err
	}

	return name, font, nil
}

// encodeText converts text to the character codes of font, the form a Tj
// operand has to take. Runes the font cannot encode are dropped.
func encodeText(font *model.PdfFont, text string) *core.PdfObjectString {
	data, _ := font.StringToCharcodeBytes(text)
	return core.MakeStringFromBytes(data)
}

// appendContent adds content after the existing page content. The existing
// content is wrapped in q/Q so graphics state it leaves behind does not
// apply to the marks.
func appendContent(page *model.PdfPage, content []byte) error {
	existing, err := page.GetAllContentStreams()
	if err != nil {
		return err
	}

	streams := []string{string(content)}
	if len(bytes.TrimSpace([]byte(existing))) > 0 {
		streams = []string{"q\n" + existing + "\nQ\n", string(content)}
	}

	return page.SetContentStreams(streams, core.NewFlateEncoder())
}
