package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/annotator"
	"github.com/mgmeyers/unipdf/v3/contentstream/draw"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

const printFlag = 4

type annotKind int

const (
	annotComment annotKind = iota
	annotHighlight
)

// annotationPlan is an interactive annotation laid over a page.
type annotationPlan struct {
	kind     annotKind
	box      pdfutils.Box
	colour   pdfutils.RGB
	opacity  float64
	contents string
	author   string
}

// planAnnotation lays out the annotation object of a mark, if it has one.
// Scored numeric marks get an invisible square centred on their circle so
// viewers show the comment there. Highlights get a highlight annotation.
func (f *Finalizer) planAnnotation(pageIndex, index int, mark *pdfutils.MarkInfo, frame pdfutils.PageFrame, w *warnings) (annotationPlan, bool) {
	coords := pdfutils.ToPdfSpace(*mark.Coordinates, f.cfg.Scale)

	switch {
	case mark.Scored():
		size := f.cfg.CommentBoxSize
		radius := f.cfg.CircleDiameter / 2

		contents := mark.Comment
		if contents == "" {
			contents = " "
		}

		return annotationPlan{
			kind: annotComment,
			box: pdfutils.RotateBox(
				coords.X,
				coords.Y,
				size,
				size,
				(f.cfg.CircleDiameter-size)/2,
				size/2-radius,
				frame.Angle,
				frame.Width,
				frame.Height,
			),
			colour:   white,
			opacity:  f.cfg.CommentOpacity,
			contents: contents,
			author:   SectionLabel(mark),
		}, true

	case mark.IconType == pdfutils.Highlight:
		colour, err := pdfutils.ParseHighlightColour(mark.Colour)
		if err != nil {
			w.add(pageIndex, index, err)
			// DefaultHighlightColour is checked when the Finalizer is built.
			colour, _ = pdfutils.ParseHighlightColour(f.cfg.DefaultHighlightColour)
		}

		contents := mark.Comment
		if contents == "" && mark.SectionLabel != "" {
			contents = " "
		}

		return annotationPlan{
			kind: annotHighlight,
			box: pdfutils.RotateBox(
				coords.X,
				coords.Y,
				*coords.Width,
				f.cfg.HighlightHeight,
				0,
				0,
				frame.Angle,
				frame.Width,
				frame.Height,
			),
			colour:   colour.RGB,
			opacity:  colour.Alpha,
			contents: contents,
			author:   mark.SectionLabel,
		}, true
	}

	return annotationPlan{}, false
}

// annotText encodes free text for an annotation string. UTF-16BE keeps
// labels and comments outside PDFDocEncoding intact.
func annotText(s string) *core.PdfObjectString {
	return core.MakeEncodedString(s, true)
}

func (f *Finalizer) buildAnnotation(plan annotationPlan, id string) (*model.PdfAnnotation, error) {
	rect := plan.box.Floats()
	date := core.MakeString(pdfutils.FormatAnnotationDate(f.now()))

	switch plan.kind {
	case annotHighlight:
		ap, err := highlightAppearance(rect[2]-rect[0], rect[3]-rect[1], plan.colour, plan.opacity)
		if err != nil {
			return nil, err
		}

		hl := model.NewPdfAnnotationHighlight()
		hl.Rect = core.MakeArrayFromFloats(rect)
		// Upper left, upper right, lower left, lower right.
		hl.QuadPoints = core.MakeArrayFromFloats([]float64{
			rect[0], rect[3], rect[2], rect[3],
			rect[0], rect[1], rect[2], rect[1],
		})
		hl.C = plan.colour.PdfObject()
		hl.CA = core.MakeFloat(plan.opacity)
		hl.Contents = annotText(plan.contents)
		hl.T = annotText(plan.author)
		hl.NM = core.MakeString(id)
		hl.M = date
		hl.F = core.MakeInteger(printFlag)
		hl.AP = ap

		return hl.PdfAnnotation, nil
	}

	annot, err := annotator.CreateRectangleAnnotation(annotator.RectangleAnnotationDef{
		X:           rect[0],
		Y:           rect[1],
		Width:       rect[2] - rect[0],
		Height:      rect[3] - rect[1],
		FillEnabled: true,
		FillColor:   plan.colour.DeviceRGB(),
		Opacity:     plan.opacity,
	})
	if err != nil {
		return nil, err
	}

	square, ok := annot.GetContext().(*model.PdfAnnotationSquare)
	if !ok {
		return nil, errors.Errorf("unexpected square annotation %T", annot.GetContext())
	}

	square.C = plan.colour.PdfObject()
	square.CA = core.MakeFloat(plan.opacity)
	square.Contents = annotText(plan.contents)
	square.T = annotText(plan.author)
	square.NM = core.MakeString(id)
	square.M = date

	return square.PdfAnnotation, nil
}

// highlightAppearance is the normal appearance of a highlight of size w by
// h: the box filled with colour, multiplied onto the page at opacity.
func highlightAppearance(w, h float64, colour pdfutils.RGB, opacity float64) (*core.PdfObjectDictionary, error) {
	form := model.NewXObjectForm()
	form.Resources = model.NewPdfPageResources()

	gs := core.MakeDict()
	gs.Set("ca", core.MakeFloat(opacity))
	gs.Set("CA", core.MakeFloat(opacity))
	gs.Set("BM", core.MakeName("Multiply"))

	if err := form.Resources.AddExtGState("GS0", gs); err != nil {
		return nil, err
	}

	content, bbox, err := draw.Rectangle{
		Width:       w,
		Height:      h,
		FillEnabled: true,
		FillColor:   colour.DeviceRGB(),
		Opacity:     opacity,
	}.Draw("GS0")
	if err != nil {
		return nil, err
	}

	if err := form.SetContentStream(content, core.NewFlateEncoder()); err != nil {
		return nil, err
	}

	form.BBox = bbox.ToPdfObject()

	ap := core.MakeDict()
	ap.Set("N", form.ToPdfObject())

	return ap, nil
}

// addAnnotations injects the interactive annotation objects of every page and
// returns the tally of the scored numeric marks, in page then placement
// order.
func (f *Finalizer) addAnnotations(doc *document, marks pdfutils.MarkPages, w *warnings) (Tally, error) {
	ids := map[string]bool{}
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

		for i := range pageMarks {
			mark := &pageMarks[i]

			t = t.addSection(mark)

			plan, ok := f.planAnnotation(pageIndex, i, mark, frame, w)
			if !ok {
				continue
			}

			kind := pdfutils.CommentAnnot
			if plan.kind == annotHighlight {
				kind = pdfutils.HighlightAnnot
			}

			r := plan.box.Rect()
			id := pdfutils.GetAnnotationID(ids, pageIndex, r.X.Lo, r.Y.Lo, kind)

			annot, err := f.buildAnnotation(plan, id)
			if err != nil {
				return t, errors.Wrapf(err, "page %d mark %d", pageIndex, i)
			}

			page.AddAnnotation(annot)
		}
	}

	return t, nil
}
