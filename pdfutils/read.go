package pdfutils

import (
	"io"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/extractor"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

// OpenReader opens a PDF, decrypting it with the empty user password when it
// is encrypted.
func OpenReader(rs io.ReadSeeker) (*model.PdfReader, error) {
	pdfReader, err := model.NewPdfReader(rs)
	if err != nil {
		return nil, err
	}

	encrypted, err := pdfReader.IsEncrypted()
	if err != nil {
		return nil, err
	}

	if encrypted {
		ok, err := pdfReader.Decrypt([]byte(""))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("document is password protected")
		}
	}

	return pdfReader, nil
}

// ReadMarkAnnotations lists the comment, highlight and text annotations of a
// finalized PDF, page by page, then top to bottom and left to right within a
// page.
func ReadMarkAnnotations(rs io.ReadSeeker) ([]*Annotation, error) {
	pdfReader, err := OpenReader(rs)
	if err != nil {
		return nil, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}

	collected := []*Annotation{}
	ids := map[string]bool{}

	for i := 0; i < numPages; i++ {
		page, err := pdfReader.GetPage(i + 1)
		if err != nil {
			return nil, err
		}

		annotations, err := page.GetAnnotations()
		if err != nil {
			return nil, err
		}

		annots, err := processAnnotations(i, page, annotations, ids)
		if err != nil {
			return nil, err
		}

		sort.Stable(ByX(annots))
		sort.Stable(ByY(annots))
		collected = append(collected, annots...)
	}

	return collected, nil
}

func processAnnotations(
	pageIndex int,
	page *model.PdfPage,
	annotations []*model.PdfAnnotation,
	ids map[string]bool,
) ([]*Annotation, error) {
	annots := []*Annotation{}

	frame, err := NewPageFrame(page)
	if err != nil {
		return nil, err
	}

	for _, annotation := range annotations {
		ctx := annotation.GetContext()
		annotType := GetAnnotationType(ctx)

		if annotType == Unsupported {
			continue
		}

		region := GetRegion(frame, annotation)
		x, y := region.X.Lo, region.Y.Lo

		built := &Annotation{
			Color:         GetAnnotationColor(annotation),
			ColorCategory: GetAnnotationColorCategory(annotation),
			Page:          pageIndex + 1,
			Type:          annotType,
			X:             x,
			Y:             y,
			Width:         region.X.Length(),
			Height:        region.Y.Length(),
			Opacity:       1,
		}

		if nm, ok := core.GetStringVal(annotation.NM); ok && nm != "" && !ids[nm] {
			ids[nm] = true
			built.ID = nm
		} else {
			built.ID = GetAnnotationID(ids, pageIndex, x, y, annotType)
		}

		if comment, ok := GetAnnotationText(annotation.Contents); ok {
			built.Comment = comment
		}

		if markup := GetAnnotationMarkup(ctx); markup != nil {
			if author, ok := GetAnnotationText(markup.T); ok {
				built.Author = author
			}

			if ca, err := core.GetNumberAsFloat(markup.CA); err == nil {
				built.Opacity = ca
			}
		}

		if label, score, ok := ParseSectionText(built.Author); ok && annotType == CommentAnnot {
			built.SectionLabel = label
			built.Score = &score
		} else if annotType == HighlightAnnot {
			built.SectionLabel = built.Author
		}

		if date := GetAnnotationDate(annotation); date != nil {
			built.Date = date.Format(time.RFC3339)
		}

		annots = append(annots, built)
	}

	return annots, nil
}

var totalLine = regexp.MustCompile(`Total = (-?\d+(?:\.\d+)?)`)

// ReadSummaryTotal finds the "Total = x" line on the results page of a
// finalized PDF, searching from the last page backwards.
func ReadSummaryTotal(rs io.ReadSeeker) (float64, error) {
	pdfReader, err := OpenReader(rs)
	if err != nil {
		return 0, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return 0, err
	}

	for i := numPages; i >= 1; i-- {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return 0, err
		}

		text, err := ExtractPageText(page)
		if err != nil {
			return 0, err
		}

		if m := totalLine.FindStringSubmatch(CondenseSpaces(text)); m != nil {
			return strconv.ParseFloat(m[1], 64)
		}
	}

	return 0, errors.New("no results page found")
}

func ExtractPageText(page *model.PdfPage) (string, error) {
	ext, err := extractor.New(page)
	if err != nil {
		return "", err
	}

	return ext.ExtractText()
}
