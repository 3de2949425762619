package pdfutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

const dateFormatNoZ = "D:20060102150405"

// pdfDate matches a PDF date: D:YYYYMMDDHHmmSS followed by Z, by an offset
// written +HH'mm' or by nothing, which is read as UTC.
var pdfDate = regexp.MustCompile(`^D:(\d{14})(?:Z(?:00'?00'?)?|([+-])(\d{2})'?(\d{2})?'?)?$`)

// FormatAnnotationDate renders t as a PDF date string in UTC.
func FormatAnnotationDate(t time.Time) string {
	return t.UTC().Format(dateFormatNoZ) + "Z"
}

func ParseAnnotationDate(dateStr string) (time.Time, error) {
	m := pdfDate.FindStringSubmatch(strings.TrimSpace(dateStr))
	if m == nil {
		return time.Time{}, errors.Errorf("not a PDF date: %q", dateStr)
	}

	loc := time.UTC

	if m[2] != "" {
		hours, _ := strconv.Atoi(m[3])
		minutes, _ := strconv.Atoi(m[4])
		if hours > 23 || minutes > 59 {
			return time.Time{}, errors.Errorf("bad offset in PDF date: %q", dateStr)
		}

		offset := hours*3600 + minutes*60
		if m[2] == "-" {
			offset = -offset
		}

		loc = time.FixedZone("", offset)
	}

	return time.ParseInLocation("20060102150405", m[1], loc)
}

func GetAnnotationDate(annot *model.PdfAnnotation) *time.Time {
	dateStr, ok := core.GetStringVal(annot.M)
	if !ok {
		return nil
	}

	date, err := ParseAnnotationDate(dateStr)
	if err != nil {
		return nil
	}

	return &date
}

// GetAnnotationText returns the value of an annotation text string, decoding
// UTF-16BE strings. Other strings are returned as stored.
func GetAnnotationText(obj core.PdfObject) (string, bool) {
	str, ok := core.GetString(obj)
	if !ok {
		return "", false
	}

	if b := str.Bytes(); len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		return RemoveNul(str.Decoded()), true
	}

	return RemoveNul(str.Str()), true
}

func GetAnnotationType(t interface{}) string {
	switch t.(type) {
	case *model.PdfAnnotationHighlight:
		return HighlightAnnot
	case *model.PdfAnnotationSquare:
		return CommentAnnot
	case *model.PdfAnnotationText:
		return Text
	default:
		return Unsupported
	}
}

// GetAnnotationMarkup returns the markup fields shared by the annotation
// kinds marks are written as.
func GetAnnotationMarkup(t interface{}) *model.PdfAnnotationMarkup {
	switch a := t.(type) {
	case *model.PdfAnnotationHighlight:
		return a.PdfAnnotationMarkup
	case *model.PdfAnnotationSquare:
		return a.PdfAnnotationMarkup
	case *model.PdfAnnotationText:
		return a.PdfAnnotationMarkup
	}

	return nil
}

func RemoveNul(str string) string {
	return strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, str)
}

// FormatScore prints a score in its shortest form: 5, 0.5, 12.25.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SectionText is the author line of a numeric mark's comment annotation.
func SectionText(label string, score float64) string {
	return label + " = " + FormatScore(score)
}

var sectionTextPattern = regexp.MustCompile(`^(.*) = (-?\d+(?:\.\d+)?)$`)

// ParseSectionText splits "<label> = <score>" back into its parts.
func ParseSectionText(s string) (string, float64, bool) {
	m := sectionTextPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", 0, false
	}

	score, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, false
	}

	return m[1], score, true
}

// GetAnnotationID returns an id unique within ids for an annotation of the
// given kind placed at (x, y) on the page.
func GetAnnotationID(ids map[string]bool, pageIndex int, x float64, y float64, annotType string) string {
	xInt := int(x)
	yInt := int(y)
	id := fmt.Sprintf("%s-p%dx%dy%d", annotType, pageIndex+1, xInt, yInt)
	_, ok := ids[id]

	for i := 1; ok; i++ {
		id = fmt.Sprintf("%s-p%dx%dy%d-%d", annotType, pageIndex+1, xInt, yInt, i)
		_, ok = ids[id]
	}

	ids[id] = true

	return id
}

var nlAndSpace = regexp.MustCompile(`[\n\s]+`)

func CondenseSpaces(str string) string {
	return nlAndSpace.ReplaceAllString(str, " ")
}
