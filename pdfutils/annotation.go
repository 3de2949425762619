package pdfutils

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// Annotation kinds reported when reading a finalized PDF back.
const (
	HighlightAnnot string = "highlight"
	CommentAnnot          = "comment"
	Text                  = "text"
	Unsupported           = "unsupported"
)

// Annotation is one mark annotation read back from a finalized PDF.
type Annotation struct {
	Author        string   `json:"author,omitempty"`
	Color         string   `json:"color,omitempty"`
	ColorCategory string   `json:"colorCategory,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	Date          string   `json:"date,omitempty"`
	ID            string   `json:"id"`
	Opacity       float64  `json:"opacity"`
	Page          int      `json:"page"`
	Score         *float64 `json:"score,omitempty"`
	SectionLabel  string   `json:"sectionLabel,omitempty"`
	Type          string   `json:"type"`
	X             float64  `json:"x"`
	Y             float64  `json:"y"`
	Width         float64  `json:"width"`
	Height        float64  `json:"height"`
}

// Region is the area the annotation covers, in UI pixels.
func (a *Annotation) Region() r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: a.X, Hi: a.X + a.Width},
		Y: r1.Interval{Lo: a.Y, Hi: a.Y + a.Height},
	}
}

// MarkRegions groups annotation regions by 1-based page number.
func MarkRegions(annots []*Annotation) map[int][]r2.Rect {
	regions := map[int][]r2.Rect{}

	for _, a := range annots {
		regions[a.Page] = append(regions[a.Page], a.Region())
	}

	return regions
}

// ByX orders annotations left to right on the displayed page.
type ByX []*Annotation

func (a ByX) Len() int           { return len(a) }
func (a ByX) Less(i, j int) bool { return a[i].X < a[j].X }
func (a ByX) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// ByY orders annotations top to bottom on the displayed page.
type ByY []*Annotation

func (a ByY) Len() int           { return len(a) }
func (a ByY) Less(i, j int) bool { return a[i].Y < a[j].Y }
func (a ByY) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
