package pdfutils

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/mgmeyers/unipdf/v3/core"
	"github.com/mgmeyers/unipdf/v3/model"
)

// Points per inch over UI pixels per inch.
const ScreenToPDF = 72.0 / 96.0

// ToPdfSpace scales a UI pixel coordinate into PDF points. No rotation is
// applied.
func ToPdfSpace(coord MarkCoordinate, scale float64) MarkCoordinate {
	out := MarkCoordinate{
		X: coord.X * scale,
		Y: coord.Y * scale,
	}

	if coord.Width != nil {
		w := *coord.Width * scale
		out.Width = &w
	}

	return out
}

// NormalizeAngle reduces a rotation in degrees to one of 0, 90, 180 or 270,
// rounding to the nearest quarter turn.
func NormalizeAngle(deg int64) int64 {
	quarter := int64(math.Round(float64(deg)/90)) % 4
	if quarter < 0 {
		quarter += 4
	}

	return quarter * 90
}

// PageFrame maps between the displayed page (rotated by the viewer, origin
// top left, y down) and the unrotated PDF user space the content stream is
// written in (origin bottom left, y up). Width and Height are the unrotated
// media box dimensions.
type PageFrame struct {
	Angle  int64
	Width  float64
	Height float64
}

func NewPageFrame(page *model.PdfPage) (PageFrame, error) {
	mbox, err := page.GetMediaBox()
	if err != nil {
		return PageFrame{}, err
	}

	frame := PageFrame{
		Width:  mbox.Width(),
		Height: mbox.Height(),
	}

	if page.Rotate != nil {
		frame.Angle = *page.Rotate
	}

	return frame, nil
}

// ToPage maps a displayed point into PDF user space. Angles other than 0,
// 90, 180 and 270 are treated as 0.
func (f PageFrame) ToPage(p r2.Point) r2.Point {
	switch f.Angle {
	case 90:
		return r2.Point{X: p.Y, Y: p.X}
	case 180:
		return r2.Point{X: f.Width - p.X, Y: p.Y}
	case 270:
		return r2.Point{X: f.Width - p.Y, Y: f.Height - p.X}
	default:
		return r2.Point{X: p.X, Y: f.Height - p.Y}
	}
}

// FromPage is the inverse of ToPage.
func (f PageFrame) FromPage(q r2.Point) r2.Point {
	switch f.Angle {
	case 90:
		return r2.Point{X: q.Y, Y: q.X}
	case 180:
		return r2.Point{X: f.Width - q.X, Y: q.Y}
	case 270:
		return r2.Point{X: f.Height - q.Y, Y: f.Width - q.X}
	default:
		return r2.Point{X: q.X, Y: f.Height - q.Y}
	}
}

// Direction returns the PDF user space vector of a displayed direction.
func (f PageFrame) Direction(v r2.Point) r2.Point {
	o := f.ToPage(r2.Point{})
	return f.ToPage(v).Sub(o)
}

// DisplayedSize is the page size as a viewer shows it.
func (f PageFrame) DisplayedSize() (float64, float64) {
	if f.Angle == 90 || f.Angle == 270 {
		return f.Height, f.Width
	}

	return f.Width, f.Height
}

// RotatePoint re-expresses a displayed point, shifted by a centring offset,
// in the unrotated frame of a page. offsetX moves right and offsetY moves up
// on the displayed page.
func RotatePoint(coord MarkCoordinate, offsetX, offsetY float64, angle int64, pageWidth, pageHeight float64) MarkCoordinate {
	frame := PageFrame{Angle: angle, Width: pageWidth, Height: pageHeight}
	p := frame.ToPage(r2.Point{X: coord.X + offsetX, Y: coord.Y - offsetY})

	return MarkCoordinate{X: p.X, Y: p.Y, Width: coord.Width}
}

// Box is a rectangle given by two corners in PDF user space. The corner order
// follows the rotation and is not normalized.
type Box struct {
	X1, Y1, X2, Y2 float64
}

func (b Box) Rect() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: b.X1, Y: b.Y1}, r2.Point{X: b.X2, Y: b.Y2})
}

// Floats returns the normalized rectangle as llx, lly, urx, ury.
func (b Box) Floats() []float64 {
	r := b.Rect()
	return []float64{r.X.Lo, r.Y.Lo, r.X.Hi, r.Y.Hi}
}

// RotateBox maps the displayed rectangle at (x, y) of size w by h, shifted by
// the same offsets RotatePoint takes, into the unrotated frame of a page.
func RotateBox(x, y, w, h, offsetX, offsetY float64, angle int64, pageWidth, pageHeight float64) Box {
	frame := PageFrame{Angle: angle, Width: pageWidth, Height: pageHeight}

	left := x + offsetX
	top := y - offsetY

	var a, b r2.Point

	switch frame.Angle {
	case 90, 270:
		a = frame.ToPage(r2.Point{X: left, Y: top})
		b = frame.ToPage(r2.Point{X: left + w, Y: top + h})
	case 180:
		a = frame.ToPage(r2.Point{X: left + w, Y: top})
		b = frame.ToPage(r2.Point{X: left, Y: top + h})
	default:
		a = frame.ToPage(r2.Point{X: left, Y: top + h})
		b = frame.ToPage(r2.Point{X: left + w, Y: top})
	}

	return Box{X1: a.X, Y1: a.Y, X2: b.X, Y2: b.Y}
}

// ApplyPageRotation maps a user space rectangle (llx, lly, urx, ury) to the
// displayed page, top left origin.
func ApplyPageRotation(frame PageFrame, rect []float64) r2.Rect {
	return r2.RectFromPoints(
		frame.FromPage(r2.Point{X: rect[0], Y: rect[1]}),
		frame.FromPage(r2.Point{X: rect[2], Y: rect[3]}),
	)
}

func GetAnnotationRect(annotation *model.PdfAnnotation) ([]float64, bool) {
	objArr, ok := core.GetArray(annotation.Rect)
	if !ok {
		return nil, false
	}

	annotRect, err := objArr.ToFloat64Array()
	if err != nil || len(annotRect) < 4 {
		return nil, false
	}

	return annotRect, true
}

// GetRegion returns the rectangle an annotation covers on the displayed
// page, in UI pixels rounded to two decimals.
func GetRegion(frame PageFrame, annotation *model.PdfAnnotation) r2.Rect {
	annotRect, ok := GetAnnotationRect(annotation)
	if !ok {
		return r2.Rect{}
	}

	r := ApplyPageRotation(frame, annotRect)

	px := func(v float64) float64 {
		return math.Round(v/ScreenToPDF*100) / 100
	}

	return r2.Rect{
		X: r1.Interval{Lo: px(r.X.Lo), Hi: px(r.X.Hi)},
		Y: r1.Interval{Lo: px(r.Y.Lo), Hi: px(r.Y.Hi)},
	}
}
