package marking

import (
	"github.com/golang/geo/r2"
	"github.com/mgmeyers/pdfmarks/pdfutils"
)

// glyph is an icon drawn in a 24 unit box, origin top left, y down. One unit
// is one point on the page.
type glyph struct {
	strokes [][]r2.Point
	rings   []ring
}

type ring struct {
	centre r2.Point
	radius float64
}

func pts(xy ...float64) []r2.Point {
	points := make([]r2.Point, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		points = append(points, r2.Point{X: xy[i], Y: xy[i+1]})
	}

	return points
}

var (
	tickGlyph = glyph{
		strokes: [][]r2.Point{pts(4, 13, 9, 18, 20, 6)},
	}

	// Drawn over the tick to turn it into a half mark.
	halfStroke = glyph{
		strokes: [][]r2.Point{pts(12, 8, 18, 15)},
	}

	crossGlyph = glyph{
		strokes: [][]r2.Point{
			pts(6, 6, 18, 18),
			pts(18, 6, 6, 18),
		},
	}

	ackGlyph = glyph{
		strokes: [][]r2.Point{pts(8, 12.5, 11, 15.5, 16.5, 9)},
		rings:   []ring{{centre: r2.Point{X: 12, Y: 12}, radius: 9}},
	}

	numberGlyph = glyph{
		strokes: [][]r2.Point{
			pts(10, 4, 8, 20),
			pts(16, 4, 14, 20),
			pts(5, 9.5, 19.5, 9.5),
			pts(4.5, 14.5, 19, 14.5),
		},
	}
)

func glyphsFor(t pdfutils.IconType) []glyph {
	switch t {
	case pdfutils.FullMark:
		return []glyph{tickGlyph}
	case pdfutils.HalfMark:
		return []glyph{tickGlyph, halfStroke}
	case pdfutils.Cross:
		return []glyph{crossGlyph}
	case pdfutils.AckMark:
		return []glyph{ackGlyph}
	case pdfutils.Number:
		return []glyph{numberGlyph}
	}

	return nil
}

type shapeKind int

const (
	shapePolyline shapeKind = iota
	shapeCircle
	shapeText
)

// shape is one drawing operation in PDF user space.
type shape struct {
	kind   shapeKind
	colour pdfutils.RGB
	width  float64

	points []r2.Point

	centre r2.Point
	radius float64
	filled bool

	text string
	// origin is the baseline start; xAxis and yAxis are the text direction
	// and its upright direction.
	origin r2.Point
	xAxis  r2.Point
	yAxis  r2.Point
	size   float64
}

// planGlyphs places the icons of a tick, cross, acknowledgement or unscored
// numeric mark. coords are in PDF points on the displayed page.
func planGlyphs(t pdfutils.IconType, coords pdfutils.MarkCoordinate, colour pdfutils.RGB, frame pdfutils.PageFrame, cfg Config) []shape {
	// Icon box top left on the displayed page.
	origin := r2.Point{X: coords.X + cfg.IconOffset, Y: coords.Y + cfg.IconOffset}

	shapes := []shape{}

	for gi, g := range glyphsFor(t) {
		width := cfg.IconStrokeWidth
		if t == pdfutils.HalfMark && gi == 1 {
			width = cfg.HalfStrokeWidth
		}

		for _, stroke := range g.strokes {
			points := make([]r2.Point, len(stroke))
			for i, p := range stroke {
				points[i] = frame.ToPage(origin.Add(p))
			}

			shapes = append(shapes, shape{
				kind:   shapePolyline,
				colour: colour,
				width:  width,
				points: points,
			})
		}

		for _, rg := range g.rings {
			shapes = append(shapes, shape{
				kind:   shapeCircle,
				colour: colour,
				width:  width,
				centre: frame.ToPage(origin.Add(rg.centre)),
				radius: rg.radius,
			})
		}
	}

	return shapes
}

var white = pdfutils.RGB{Red: 255, Green: 255, Blue: 255}

// planScore places the filled circle and the centred score of a scored
// numeric mark.
func planScore(score float64, coords pdfutils.MarkCoordinate, colour pdfutils.RGB, frame pdfutils.PageFrame, cfg Config) []shape {
	radius := cfg.CircleDiameter / 2

	centre := pdfutils.RotatePoint(coords, radius, -radius, frame.Angle, frame.Width, frame.Height)

	text := pdfutils.FormatScore(score)
	w := float64(len(text)) * cfg.MarkGlyphAdvance * cfg.MarkFontSize
	h := cfg.MarkFontHeight * cfg.MarkFontSize

	origin := pdfutils.RotatePoint(coords, (cfg.CircleDiameter-w)/2, -h-radius/2, frame.Angle, frame.Width, frame.Height)

	return []shape{
		{
			kind:   shapeCircle,
			colour: colour,
			centre: r2.Point{X: centre.X, Y: centre.Y},
			radius: radius,
			filled: true,
		},
		{
			kind:   shapeText,
			colour: white,
			text:   text,
			origin: r2.Point{X: origin.X, Y: origin.Y},
			xAxis:  frame.Direction(r2.Point{X: 1}),
			yAxis:  frame.Direction(r2.Point{Y: -1}),
			size:   cfg.MarkFontSize,
		},
	}
}
