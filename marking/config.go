package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
	"github.com/mgmeyers/unipdf/v3/model"
	"github.com/pkg/errors"
)

// Config holds the geometry, fonts, colours and scoring defaults the
// renderer works with. It is passed by value and never modified after a
// Finalizer is built.
type Config struct {
	// Scale converts UI pixels to PDF points.
	Scale float64 `json:"scale"`

	// IconOffset centres a 24pt glyph on the clicked point of a 36px icon.
	IconOffset      float64 `json:"iconOffset"`
	IconStrokeWidth float64 `json:"iconStrokeWidth"`
	HalfStrokeWidth float64 `json:"halfStrokeWidth"`

	CircleDiameter  float64 `json:"circleDiameter"`
	CommentBoxSize  float64 `json:"commentBoxSize"`
	CommentOpacity  float64 `json:"commentOpacity"`
	HighlightHeight float64 `json:"highlightHeight"`

	MarkFont     model.StdFontName `json:"markFont"`
	MarkFontSize float64           `json:"markFontSize"`
	// Glyph advance and ascender to descender height of MarkFont, in em.
	MarkGlyphAdvance float64 `json:"markGlyphAdvance"`
	MarkFontHeight   float64 `json:"markFontHeight"`

	DefaultColour          string `json:"defaultColour"`
	DefaultHighlightColour string `json:"defaultHighlightColour"`

	// Values of unscored general marks. A half mark is worth half a full
	// mark.
	FullMarkValue      float64 `json:"fullMarkValue"`
	IncorrectMarkValue float64 `json:"incorrectMarkValue"`
	AckMarkValue       float64 `json:"ackMarkValue"`

	// StageCheckpoints serializes and re-parses the document after every
	// pipeline stage.
	StageCheckpoints bool `json:"stageCheckpoints"`
	// ValidateOutput runs the serialized output through pdfcpu.
	ValidateOutput bool `json:"validateOutput"`

	Summary SummaryLayout `json:"summary"`
}

// SummaryLayout positions the results page. Distances are in points from
// the bottom left of an unrotated page.
type SummaryLayout struct {
	PageWidth    float64           `json:"pageWidth"`
	PageHeight   float64           `json:"pageHeight"`
	Top          float64           `json:"top"`
	Left         float64           `json:"left"`
	Step         float64           `json:"step"`
	RuleOffset   float64           `json:"ruleOffset"`
	BottomMargin float64           `json:"bottomMargin"`
	Font         model.StdFontName `json:"font"`
	FontSize     float64           `json:"fontSize"`
	HeaderSize   float64           `json:"headerSize"`
	Header       string            `json:"header"`
	Rule         string            `json:"rule"`
	RuleColour   pdfutils.RGB      `json:"ruleColour"`
}

func DefaultConfig() Config {
	scale := pdfutils.ScreenToPDF

	return Config{
		Scale:           scale,
		IconOffset:      (36 - 24/scale) / 2,
		IconStrokeWidth: 2.5,
		HalfStrokeWidth: 2,
		CircleDiameter:  37 * scale,
		CommentBoxSize:  20 * scale,
		CommentOpacity:  0.0001,
		HighlightHeight: 20 * scale,

		MarkFont:         model.CourierBoldName,
		MarkFontSize:     12,
		MarkGlyphAdvance: 0.6,
		MarkFontHeight:   0.786,

		DefaultColour:          "#6F327A",
		DefaultHighlightColour: "rgba(255, 235, 59, 0.4)",

		FullMarkValue:      1,
		IncorrectMarkValue: 0,
		AckMarkValue:       0,

		Summary: SummaryLayout{
			PageWidth:    595.28,
			PageHeight:   841.89,
			Top:          800,
			Left:         25,
			Step:         15,
			RuleOffset:   25,
			BottomMargin: 20,
			Font:         model.HelveticaName,
			FontSize:     12,
			HeaderSize:   14,
			Header:       "Results",
			Rule:         "_________________________________________________________________________________",
			RuleColour:   pdfutils.RGB{Red: 181, Green: 181, Blue: 181},
		},
	}
}

func (c Config) Validate() error {
	if c.Scale <= 0 {
		return errors.New("scale must be positive")
	}

	if c.CircleDiameter <= 0 || c.CommentBoxSize <= 0 || c.HighlightHeight <= 0 {
		return errors.New("mark sizes must be positive")
	}

	if c.MarkFontSize <= 0 || c.MarkGlyphAdvance <= 0 {
		return errors.New("mark font metrics must be positive")
	}

	if _, err := pdfutils.ParseColour(c.DefaultColour); err != nil {
		return errors.Wrap(err, "default colour")
	}

	if _, err := pdfutils.ParseHighlightColour(c.DefaultHighlightColour); err != nil {
		return errors.Wrap(err, "default highlight colour")
	}

	s := c.Summary
	if s.Step <= 0 || s.FontSize <= 0 {
		return errors.New("summary step and font size must be positive")
	}

	if s.Top-s.RuleOffset-2*s.Step < s.BottomMargin || s.Top > s.PageHeight {
		return errors.New("summary page has no room for results")
	}

	return nil
}
