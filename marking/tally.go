package marking

import (
	"github.com/mgmeyers/pdfmarks/pdfutils"
)

// Tally accumulates the grade of one submission. Each stage returns the
// Tally of the marks it handled and Finalize merges them.
type Tally struct {
	TotalMark    float64  `json:"totalMark"`
	GeneralMarks float64  `json:"generalMarks"`
	SectionMarks []string `json:"sectionMarks"`
}

// Merge adds o to t. Section labels of o follow those of t.
func (t Tally) Merge(o Tally) Tally {
	labels := make([]string, 0, len(t.SectionMarks)+len(o.SectionMarks))
	labels = append(labels, t.SectionMarks...)
	labels = append(labels, o.SectionMarks...)

	return Tally{
		TotalMark:    t.TotalMark + o.TotalMark,
		GeneralMarks: t.GeneralMarks + o.GeneralMarks,
		SectionMarks: labels,
	}
}

// GeneralValue is what a tick, half tick, cross or acknowledgement mark adds
// to the total. A value stored on the mark wins over the configured default.
func (c Config) GeneralValue(mark *pdfutils.MarkInfo) (float64, bool) {
	var value float64

	switch mark.IconType {
	case pdfutils.FullMark:
		value = c.FullMarkValue
	case pdfutils.HalfMark:
		value = c.FullMarkValue / 2
	case pdfutils.Cross:
		value = c.IncorrectMarkValue
	case pdfutils.AckMark:
		value = c.AckMarkValue
	default:
		return 0, false
	}

	if mark.TotalMark != nil {
		value = *mark.TotalMark
	}

	return value, true
}

// SectionLabel is the label used for a scored numeric mark.
func SectionLabel(mark *pdfutils.MarkInfo) string {
	return pdfutils.SectionText(mark.SectionLabel, *mark.TotalMark)
}

func (t Tally) addSection(mark *pdfutils.MarkInfo) Tally {
	if !mark.Scored() {
		return t
	}

	t.TotalMark += *mark.TotalMark
	t.SectionMarks = append(t.SectionMarks[:len(t.SectionMarks):len(t.SectionMarks)], SectionLabel(mark))

	return t
}

func (t Tally) addGeneral(mark *pdfutils.MarkInfo, cfg Config) Tally {
	value, ok := cfg.GeneralValue(mark)
	if !ok {
		return t
	}

	t.TotalMark += value
	t.GeneralMarks += value

	return t
}

// ComputeTally folds the scoring rules over every mark without touching a
// PDF. It agrees with the totals Finalize reports for the same marks.
func ComputeTally(marks pdfutils.MarkPages, cfg Config) (Tally, error) {
	if err := marks.Validate(); err != nil {
		return Tally{}, err
	}

	t := Tally{SectionMarks: []string{}}

	for _, page := range marks {
		for i := range page {
			t = t.addSection(&page[i])
			t = t.addGeneral(&page[i], cfg)
		}
	}

	return t, nil
}
