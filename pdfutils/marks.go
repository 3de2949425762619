package pdfutils

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// IconType identifies what a placed mark looks like and how it scores.
type IconType string

const (
	FullMark  IconType = "FULL_MARK"
	HalfMark  IconType = "HALF_MARK"
	Cross     IconType = "CROSS"
	AckMark   IconType = "ACK_MARK"
	Number    IconType = "NUMBER"
	Highlight IconType = "HIGHLIGHT"
)

func (t IconType) Valid() bool {
	switch t {
	case FullMark, HalfMark, Cross, AckMark, Number, Highlight:
		return true
	}

	return false
}

// ErrMalformedMark is returned for marks that cannot be rendered.
var ErrMalformedMark = errors.New("malformed mark")

// MarkError reports a malformed mark together with its position in the
// submission.
type MarkError struct {
	Page  int
	Index int
	Err   error
}

func (e *MarkError) Error() string {
	return fmt.Sprintf("page %d, mark %d: %v", e.Page, e.Index, e.Err)
}

func (e *MarkError) Unwrap() error { return e.Err }

// MarkCoordinate is a point in UI pixel space, origin at the top left of the
// displayed page.
type MarkCoordinate struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Width *float64 `json:"width,omitempty"`
}

func (c *MarkCoordinate) UnmarshalJSON(b []byte) error {
	var raw struct {
		X     *float64 `json:"x"`
		Y     *float64 `json:"y"`
		Width *float64 `json:"width"`
	}

	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw.X == nil {
		return errors.Wrap(ErrMalformedMark, "missing coordinate x")
	}

	if raw.Y == nil {
		return errors.Wrap(ErrMalformedMark, "missing coordinate y")
	}

	c.X = *raw.X
	c.Y = *raw.Y
	c.Width = raw.Width

	return nil
}

type MarkInfo struct {
	IconType     IconType        `json:"iconType"`
	Coordinates  *MarkCoordinate `json:"coordinates"`
	Colour       string          `json:"colour"`
	TotalMark    *float64        `json:"totalMark,omitempty"`
	SectionLabel string          `json:"sectionLabel,omitempty"`
	Comment      string          `json:"comment,omitempty"`
}

// Scored reports whether the mark is a numeric mark carrying a score.
func (m *MarkInfo) Scored() bool {
	return m.IconType == Number && m.TotalMark != nil
}

func (m *MarkInfo) Validate() error {
	if !m.IconType.Valid() {
		return errors.Wrapf(ErrMalformedMark, "unknown icon type %q", m.IconType)
	}

	if m.Coordinates == nil {
		return errors.Wrap(ErrMalformedMark, "missing coordinates")
	}

	c := m.Coordinates
	if !finite(c.X) || !finite(c.Y) {
		return errors.Wrap(ErrMalformedMark, "coordinates are not finite")
	}

	if m.IconType == Highlight && (c.Width == nil || !finite(*c.Width) || *c.Width <= 0) {
		return errors.Wrap(ErrMalformedMark, "highlight without a width")
	}

	if m.TotalMark != nil && !finite(*m.TotalMark) {
		return errors.Wrap(ErrMalformedMark, "total mark is not finite")
	}

	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarkPages holds the marks of a submission by zero-based page index. The
// order within a page is the order marks were placed.
type MarkPages [][]MarkInfo

// UnmarshalJSON accepts an array of pages or an object keyed by page index,
// which is how the marking app stores sparse pages.
func (p *MarkPages) UnmarshalJSON(b []byte) error {
	raw, err := decodePageIndexed(b)
	if err != nil {
		return err
	}

	pages := make(MarkPages, len(raw))

	for pageIndex, entry := range raw {
		if entry == nil || string(entry) == "null" {
			continue
		}

		var marks []json.RawMessage
		if err := json.Unmarshal(entry, &marks); err != nil {
			return &MarkError{Page: pageIndex, Index: -1, Err: errors.Wrap(ErrMalformedMark, err.Error())}
		}

		pages[pageIndex] = make([]MarkInfo, 0, len(marks))

		for i, m := range marks {
			var mark MarkInfo
			if err := json.Unmarshal(m, &mark); err != nil {
				if !errors.Is(err, ErrMalformedMark) {
					err = errors.Wrap(ErrMalformedMark, err.Error())
				}
				return &MarkError{Page: pageIndex, Index: i, Err: err}
			}
			pages[pageIndex] = append(pages[pageIndex], mark)
		}
	}

	*p = pages

	return nil
}

// Validate checks every mark and returns the first failure as a *MarkError.
func (p MarkPages) Validate() error {
	for pageIndex, marks := range p {
		for i := range marks {
			if err := marks[i].Validate(); err != nil {
				return &MarkError{Page: pageIndex, Index: i, Err: err}
			}
		}
	}

	return nil
}

// Page returns the marks placed on the page, or nil.
func (p MarkPages) Page(pageIndex int) []MarkInfo {
	if pageIndex < 0 || pageIndex >= len(p) {
		return nil
	}

	return p[pageIndex]
}

type PageSettings struct {
	Rotation *int `json:"rotation,omitempty"`
}

// PageSettingsList holds per-page overrides by zero-based page index.
type PageSettingsList []*PageSettings

func (l *PageSettingsList) UnmarshalJSON(b []byte) error {
	raw, err := decodePageIndexed(b)
	if err != nil {
		return err
	}

	list := make(PageSettingsList, len(raw))

	for pageIndex, entry := range raw {
		if entry == nil || string(entry) == "null" {
			continue
		}

		var s PageSettings
		if err := json.Unmarshal(entry, &s); err != nil {
			return errors.Wrapf(err, "page settings %d", pageIndex)
		}
		list[pageIndex] = &s
	}

	*l = list

	return nil
}

// Rotation returns the rotation override for the page, if one is set.
func (l PageSettingsList) Rotation(pageIndex int) (int, bool) {
	if pageIndex < 0 || pageIndex >= len(l) || l[pageIndex] == nil || l[pageIndex].Rotation == nil {
		return 0, false
	}

	return *l[pageIndex].Rotation, true
}

// SubmissionInfo is everything captured for one submission while marking.
type SubmissionInfo struct {
	Marks        MarkPages        `json:"marks"`
	PageSettings PageSettingsList `json:"pageSettings,omitempty"`
}

func decodePageIndexed(b []byte) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, errors.Wrap(err, "expected an array or an object keyed by page index")
	}

	indexes := make([]int, 0, len(obj))
	byIndex := make(map[int]json.RawMessage, len(obj))

	for k, v := range obj {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return nil, errors.Errorf("invalid page index %q", k)
		}
		indexes = append(indexes, i)
		byIndex[i] = v
	}

	sort.Ints(indexes)

	if len(indexes) == 0 {
		return nil, nil
	}

	list = make([]json.RawMessage, indexes[len(indexes)-1]+1)
	for _, i := range indexes {
		list[i] = byIndex[i]
	}

	return list, nil
}
