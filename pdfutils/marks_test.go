package pdfutils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMarkPagesArray(t *testing.T) {
	in := `{
		"marks": [
			[
				{"iconType": "FULL_MARK", "coordinates": {"x": 10, "y": 20}, "colour": "#6F327A"},
				{"iconType": "NUMBER", "coordinates": {"x": 1.5, "y": 2}, "colour": "#000000", "totalMark": 2.5, "sectionLabel": "Q1", "comment": "ok"}
			],
			null,
			[{"iconType": "HIGHLIGHT", "coordinates": {"x": 0, "y": 0, "width": 40}, "colour": "rgba(255,235,59,0.4)"}]
		],
		"pageSettings": [null, {"rotation": 90}]
	}`

	var s SubmissionInfo
	require.NoError(t, json.Unmarshal([]byte(in), &s))

	require.Len(t, s.Marks, 3)
	require.Len(t, s.Marks[0], 2)
	assert.Nil(t, s.Marks[1])
	require.Len(t, s.Marks[2], 1)

	assert.Equal(t, FullMark, s.Marks[0][0].IconType)
	assert.False(t, s.Marks[0][0].Scored())

	n := s.Marks[0][1]
	assert.True(t, n.Scored())
	assert.Equal(t, 2.5, *n.TotalMark)
	assert.Equal(t, "Q1", n.SectionLabel)
	assert.Equal(t, MarkCoordinate{X: 1.5, Y: 2}, *n.Coordinates)

	h := s.Marks[2][0]
	require.NotNil(t, h.Coordinates.Width)
	assert.Equal(t, 40.0, *h.Coordinates.Width)

	assert.NoError(t, s.Marks.Validate())

	_, ok := s.PageSettings.Rotation(0)
	assert.False(t, ok)
	r, ok := s.PageSettings.Rotation(1)
	assert.True(t, ok)
	assert.Equal(t, 90, r)
	_, ok = s.PageSettings.Rotation(7)
	assert.False(t, ok)
}

func TestDecodeMarkPagesObject(t *testing.T) {
	in := `{
		"2": [{"iconType": "CROSS", "coordinates": {"x": 5, "y": 6}, "colour": ""}],
		"0": []
	}`

	var pages MarkPages
	require.NoError(t, json.Unmarshal([]byte(in), &pages))

	require.Len(t, pages, 3)
	assert.NotNil(t, pages[0])
	assert.Empty(t, pages[0])
	assert.Nil(t, pages[1])
	require.Len(t, pages.Page(2), 1)
	assert.Equal(t, Cross, pages.Page(2)[0].IconType)

	assert.Nil(t, pages.Page(3))
	assert.Nil(t, pages.Page(-1))

	var settings PageSettingsList
	require.NoError(t, json.Unmarshal([]byte(`{"3": {"rotation": 0}}`), &settings))
	r, ok := settings.Rotation(3)
	assert.True(t, ok)
	assert.Equal(t, 0, r)

	var empty MarkPages
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty)
}

func TestDecodeMarkPagesErrors(t *testing.T) {
	var pages MarkPages

	err := json.Unmarshal([]byte(`{"1": [
		{"iconType": "CROSS", "coordinates": {"x": 1, "y": 1}},
		{"iconType": "CROSS", "coordinates": {"y": 3}}
	]}`), &pages)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMark)

	var markErr *MarkError
	require.ErrorAs(t, err, &markErr)
	assert.Equal(t, 1, markErr.Page)
	assert.Equal(t, 1, markErr.Index)
	assert.Contains(t, err.Error(), "page 1, mark 1")

	err = json.Unmarshal([]byte(`[[{"iconType": "CROSS", "coordinates": {"x": "a", "y": 1}}]]`), &pages)
	assert.ErrorIs(t, err, ErrMalformedMark)

	err = json.Unmarshal([]byte(`{"first": []}`), &pages)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`[{"iconType": "CROSS"}]`), &pages)
	require.ErrorAs(t, err, &markErr)
	assert.Equal(t, -1, markErr.Index)

	err = json.Unmarshal([]byte(`"marks"`), &pages)
	assert.Error(t, err)
}

func TestMarkValidate(t *testing.T) {
	width := 10.0
	zero := 0.0
	nan := math.NaN()

	tests := []struct {
		name string
		mark MarkInfo
		ok   bool
	}{
		{"tick", MarkInfo{IconType: FullMark, Coordinates: &MarkCoordinate{}}, true},
		{"unknown icon", MarkInfo{IconType: "STAR", Coordinates: &MarkCoordinate{}}, false},
		{"no coordinates", MarkInfo{IconType: Cross}, false},
		{"infinite", MarkInfo{IconType: Cross, Coordinates: &MarkCoordinate{X: math.Inf(1)}}, false},
		{"highlight", MarkInfo{IconType: Highlight, Coordinates: &MarkCoordinate{Width: &width}}, true},
		{"highlight without width", MarkInfo{IconType: Highlight, Coordinates: &MarkCoordinate{}}, false},
		{"zero width highlight", MarkInfo{IconType: Highlight, Coordinates: &MarkCoordinate{Width: &zero}}, false},
		{"nan score", MarkInfo{IconType: Number, Coordinates: &MarkCoordinate{}, TotalMark: &nan}, false},
		{"unscored number", MarkInfo{IconType: Number, Coordinates: &MarkCoordinate{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mark.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrMalformedMark)
			}
		})
	}

	pages := MarkPages{{tests[0].mark}, nil, {tests[0].mark, tests[2].mark}}
	var markErr *MarkError
	require.ErrorAs(t, pages.Validate(), &markErr)
	assert.Equal(t, 2, markErr.Page)
	assert.Equal(t, 1, markErr.Index)
}
