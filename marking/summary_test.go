package marking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryTexts(pages [][]summaryLine) []string {
	texts := []string{}
	for _, lines := range pages {
		for _, line := range lines {
			texts = append(texts, line.text)
		}
	}
	return texts
}

func TestPlanSummarySinglePage(t *testing.T) {
	layout := DefaultConfig().Summary

	pages := planSummary(Tally{
		TotalMark:    9,
		GeneralMarks: 1,
		SectionMarks: []string{"Q1 = 5", "Q2 = 3"},
	}, layout)

	require.Len(t, pages, 1)
	assert.Equal(t, []string{
		"Results",
		layout.Rule,
		"Q1 = 5",
		"Q2 = 3",
		"General Marks = 1",
		layout.Rule,
		"Total = 9",
	}, summaryTexts(pages))

	lines := pages[0]
	assert.Equal(t, layout.Top, lines[0].y)
	assert.Equal(t, layout.Top-layout.RuleOffset, lines[1].y)

	for i := 3; i < len(lines)-1; i++ {
		assert.Equal(t, layout.Step, lines[i-1].y-lines[i].y, "line %d", i)
	}
	// The blank line sits between the rule and the total.
	assert.Equal(t, 2*layout.Step, lines[5].y-lines[6].y)
}

func TestPlanSummaryPaginates(t *testing.T) {
	layout := DefaultConfig().Summary

	labels := make([]string, 100)
	for i := range labels {
		labels[i] = fmt.Sprintf("Question %d = %d", i+1, i%7)
	}

	pages := planSummary(Tally{SectionMarks: labels}, layout)

	// 49 labels fit under the header of the first page and 53 lines on a
	// continuation page, so the remaining 51 labels and the trailing lines
	// need a third page for the total.
	require.Len(t, pages, 3)

	var got []string
	for _, text := range summaryTexts(pages) {
		if len(text) > 9 && text[:9] == "Question " {
			got = append(got, text)
		}
	}
	assert.Equal(t, labels, got)

	for p, lines := range pages {
		require.NotEmpty(t, lines, "page %d", p)
		for _, line := range lines {
			assert.GreaterOrEqual(t, line.y, layout.BottomMargin)
			assert.LessOrEqual(t, line.y, layout.Top)
		}
	}

	assert.Len(t, pages[0], 2+49)
	assert.Equal(t, layout.Top, pages[1][0].y)
	assert.Equal(t, "Total = 0", pages[2][len(pages[2])-1].text)
}

func TestPlanSummaryFitsCapacityExactly(t *testing.T) {
	layout := DefaultConfig().Summary

	// 49 labels plus the trailing lines overflow the first page; 45 do not.
	labels := make([]string, 45)
	for i := range labels {
		labels[i] = fmt.Sprintf("S%d = 1", i)
	}

	assert.Len(t, planSummary(Tally{SectionMarks: labels}, layout), 1)

	labels = append(labels, "S45 = 1", "S46 = 1", "S47 = 1", "S48 = 1")
	assert.Len(t, planSummary(Tally{SectionMarks: labels}, layout), 2)
}

func TestBuildSummaryPages(t *testing.T) {
	pages, err := buildSummaryPages(Tally{TotalMark: 1, SectionMarks: []string{"A = 1"}}, DefaultConfig().Summary)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	mbox, err := pages[0].GetMediaBox()
	require.NoError(t, err)
	assert.InDelta(t, 595.28, mbox.Width(), 1e-9)
	assert.Nil(t, pages[0].Rotate)

	content, err := pages[0].GetAllContentStreams()
	require.NoError(t, err)
	assert.Contains(t, content, "(Total = 1)")
	assert.Contains(t, content, "(A = 1)")
}
