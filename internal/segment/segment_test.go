package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

func intPtr(v int) *int { return &v }

func TestBySegments_NoAgendaItemsYieldsSingleSegment(t *testing.T) {
	segments := BySegments("full meeting text", nil, nil)

	assert.Len(t, segments, 1)
	assert.Nil(t, segments[0].AgendaItemID)
	assert.Equal(t, "full meeting text", segments[0].Text)
	assert.Equal(t, 0, segments[0].StartSeconds)
}

func TestBySegments_NoWordTimestampsFallsBackToWordCount(t *testing.T) {
	items := []ledger.AgendaItem{
		{ID: 1, StartSeconds: intPtr(0), EndSeconds: intPtr(60)},
		{ID: 2, StartSeconds: intPtr(60), EndSeconds: intPtr(120)},
	}

	segments := BySegments("one two three four", nil, items)

	assert.Len(t, segments, 2)
	assert.Equal(t, int64(1), *segments[0].AgendaItemID)
	assert.Equal(t, int64(2), *segments[1].AgendaItemID)
}

func TestBySegments_WithWordTimestampsSlicesByTime(t *testing.T) {
	items := []ledger.AgendaItem{
		{ID: 1, StartSeconds: intPtr(0)},
		{ID: 2, StartSeconds: intPtr(10)},
	}
	words := []ledger.WordTimestamp{
		{Word: "call", Start: 0, End: 1},
		{Word: "to", Start: 1, End: 2},
		{Word: "order", Start: 2, End: 3},
		{Word: "next", Start: 10, End: 11},
		{Word: "item", Start: 11, End: 12},
	}

	segments := BySegments("call to order next item", words, items)

	assert.Len(t, segments, 2)
	assert.Equal(t, "call to order", segments[0].Text)
	assert.Equal(t, "next item", segments[1].Text)
	assert.Equal(t, 10, *segments[0].EndSeconds)
}

func TestByWordCount_SplitsProportionallyToAgendaDuration(t *testing.T) {
	items := []ledger.AgendaItem{
		{ID: 1, StartSeconds: intPtr(0), EndSeconds: intPtr(30)},
		{ID: 2, StartSeconds: intPtr(30), EndSeconds: intPtr(90)},
	}
	text := "a b c d e f g h i j k l"

	segments := ByWordCount(text, items)

	assert.Len(t, segments, 2)
	// item 1 covers 30s of 90s total -> 1/3 of the 12 words = 4 words.
	assert.Equal(t, "a b c d", segments[0].Text)
	// item 2 gets the remainder.
	assert.Equal(t, "e f g h i j k l", segments[1].Text)
}

func TestByWordCount_EmptyAgendaItemsYieldsNoSegments(t *testing.T) {
	segments := ByWordCount("some text", nil)
	assert.Empty(t, segments)
}
