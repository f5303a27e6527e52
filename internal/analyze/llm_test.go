package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject_ValidObject(t *testing.T) {
	response := `Sure, here you go: {"summary": ["point one", "point two"]} let me know if you need more.`

	got, ok := extractJSONObject(response)

	assert.True(t, ok)
	assert.Equal(t, []any{"point one", "point two"}, got["summary"])
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	response := `{"votes": [{"motion": "approve", "vote_count": {"yes": 4, "no": 1}}]}`

	got, ok := extractJSONObject(response)

	assert.True(t, ok)
	assert.Contains(t, got, "votes")
}

func TestExtractJSONObject_NoObjectPresent(t *testing.T) {
	_, ok := extractJSONObject("I don't have an answer for that.")
	assert.False(t, ok)
}

func TestExtractSummaryBullets_FiltersNonStringEntries(t *testing.T) {
	result := map[string]any{"summary": []any{"first", 2, "third"}}

	got := extractSummaryBullets(result)

	assert.Equal(t, []string{"first", "third"}, got)
}

func TestExtractSummaryBullets_NilResultYieldsNil(t *testing.T) {
	assert.Nil(t, extractSummaryBullets(nil))
}

func TestExtractSummaryBullets_MissingSummaryKeyYieldsNil(t *testing.T) {
	assert.Nil(t, extractSummaryBullets(map[string]any{"other": "value"}))
}
