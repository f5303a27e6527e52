package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIdentificationArray_ValidJSON(t *testing.T) {
	response := `Here is my analysis:
[{"segment_index": 0, "speaker": "Council Member Brown", "confidence": 0.8, "reason": "Self-identified"}]
Hope that helps.`

	got, ok := parseIdentificationArray(response)

	assert.True(t, ok)
	assert.Len(t, got, 1)
	assert.Equal(t, "Council Member Brown", got[0].Speaker)
	assert.Equal(t, 0.8, got[0].Confidence)
}

func TestParseIdentificationArray_NoArrayPresent(t *testing.T) {
	_, ok := parseIdentificationArray("I could not determine the speakers.")
	assert.False(t, ok)
}

func TestParseIdentificationArray_MalformedJSONInsideBrackets(t *testing.T) {
	_, ok := parseIdentificationArray("[not valid json]")
	assert.False(t, ok)
}

func TestParseIdentificationArray_MultipleEntries(t *testing.T) {
	response := `[{"segment_index": 0, "speaker": "Brown", "confidence": 0.9, "reason": "x"},
{"segment_index": 1, "speaker": "Garcia", "confidence": 0.6, "reason": "y"}]`

	got, ok := parseIdentificationArray(response)

	assert.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[1].SegmentIndex)
}
