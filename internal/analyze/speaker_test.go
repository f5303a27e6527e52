package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chico-council/meeting-pipeline/internal/diarize"
)

func TestEnhanceWithSpeakers_NilDiarizationReturnsTextUnchanged(t *testing.T) {
	got := enhanceWithSpeakers("motion carries", nil)
	assert.Equal(t, "motion carries", got)
}

func TestEnhanceWithSpeakers_EmptyMappingReturnsTextUnchanged(t *testing.T) {
	got := enhanceWithSpeakers("motion carries", &diarize.PersistedResult{})
	assert.Equal(t, "motion carries", got)
}

func TestEnhanceWithSpeakers_PrependsDeduplicatedSpeakerHeader(t *testing.T) {
	diarization := &diarize.PersistedResult{SpeakerMapping: map[string]string{
		"turn-1": "Mayor Smith",
		"turn-2": "Mayor Smith",
		"turn-3": "Council Member Ortiz",
	}}

	got := enhanceWithSpeakers("motion carries", diarization)

	assert.Contains(t, got, "[Identified speakers:")
	assert.Contains(t, got, "Mayor Smith")
	assert.Contains(t, got, "Council Member Ortiz")
	assert.Contains(t, got, "motion carries")
}

func TestSpeakerSummary_NilDiarizationReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", speakerSummary(nil))
}

func TestSpeakerSummary_ListsEachNamedSpeaker(t *testing.T) {
	diarization := &diarize.PersistedResult{SpeakerMapping: map[string]string{
		"turn-1": "Mayor Smith",
		"turn-2": "",
	}}

	got := speakerSummary(diarization)

	assert.Contains(t, got, "Identified speakers in this meeting:")
	assert.Contains(t, got, "Mayor Smith")
}
