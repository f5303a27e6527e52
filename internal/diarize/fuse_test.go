package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

func TestFuse_PatternTakesPriorityOverAgendaAndLLM(t *testing.T) {
	segments := []capability.TranscriptSegment{
		{Start: 0, End: 5, Text: "This is Councilmember Johnson speaking."},
	}
	patternIDs := map[int][]string{0: {"Johnson"}}
	agendaIDs := map[int]string{0: "Garcia"}
	llmIDs := []LLMIdentification{{SegmentIndex: 0, Speaker: "Smith", Confidence: 0.5}}

	fused, _ := Fuse(segments, nil, patternIDs, agendaIDs, llmIDs)

	assert.Equal(t, "Johnson", fused[0].SpeakerName)
	assert.Equal(t, "pattern", fused[0].Method)
}

func TestFuse_AgendaUsedWhenNoPatternMatch(t *testing.T) {
	segments := []capability.TranscriptSegment{
		{Start: 0, End: 5, Text: "Let's move to the next item."},
	}
	agendaIDs := map[int]string{0: "Garcia"}

	fused, _ := Fuse(segments, nil, nil, agendaIDs, nil)

	assert.Equal(t, "Garcia", fused[0].SpeakerName)
	assert.Equal(t, "agenda", fused[0].Method)
}

func TestFuse_LLMUsedAsLastResort(t *testing.T) {
	segments := []capability.TranscriptSegment{
		{Start: 0, End: 5, Text: "Some unattributed remark."},
	}
	llmIDs := []LLMIdentification{{SegmentIndex: 0, Speaker: "Smith", Confidence: 0.4}}

	fused, _ := Fuse(segments, nil, nil, nil, llmIDs)

	assert.Equal(t, "Smith", fused[0].SpeakerName)
	assert.Equal(t, "llm", fused[0].Method)
}

func TestFuse_TurnMajorityNameAppliesToUnattributedSegmentInSameTurn(t *testing.T) {
	segments := []capability.TranscriptSegment{
		{Start: 0, End: 2, Text: "This is Councilmember Johnson."},
		{Start: 2, End: 4, Text: "Continuing on the same point."},
	}
	turns := []capability.SpeakerTurn{{Start: 0, End: 4, SpeakerID: "SPEAKER_00"}}
	patternIDs := map[int][]string{0: {"Johnson"}}

	fused, mapping := Fuse(segments, turns, patternIDs, nil, nil)

	assert.Equal(t, "Johnson", fused[0].SpeakerName)
	assert.Equal(t, "Johnson", fused[1].SpeakerName)
	assert.Equal(t, "turn_mapped", fused[1].Method)
	assert.Equal(t, "Johnson", mapping["SPEAKER_00"])
}

func TestToPersistedSegments_AttachesAgendaItemID(t *testing.T) {
	fused := []FusedSegment{
		{Start: 0, End: 5, Text: "hello", SpeakerID: "SPEAKER_00", SpeakerName: "Johnson", Method: "pattern", Confidence: 0.9},
	}
	agendaItemIDs := map[int]int64{0: 42}

	segments := ToPersistedSegments(fused, agendaItemIDs)

	assert.Len(t, segments, 1)
	assert.Equal(t, "Johnson", segments[0].SpeakerName)
	assert.NotNil(t, segments[0].AgendaItemID)
	assert.Equal(t, int64(42), *segments[0].AgendaItemID)
}

func TestToPersistedSegments_NoAgendaMappingLeavesNilAgendaItemID(t *testing.T) {
	fused := []FusedSegment{
		{Start: 0, End: 5, Text: "hello", SpeakerID: "SPEAKER_00"},
	}

	segments := ToPersistedSegments(fused, nil)

	assert.Nil(t, segments[0].AgendaItemID)
}
