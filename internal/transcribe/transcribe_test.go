package transcribe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

func TestExtractWordTimestamps_FlattensAllSegments(t *testing.T) {
	segments := []capability.TranscriptSegment{
		{Words: []capability.WordTiming{{Word: "call", Start: 0, End: 1}, {Word: "order", Start: 1, End: 2}}},
		{Words: []capability.WordTiming{{Word: "next", Start: 2, End: 3}}},
	}

	got := extractWordTimestamps(segments)

	assert.Equal(t, []ledger.WordTimestamp{
		{Word: "call", Start: 0, End: 1},
		{Word: "order", Start: 1, End: 2},
		{Word: "next", Start: 2, End: 3},
	}, got)
}

func TestExtractWordTimestamps_SegmentsWithNoWordsAreSkipped(t *testing.T) {
	segments := []capability.TranscriptSegment{{Text: "unsegmented text"}}
	assert.Nil(t, extractWordTimestamps(segments))
}

func TestAudioPath_BuildsMP3PathUnderAudioDir(t *testing.T) {
	s := &Service{AudioDir: "/data/audio"}
	assert.Equal(t, "/data/audio/99.mp3", s.audioPath(99))
}
