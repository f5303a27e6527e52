package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

func ip(v int) *int { return &v }

func TestIdentifyFromAgenda_ReturnsPresenterForSegmentInWindow(t *testing.T) {
	segments := []capability.TranscriptSegment{{Start: 15}}
	items := []ledger.AgendaItem{
		{StartSeconds: ip(0), EndSeconds: ip(10), Presenter: ""},
		{StartSeconds: ip(10), EndSeconds: ip(30), Presenter: "City Manager Lopez"},
	}

	got := IdentifyFromAgenda(segments, items)

	assert.Equal(t, "City Manager Lopez", got[0])
}

func TestIdentifyFromAgenda_NoPresenterLeavesSegmentUnset(t *testing.T) {
	segments := []capability.TranscriptSegment{{Start: 5}}
	items := []ledger.AgendaItem{{StartSeconds: ip(0), EndSeconds: ip(10)}}

	got := IdentifyFromAgenda(segments, items)

	_, ok := got[0]
	assert.False(t, ok)
}

func TestAgendaItemIDsFor_MapsSegmentToContainingItem(t *testing.T) {
	segments := []capability.TranscriptSegment{{Start: 15}, {Start: 50}}
	items := []ledger.AgendaItem{
		{ID: 1, StartSeconds: ip(0), EndSeconds: ip(30)},
		{ID: 2, StartSeconds: ip(30), EndSeconds: ip(60)},
	}

	got := AgendaItemIDsFor(segments, items)

	assert.Equal(t, int64(1), got[0])
	assert.Equal(t, int64(2), got[1])
}
