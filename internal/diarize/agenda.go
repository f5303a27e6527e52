package diarize

import (
	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

// IdentifyFromAgenda correlates each segment with the agenda item whose
// time window contains it and returns the presenter named on that item, for
// segments where an agenda item actually names a presenter.
func IdentifyFromAgenda(segments []capability.TranscriptSegment, agendaItems []ledger.AgendaItem) map[int]string {
	out := map[int]string{}
	for i, seg := range segments {
		for _, item := range agendaItems {
			start := 0
			if item.StartSeconds != nil {
				start = *item.StartSeconds
			}
			if float64(start) > seg.Start {
				continue
			}
			if item.EndSeconds != nil && float64(*item.EndSeconds) < seg.Start {
				continue
			}
			if item.Presenter != "" {
				out[i] = item.Presenter
			}
		}
	}
	return out
}

// AgendaItemIDsFor maps each segment index to the ID of the agenda item
// whose time window contains it, for segments that fall within any item's
// window at all.
func AgendaItemIDsFor(segments []capability.TranscriptSegment, agendaItems []ledger.AgendaItem) map[int]int64 {
	out := map[int]int64{}
	for i, seg := range segments {
		for _, item := range agendaItems {
			start := 0
			if item.StartSeconds != nil {
				start = *item.StartSeconds
			}
			if float64(start) > seg.Start {
				continue
			}
			if item.EndSeconds != nil && float64(*item.EndSeconds) < seg.Start {
				continue
			}
			out[i] = item.ID
		}
	}
	return out
}
