// Package segment slices a meeting's full transcript text into
// agenda-item-aligned spans. It is a pure function package: no I/O and no
// Store access (it uses only the ledger package's types), so it is
// trivially unit-testable.
package segment

import (
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

// Segment is one slice of a meeting's transcript, aligned (when possible)
// to a single agenda item.
type Segment struct {
	AgendaItemID *int64
	Text         string
	StartSeconds int
	EndSeconds   *int
}

// BySegments slices fullText into agenda-item-aligned segments.
//
//   - No agenda items at all: the whole transcript is a single segment.
//   - Agenda items present but no word timestamps: falls back to a
//     proportional word-count split (ByWordCount).
//   - Agenda items and word timestamps present: each agenda item's segment
//     is built from the words whose start time falls in [start, end).
//
// wordTimestamps must be sorted ascending by Start; BySegments relies on
// that order to stop scanning a segment's words as soon as it sees one
// past the segment's end.
func BySegments(fullText string, wordTimestamps []ledger.WordTimestamp, agendaItems []ledger.AgendaItem) []Segment {
	if len(agendaItems) == 0 {
		return []Segment{{Text: fullText, StartSeconds: 0}}
	}
	if len(wordTimestamps) == 0 {
		return ByWordCount(fullText, agendaItems)
	}

	segments := make([]Segment, 0, len(agendaItems))
	wordIdx := 0
	for i, item := range agendaItems {
		startSec := 0
		if item.StartSeconds != nil {
			startSec = *item.StartSeconds
		}
		endSec := agendaItemEnd(agendaItems, i, wordTimestamps)

		var words []string
		for ; wordIdx < len(wordTimestamps); wordIdx++ {
			w := wordTimestamps[wordIdx]
			if w.Start >= float64(endSec) {
				break
			}
			if w.Start >= float64(startSec) {
				words = append(words, w.Word)
			}
		}

		id := item.ID
		end := endSec
		segments = append(segments, Segment{
			AgendaItemID: &id,
			Text:         strings.Join(words, " "),
			StartSeconds: startSec,
			EndSeconds:   &end,
		})
	}
	return segments
}

// agendaItemEnd derives an agenda item's end time: the next item's start,
// or (for the last item) the last word's end time, or start+3600 if
// neither is available.
func agendaItemEnd(items []ledger.AgendaItem, i int, wordTimestamps []ledger.WordTimestamp) int {
	if i+1 < len(items) && items[i+1].StartSeconds != nil {
		return *items[i+1].StartSeconds
	}
	if len(wordTimestamps) > 0 {
		return int(wordTimestamps[len(wordTimestamps)-1].End)
	}
	start := 0
	if items[i].StartSeconds != nil {
		start = *items[i].StartSeconds
	}
	return start + 3600
}

// ByWordCount splits fullText proportionally to each agenda item's share of
// the meeting's total duration, used when the transcript has no word-level
// timing to slice on precisely. Any words left over after integer rounding
// are appended to the final segment rather than distributed.
func ByWordCount(fullText string, agendaItems []ledger.AgendaItem) []Segment {
	words := strings.Fields(fullText)
	totalDuration := estimateTotalDuration(agendaItems)
	if totalDuration <= 0 {
		totalDuration = 1
	}

	segments := make([]Segment, len(agendaItems))
	consumed := 0
	for i, item := range agendaItems {
		start := 0
		if item.StartSeconds != nil {
			start = *item.StartSeconds
		}
		duration := itemDuration(item, totalDuration)
		proportion := float64(duration) / float64(totalDuration)
		count := int(float64(len(words)) * proportion)

		var segWords []string
		if i == len(agendaItems)-1 {
			segWords = words[consumed:]
		} else {
			end := consumed + count
			if end > len(words) {
				end = len(words)
			}
			segWords = words[consumed:end]
			consumed = end
		}

		id := item.ID
		segments[i] = Segment{
			AgendaItemID: &id,
			Text:         strings.Join(segWords, " "),
			StartSeconds: start,
			EndSeconds:   item.EndSeconds,
		}
	}
	return segments
}

func estimateTotalDuration(items []ledger.AgendaItem) int {
	if len(items) == 0 {
		return 0
	}
	last := items[len(items)-1]
	if last.EndSeconds != nil {
		return *last.EndSeconds
	}
	if last.StartSeconds != nil {
		return *last.StartSeconds + 600
	}
	return 600
}

func itemDuration(item ledger.AgendaItem, totalDuration int) int {
	start := 0
	if item.StartSeconds != nil {
		start = *item.StartSeconds
	}
	end := totalDuration
	if item.EndSeconds != nil {
		end = *item.EndSeconds
	}
	d := end - start
	if d <= 0 {
		return 1
	}
	return d
}
