package validate

import (
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

// CompareTranscripts computes the overall WER between a primary and
// secondary transcription and flags segments where the two diverge beyond
// threshold, matching each primary segment to the secondary segments that
// overlap its time window.
func CompareTranscripts(primary, secondary *capability.TranscriptionResult, threshold float64) (overallWER float64, divergent []ledger.DivergentSegment) {
	if secondary == nil {
		return 0, nil
	}

	overallWER = WordErrorRate(primary.Text, secondary.Text)

	for i, pSeg := range primary.Segments {
		sText := overlappingText(pSeg, secondary.Segments)
		segWER := WordErrorRate(pSeg.Text, sText)
		if segWER > threshold {
			divergent = append(divergent, ledger.DivergentSegment{
				SegmentIndex:  i,
				Start:         pSeg.Start,
				End:           pSeg.End,
				WER:           segWER,
				PrimaryText:   pSeg.Text,
				SecondaryText: sText,
			})
		}
	}
	return overallWER, divergent
}

// overlappingText concatenates every secondary segment whose time window
// overlaps [seg.Start, seg.End].
func overlappingText(seg capability.TranscriptSegment, secondary []capability.TranscriptSegment) string {
	var parts []string
	for _, s := range secondary {
		if s.Start <= seg.End && s.End >= seg.Start {
			parts = append(parts, s.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// secondaryTextNear finds the secondary segment whose start time is within
// 5 seconds of targetStart, the fallback correlation tier 2 validation uses
// when a segment wasn't already flagged as divergent.
func secondaryTextNear(secondary []capability.TranscriptSegment, targetStart float64) string {
	for _, s := range secondary {
		delta := s.Start - targetStart
		if delta < 0 {
			delta = -delta
		}
		if delta < 5 {
			return s.Text
		}
	}
	return ""
}
