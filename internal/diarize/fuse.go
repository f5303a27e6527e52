package diarize

import (
	"fmt"

	"github.com/chico-council/meeting-pipeline/internal/capability"
)

// FusedSegment is one transcript segment with its resolved speaker
// attribution, ready for storage as a PersistedSegment.
type FusedSegment struct {
	Start      float64
	End        float64
	Text       string
	SpeakerID  string
	SpeakerName string
	Confidence float64
	Method     string
}

// Fuse merges turn identifiers from a diarization backend, pattern
// matches, agenda correlation, and LLM inference into one speaker
// attribution per segment.
//
// Priority for a segment's direct attribution is pattern > agenda > llm;
// a segment with none of those falls back to whatever name won the vote
// for its diarization turn ID, if it has one. Each method that fires for a
// segment sharing a turn ID also casts a weighted vote for that turn's
// overall best name (pattern=2, agenda=1.5, llm=1), so segments with no
// direct signal of their own can still inherit their turn's majority name.
func Fuse(segments []capability.TranscriptSegment, turns []capability.SpeakerTurn, patternIDs map[int][]string, agendaIDs map[int]string, llmIDs []LLMIdentification) (fused []FusedSegment, speakerMapping map[string]string) {
	turnOf := mapSegmentsToTurns(segments, turns)
	votes := map[string]map[string]float64{}

	llmBySegment := map[int]LLMIdentification{}
	for _, id := range llmIDs {
		llmBySegment[id.SegmentIndex] = id
	}

	fused = make([]FusedSegment, len(segments))
	for i, seg := range segments {
		turnID, hasTurn := turnOf[i]
		speakerID := turnID
		if !hasTurn {
			speakerID = fmt.Sprintf("UNKNOWN_%d", i)
		}

		fs := FusedSegment{Start: seg.Start, End: seg.End, Text: seg.Text, SpeakerID: speakerID}

		switch {
		case len(patternIDs[i]) > 0:
			name := patternIDs[i][0]
			fs.SpeakerName = name
			fs.Confidence = 0.9
			fs.Method = "pattern"
			if hasTurn {
				castVote(votes, turnID, name, 2)
			}
		case agendaIDs[i] != "":
			name := agendaIDs[i]
			fs.SpeakerName = name
			fs.Confidence = 0.7
			fs.Method = "agenda"
			if hasTurn {
				castVote(votes, turnID, name, 1.5)
			}
		default:
			if id, ok := llmBySegment[i]; ok && id.Speaker != "" {
				fs.SpeakerName = id.Speaker
				fs.Confidence = id.Confidence
				fs.Method = "llm"
				if hasTurn {
					castVote(votes, turnID, id.Speaker, 1)
				}
			}
		}

		fused[i] = fs
	}

	speakerMapping = map[string]string{}
	for turnID, candidates := range votes {
		best, bestVotes := "", 0.0
		for name, v := range candidates {
			if v > bestVotes {
				best, bestVotes = name, v
			}
		}
		if best != "" {
			speakerMapping[turnID] = best
		}
	}

	for i := range fused {
		if fused[i].SpeakerName == "" {
			if name, ok := speakerMapping[fused[i].SpeakerID]; ok {
				fused[i].SpeakerName = name
				fused[i].Confidence = 0.6
				fused[i].Method = "turn_mapped"
			}
		}
	}

	return fused, speakerMapping
}

func castVote(votes map[string]map[string]float64, turnID, name string, weight float64) {
	if votes[turnID] == nil {
		votes[turnID] = map[string]float64{}
	}
	votes[turnID][name] += weight
}

// mapSegmentsToTurns finds, for each transcript segment fully contained
// within a diarization turn's window, that turn's speaker ID.
func mapSegmentsToTurns(segments []capability.TranscriptSegment, turns []capability.SpeakerTurn) map[int]string {
	out := map[int]string{}
	for _, turn := range turns {
		for i, seg := range segments {
			if seg.Start >= turn.Start && seg.End <= turn.End {
				out[i] = turn.SpeakerID
			}
		}
	}
	return out
}

// ToPersistedSegments converts fused segments into the shape written to a
// meeting's diarization file, attaching each segment to the agenda item
// whose window contains it (agendaItemIDs maps fused-segment index to
// agenda item ID), when one is known.
func ToPersistedSegments(fused []FusedSegment, agendaItemIDs map[int]int64) []PersistedSegment {
	out := make([]PersistedSegment, len(fused))
	for i, fs := range fused {
		seg := PersistedSegment{
			Start:       fs.Start,
			End:         fs.End,
			Text:        fs.Text,
			SpeakerID:   fs.SpeakerID,
			SpeakerName: fs.SpeakerName,
			Method:      fs.Method,
			Confidence:  fs.Confidence,
		}
		if id, ok := agendaItemIDs[i]; ok {
			agendaID := id
			seg.AgendaItemID = &agendaID
		}
		out[i] = seg
	}
	return out
}
