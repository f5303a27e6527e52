package diarize

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

const stageName = "diarize"

// Service attaches speaker attribution to a meeting's segments. Unlike
// every other stage, diarization is never gated by meetings.status: its
// result lives entirely in {transcriptDir}/{clip_id}_diarization.json, so
// it can run (and re-run) against any meeting that already has a
// transcript, independent of whatever later stage the pipeline has since
// reached. The ledger only ever sees its processing_log events.
type Service struct {
	Diarizer     capability.Diarizer
	Chat         capability.Chat
	Ledger       *ledger.Store
	AudioDir     string
	TranscriptDir string

	PrimaryModel   string
	LLMModel       string
	CouncilMembers []string
	SpeakerStoplist []string

	Log *slog.Logger
}

// Stats summarizes a diarize batch's outcome.
type Stats struct {
	Diarized int
	Skipped  int
	Failed   int
}

// RunBatch diarizes up to batchSize meetings that have a transcript but no
// diarization result yet.
func (s *Service) RunBatch(ctx context.Context, clipIDs []int64, batchSize int) (Stats, error) {
	stats := Stats{}
	count := 0
	for _, clipID := range clipIDs {
		if count >= batchSize {
			break
		}
		if HasDiarizationFile(s.TranscriptDir, clipID) {
			stats.Skipped++
			continue
		}

		if err := s.diarizeOne(ctx, clipID); err != nil {
			s.Log.Error("diarization failed", "clip_id", clipID, "error", err)
			_ = s.Ledger.LogEvent(ctx, clipID, stageName, "failed", err.Error())
			stats.Failed++
			count++
			continue
		}
		stats.Diarized++
		count++
	}
	return stats, nil
}

func (s *Service) diarizeOne(ctx context.Context, clipID int64) error {
	if err := s.Ledger.LogEvent(ctx, clipID, stageName, "started", ""); err != nil {
		return err
	}

	transcript, err := loadTranscriptSegments(s.TranscriptDir, clipID, s.PrimaryModel)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	if transcript == nil {
		return fmt.Errorf("no transcript found for clip %d", clipID)
	}

	audioPath := filepath.Join(s.AudioDir, fmt.Sprintf("%d.mp3", clipID))
	turns, err := s.Diarizer.Diarize(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("run diarizer: %w", err)
	}

	patternIDs := IdentifyFromPatterns(transcript.Segments, s.CouncilMembers, s.SpeakerStoplist)

	agendaItems, err := s.Ledger.GetAgendaItems(ctx, clipID)
	if err != nil {
		return fmt.Errorf("load agenda items: %w", err)
	}
	agendaIDs := IdentifyFromAgenda(transcript.Segments, agendaItems)

	agendaContext := agendaContextText(agendaItems)
	llmIDs := IdentifyWithLLM(ctx, s.Chat, s.LLMModel, transcript.Segments, agendaContext, s.CouncilMembers, s.Log)

	fused, speakerMapping := Fuse(transcript.Segments, turns, patternIDs, agendaIDs, llmIDs)
	agendaItemIDs := AgendaItemIDsFor(transcript.Segments, agendaItems)

	totalSpeakers := countDistinctSpeakerIDs(fused)
	result := PersistedResult{
		ClipID:             clipID,
		TotalSpeakers:      totalSpeakers,
		IdentifiedSpeakers: len(speakerMapping),
		SpeakerMapping:     speakerMapping,
		Segments:           ToPersistedSegments(fused, agendaItemIDs),
	}
	if err := saveDiarizationResult(s.TranscriptDir, clipID, result); err != nil {
		return fmt.Errorf("save diarization result: %w", err)
	}

	return s.Ledger.LogEvent(ctx, clipID, stageName, "completed", fmt.Sprintf("speakers=%d identified=%d", totalSpeakers, len(speakerMapping)))
}

func agendaContextText(items []ledger.AgendaItem) string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		if item.Title != "" {
			titles = append(titles, item.Title)
		}
	}
	return strings.Join(titles, "; ")
}

func countDistinctSpeakerIDs(fused []FusedSegment) int {
	seen := map[string]bool{}
	for _, fs := range fused {
		seen[fs.SpeakerID] = true
	}
	return len(seen)
}
