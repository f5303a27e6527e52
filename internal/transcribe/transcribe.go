// Package transcribe runs dual-model transcription over downloaded audio
// and stores the primary engine's text and word timing in the ledger.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

const stageName = "transcribe"

// Service transcribes downloaded meetings with both configured models.
type Service struct {
	Transcriber    capability.Transcriber
	Ledger         *ledger.Store
	AudioDir       string
	TranscriptDir  string
	PrimaryModel   string
	SecondaryModel string
	Language       string
	Log            *slog.Logger
}

// Stats summarizes a transcribe batch's outcome.
type Stats struct {
	Transcribed int
	Failed      int
}

// RunBatch transcribes up to batchSize downloaded meetings with both models.
func (s *Service) RunBatch(ctx context.Context, batchSize int) (Stats, error) {
	stats := Stats{}
	for i := 0; i < batchSize; i++ {
		m, err := s.Ledger.NextPending(ctx, stageName)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				break
			}
			return stats, fmt.Errorf("claim next pending transcription: %w", err)
		}

		if err := s.transcribeOne(ctx, m.ClipID); err != nil {
			s.Log.Error("transcription failed", "clip_id", m.ClipID, "error", err)
			_ = s.Ledger.UpdateMeetingStatus(ctx, m.ClipID, ledger.StatusFailed)
			_ = s.Ledger.LogEvent(ctx, m.ClipID, stageName, "failed", err.Error())
			stats.Failed++
			continue
		}
		stats.Transcribed++
	}
	return stats, nil
}

func (s *Service) audioPath(clipID int64) string {
	return filepath.Join(s.AudioDir, fmt.Sprintf("%d.mp3", clipID))
}

func (s *Service) transcribeOne(ctx context.Context, clipID int64) error {
	if err := s.Ledger.LogEvent(ctx, clipID, stageName, "started", ""); err != nil {
		return err
	}

	language := s.Language
	if language == "" {
		language = "en"
	}
	audioPath := s.audioPath(clipID)

	primary, err := s.Transcriber.Transcribe(ctx, audioPath, s.PrimaryModel, language)
	if err != nil {
		return fmt.Errorf("primary transcription: %w", err)
	}
	secondary, err := s.Transcriber.Transcribe(ctx, audioPath, s.SecondaryModel, language)
	if err != nil {
		return fmt.Errorf("secondary transcription: %w", err)
	}

	if err := saveTranscriptFile(s.TranscriptDir, clipID, s.PrimaryModel, primary); err != nil {
		return fmt.Errorf("save primary transcript file: %w", err)
	}
	if err := saveTranscriptFile(s.TranscriptDir, clipID, s.SecondaryModel, secondary); err != nil {
		return fmt.Errorf("save secondary transcript file: %w", err)
	}

	wordTimestamps := extractWordTimestamps(primary.Segments)

	record := ledger.Transcript{
		ClipID:                clipID,
		FullText:              primary.Text,
		WordTimestamps:        wordTimestamps,
		ModelUsed:             fmt.Sprintf("dual:%s+%s", s.PrimaryModel, s.SecondaryModel),
		ProcessingTimeSeconds: primary.ProcessingTimeSeconds + secondary.ProcessingTimeSeconds,
	}
	if err := s.Ledger.UpsertTranscript(ctx, record); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	if err := s.Ledger.UpdateMeetingStatus(ctx, clipID, ledger.StatusTranscribed); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.Ledger.LogEvent(ctx, clipID, stageName, "completed", "")
}

// extractWordTimestamps flattens each segment's word-level timing into a
// single ordered slice. Segments the engine didn't return word timing for
// are simply skipped — missing word timing is not an error, only a
// limitation the segmenter falls back around.
func extractWordTimestamps(segments []capability.TranscriptSegment) []ledger.WordTimestamp {
	var out []ledger.WordTimestamp
	for _, seg := range segments {
		for _, w := range seg.Words {
			out = append(out, ledger.WordTimestamp{Word: w.Word, Start: w.Start, End: w.End})
		}
	}
	return out
}
