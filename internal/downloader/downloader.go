// Package downloader fetches a meeting's audio from its stream URL,
// resuming cleanly when a previous run already produced a valid file.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

const stageName = "download"

// Service downloads audio for discovered meetings, one at a time, the
// pipeline's download stage.
type Service struct {
	Extractor capability.AudioExtractor
	Ledger    *ledger.Store
	AudioDir  string
	Log       *slog.Logger
}

// Stats summarizes a download batch's outcome.
type Stats struct {
	Downloaded int
	Failed     int
	Skipped    int
}

// AudioPath returns the local path a meeting's audio is (or will be) stored at.
func (s *Service) AudioPath(clipID int64) string {
	return filepath.Join(s.AudioDir, fmt.Sprintf("%d.mp3", clipID))
}

// RunBatch downloads up to batchSize discovered meetings.
func (s *Service) RunBatch(ctx context.Context, batchSize int) (Stats, error) {
	stats := Stats{}
	for i := 0; i < batchSize; i++ {
		m, err := s.Ledger.NextPending(ctx, stageName)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				break
			}
			return stats, fmt.Errorf("claim next pending download: %w", err)
		}

		if m.VideoURL == "" {
			s.Log.Warn("meeting has no video url, marking failed", "clip_id", m.ClipID)
			_ = s.Ledger.UpdateMeetingStatus(ctx, m.ClipID, ledger.StatusFailed)
			_ = s.Ledger.LogEvent(ctx, m.ClipID, stageName, "failed", "no video url")
			stats.Skipped++
			continue
		}

		if err := s.downloadOne(ctx, m.ClipID, m.VideoURL); err != nil {
			s.Log.Error("download failed", "clip_id", m.ClipID, "error", err)
			_ = s.Ledger.UpdateMeetingStatus(ctx, m.ClipID, ledger.StatusFailed)
			_ = s.Ledger.LogEvent(ctx, m.ClipID, stageName, "failed", err.Error())
			stats.Failed++
			continue
		}
		stats.Downloaded++
	}
	return stats, nil
}

func (s *Service) downloadOne(ctx context.Context, clipID int64, videoURL string) error {
	outputPath := s.AudioPath(clipID)

	if duration, ok := s.Extractor.ProbeAudio(ctx, outputPath); ok && duration > 0 {
		s.Log.Info("audio already downloaded, skipping re-fetch", "clip_id", clipID, "duration_seconds", duration)
		return s.finish(ctx, clipID)
	}

	if err := s.Ledger.LogEvent(ctx, clipID, stageName, "started", ""); err != nil {
		return err
	}

	if err := s.Extractor.ExtractAudio(ctx, videoURL, outputPath); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}

	duration, ok := s.Extractor.ProbeAudio(ctx, outputPath)
	if !ok || duration <= 0 {
		return fmt.Errorf("extracted audio failed verification")
	}

	s.Log.Info("audio downloaded", "clip_id", clipID, "duration_seconds", duration)
	return s.finish(ctx, clipID)
}

func (s *Service) finish(ctx context.Context, clipID int64) error {
	if err := s.Ledger.UpdateMeetingStatus(ctx, clipID, ledger.StatusDownloaded); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.Ledger.LogEvent(ctx, clipID, stageName, "completed", "")
}
