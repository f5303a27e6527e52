package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// UpsertTranscript inserts or replaces the transcript for a meeting.
func (s *Store) UpsertTranscript(ctx context.Context, t Transcript) error {
	var wordTimestamps []byte
	if len(t.WordTimestamps) > 0 {
		var err error
		wordTimestamps, err = json.Marshal(t.WordTimestamps)
		if err != nil {
			return fmt.Errorf("marshal word timestamps: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcripts (clip_id, full_text, word_timestamps, model_used, processing_time_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (clip_id) DO UPDATE SET
			full_text = EXCLUDED.full_text,
			word_timestamps = EXCLUDED.word_timestamps,
			model_used = EXCLUDED.model_used,
			processing_time_seconds = EXCLUDED.processing_time_seconds,
			transcribed_at = now()`,
		t.ClipID, t.FullText, nullableJSON(wordTimestamps), nullableString(t.ModelUsed), t.ProcessingTimeSeconds)
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// GetTranscript returns the transcript for a meeting.
func (s *Store) GetTranscript(ctx context.Context, clipID int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT clip_id, full_text, word_timestamps, transcribed_at, model_used, processing_time_seconds
		FROM transcripts WHERE clip_id = $1`, clipID)

	var t Transcript
	var fullText, modelUsed sql.NullString
	var wordTimestamps []byte
	var processingTime sql.NullFloat64

	if err := row.Scan(&t.ClipID, &fullText, &wordTimestamps, &t.TranscribedAt, &modelUsed, &processingTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	t.FullText = fullText.String
	t.ModelUsed = modelUsed.String
	t.ProcessingTimeSeconds = processingTime.Float64

	if len(wordTimestamps) > 0 {
		if err := json.Unmarshal(wordTimestamps, &t.WordTimestamps); err != nil {
			return nil, fmt.Errorf("unmarshal word timestamps: %w", err)
		}
	}
	return &t, nil
}
