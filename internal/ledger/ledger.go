// Package ledger is the pipeline's durable store: meeting status, agenda
// items, transcripts, validation results, analysis records, and the
// append-only processing event log. The schema's segments and
// diarization_results tables have no Store operations. Every stage worker
// writes its output (to the ledger or to its transcript and diarization
// files) before flipping a meeting's status, so a crash mid-stage always
// leaves the ledger in a state the next run can resume from cleanly.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// Store is the ledger's entry point. All operations take an explicit
// context and open their own short-lived transaction; the Store holds no
// state beyond the pooled connection handle.
type Store struct {
	db *sql.DB
}

// New wraps an open connection pool as a Store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Stage names used by NextPending, mirroring the reference pipeline's
// stage-to-input-status mapping. Diarize is intentionally absent: it is
// gated by filesystem artifact presence (a diarization JSON file next to
// the transcript), not by a ledger status, matching the upstream pipeline
// where diarization never calls update_meeting_status.
const (
	StageDownload   = "download"
	StageTranscribe = "transcribe"
	StageValidate   = "validate"
	StageAnalyze    = "analyze"
)

var stageInputStatus = map[string]Status{
	StageDownload:   StatusDiscovered,
	StageTranscribe: StatusDownloaded,
	StageValidate:   StatusTranscribed,
	StageAnalyze:    StatusValidated,
}

var stageWorkingStatus = map[string]Status{
	StageDownload:   StatusDownloading,
	StageTranscribe: StatusTranscribing,
	StageValidate:   StatusValidating,
	StageAnalyze:    StatusAnalyzing,
}

// NextPending claims the oldest meeting (by meeting date) awaiting stage,
// atomically flipping it to the stage's in-progress status so a second
// concurrent caller cannot claim the same meeting. Returns ErrNotFound
// when no meeting is waiting.
func (s *Store) NextPending(ctx context.Context, stage string) (*Meeting, error) {
	inputStatus, ok := stageInputStatus[stage]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, stage)
	}
	workingStatus := stageWorkingStatus[stage]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT clip_id, title, meeting_date, meeting_type, video_url,
		       duration_seconds, discovered_at, status
		FROM meetings
		WHERE status = $1
		ORDER BY meeting_date ASC NULLS LAST, clip_id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, string(inputStatus))

	m, err := scanMeeting(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE meetings SET status = $1 WHERE clip_id = $2`,
		string(workingStatus), m.ClipID); err != nil {
		return nil, fmt.Errorf("claim meeting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	m.Status = workingStatus
	return m, nil
}
