package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// LogEvent appends a processing event: a stage started/completed/failed
// marker used for resume diagnostics and the CLI `status` command's recent
// failures list. The log is append-only and never mutated.
func (s *Store) LogEvent(ctx context.Context, clipID int64, stage, status, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processing_log (event_id, clip_id, stage, status, message)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), clipID, stage, status, message)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// RetryCount counts the "failed" events logged for a (clip_id, stage) pair,
// the durable record of how many times a meeting has failed a given stage
// across crashes and retries.
func (s *Store) RetryCount(ctx context.Context, clipID int64, stage string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM processing_log
		WHERE clip_id = $1 AND stage = $2 AND status = 'failed'`,
		clipID, stage).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count retries for clip %d stage %s: %w", clipID, stage, err)
	}
	return count, nil
}
