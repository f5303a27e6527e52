package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// scanRow is the subset of *sql.Row / *sql.Rows the scan helpers need.
type scanRow interface {
	Scan(dest ...any) error
}

func scanMeeting(row scanRow) (*Meeting, error) {
	var m Meeting
	var meetingDate sql.NullTime
	var meetingType, videoURL sql.NullString
	var durationSeconds sql.NullInt64
	var status string

	if err := row.Scan(
		&m.ClipID, &m.Title, &meetingDate, &meetingType, &videoURL,
		&durationSeconds, &m.DiscoveredAt, &status,
	); err != nil {
		return nil, err
	}

	if meetingDate.Valid {
		m.MeetingDate = &meetingDate.Time
	}
	m.MeetingType = meetingType.String
	m.VideoURL = videoURL.String
	if durationSeconds.Valid {
		d := int(durationSeconds.Int64)
		m.DurationSeconds = &d
	}
	m.Status = Status(status)
	return &m, nil
}

// InsertMeeting inserts a newly discovered meeting. Returns ErrAlreadyExists
// if clipID is already known, without modifying the existing row.
func (s *Store) InsertMeeting(ctx context.Context, m Meeting) error {
	if m.Title == "" {
		return NewValidationError("title", "required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings (clip_id, title, meeting_date, meeting_type, video_url, duration_seconds, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ClipID, m.Title, m.MeetingDate, nullableString(m.MeetingType), nullableString(m.VideoURL),
		m.DurationSeconds, string(defaultStatus(m.Status)))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}

func defaultStatus(s Status) Status {
	if s == "" {
		return StatusDiscovered
	}
	return s
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), without importing the pgx error type into the
// ledger's public surface.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key")
}

// UpdateMeetingStatus unconditionally sets a meeting's status.
func (s *Store) UpdateMeetingStatus(ctx context.Context, clipID int64, status Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE meetings SET status = $1 WHERE clip_id = $2`,
		string(status), clipID)
	if err != nil {
		return fmt.Errorf("update meeting status: %w", err)
	}
	return checkRowsAffected(res)
}

// CompareAndSwapStatus updates a meeting's status only if its current
// status matches from, returning ErrInvariantViolation if another worker
// has already moved it elsewhere. No stage worker calls it: they all use
// UpdateMeetingStatus when transitioning out of a claimed "-ing" status.
func (s *Store) CompareAndSwapStatus(ctx context.Context, clipID int64, from, to Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE meetings SET status = $1 WHERE clip_id = $2 AND status = $3`,
		string(to), clipID, string(from))
	if err != nil {
		return fmt.Errorf("compare-and-swap status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrInvariantViolation
	}
	return nil
}

func checkRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMeetingVideoURL updates the video URL discovered for a meeting.
func (s *Store) UpdateMeetingVideoURL(ctx context.Context, clipID int64, videoURL string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE meetings SET video_url = $1 WHERE clip_id = $2`,
		videoURL, clipID)
	if err != nil {
		return fmt.Errorf("update meeting video url: %w", err)
	}
	return checkRowsAffected(res)
}

// GetMeeting returns a single meeting by clip ID.
func (s *Store) GetMeeting(ctx context.Context, clipID int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT clip_id, title, meeting_date, meeting_type, video_url,
		       duration_seconds, discovered_at, status
		FROM meetings WHERE clip_id = $1`, clipID)
	m, err := scanMeeting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

// GetMeetingsByStatus returns all meetings in a given status, newest first.
func (s *Store) GetMeetingsByStatus(ctx context.Context, status Status) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT clip_id, title, meeting_date, meeting_type, video_url,
		       duration_seconds, discovered_at, status
		FROM meetings WHERE status = $1 ORDER BY meeting_date DESC NULLS LAST`, string(status))
	if err != nil {
		return nil, fmt.Errorf("get meetings by status: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

// GetAllMeetings returns every meeting, newest first.
func (s *Store) GetAllMeetings(ctx context.Context) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT clip_id, title, meeting_date, meeting_type, video_url,
		       duration_seconds, discovered_at, status
		FROM meetings ORDER BY meeting_date DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("get all meetings: %w", err)
	}
	defer rows.Close()
	return scanMeetings(rows)
}

func scanMeetings(rows *sql.Rows) ([]Meeting, error) {
	var out []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meeting row: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// GetProcessingStats summarizes meeting counts by status and the ten most
// recent failures, for the CLI `status` command.
func (s *Store) GetProcessingStats(ctx context.Context) (*ProcessingStats, error) {
	stats := &ProcessingStats{ByStatus: map[Status]int{}}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM meetings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[Status(status)] = count
		stats.TotalMeetings += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	failureRows, err := s.db.QueryContext(ctx, `
		SELECT event_id, clip_id, stage, message, created_at
		FROM processing_log
		WHERE status = 'failed'
		ORDER BY created_at DESC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("recent failures: %w", err)
	}
	defer failureRows.Close()
	for failureRows.Next() {
		var e ProcessingEvent
		var createdAt time.Time
		if err := failureRows.Scan(&e.ID, &e.ClipID, &e.Stage, &e.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		e.Status = "failed"
		e.CreatedAt = createdAt
		stats.RecentFailures = append(stats.RecentFailures, e)
	}
	return stats, failureRows.Err()
}
