package ledger

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertAgendaItems atomically replaces all agenda items for a meeting: the
// source clip page is re-scraped in full each time, so a delete-then-insert
// inside one transaction is the simplest operation that can't leave stale
// and fresh rows mixed together.
func (s *Store) UpsertAgendaItems(ctx context.Context, clipID int64, items []AgendaItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM agenda_items WHERE clip_id = $1`, clipID); err != nil {
		return fmt.Errorf("delete existing agenda items: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO agenda_items
				(clip_id, item_number, title, start_seconds, end_seconds, source_item_id, presenter)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			clipID, nullableString(item.ItemNumber), nullableString(item.Title),
			item.StartSeconds, item.EndSeconds, item.SourceItemID, nullableString(item.Presenter)); err != nil {
			return fmt.Errorf("insert agenda item: %w", err)
		}
	}

	return tx.Commit()
}

// GetAgendaItems returns a meeting's agenda items ordered by start time.
func (s *Store) GetAgendaItems(ctx context.Context, clipID int64) ([]AgendaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, clip_id, item_number, title, start_seconds, end_seconds, source_item_id, presenter
		FROM agenda_items WHERE clip_id = $1 ORDER BY start_seconds ASC NULLS LAST`, clipID)
	if err != nil {
		return nil, fmt.Errorf("get agenda items: %w", err)
	}
	defer rows.Close()

	var out []AgendaItem
	for rows.Next() {
		var a AgendaItem
		var itemNumber, title, presenter sql.NullString
		var startSeconds, endSeconds sql.NullInt64
		var sourceItemID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.ClipID, &itemNumber, &title, &startSeconds, &endSeconds, &sourceItemID, &presenter); err != nil {
			return nil, fmt.Errorf("scan agenda item: %w", err)
		}
		a.ItemNumber = itemNumber.String
		a.Title = title.String
		a.Presenter = presenter.String
		if startSeconds.Valid {
			v := int(startSeconds.Int64)
			a.StartSeconds = &v
		}
		if endSeconds.Valid {
			v := int(endSeconds.Int64)
			a.EndSeconds = &v
		}
		if sourceItemID.Valid {
			a.SourceItemID = &sourceItemID.Int64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
