package ledger

import (
	"context"
	"encoding/json"
	"fmt"
)

// InsertAnalysis inserts one LLM-extracted analysis result. Analysis is
// append-only: re-running analyze for a meeting adds new rows rather than
// replacing old ones, so every model pass stays in the audit trail.
func (s *Store) InsertAnalysis(ctx context.Context, a AnalysisRecord) error {
	result, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis (clip_id, agenda_item_id, analysis_type, result, model_used, prompt_tokens, completion_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ClipID, a.AgendaItemID, a.AnalysisType, result, nullableString(a.ModelUsed), a.PromptTokens, a.CompletionTokens)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// GetAnalyses returns all analysis records for a meeting, optionally
// filtered to a single analysis type.
func (s *Store) GetAnalyses(ctx context.Context, clipID int64, analysisType string) ([]AnalysisRecord, error) {
	query := `
		SELECT id, clip_id, agenda_item_id, analysis_type, result, analyzed_at, model_used, prompt_tokens, completion_tokens
		FROM analysis WHERE clip_id = $1`
	args := []any{clipID}
	if analysisType != "" {
		query += ` AND analysis_type = $2`
		args = append(args, analysisType)
	}
	query += ` ORDER BY analyzed_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get analyses: %w", err)
	}
	defer rows.Close()

	var out []AnalysisRecord
	for rows.Next() {
		var a AnalysisRecord
		var result []byte
		var modelUsed *string
		if err := rows.Scan(&a.ID, &a.ClipID, &a.AgendaItemID, &a.AnalysisType, &result,
			&a.AnalyzedAt, &modelUsed, &a.PromptTokens, &a.CompletionTokens); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if modelUsed != nil {
			a.ModelUsed = *modelUsed
		}
		if len(result) > 0 {
			if err := json.Unmarshal(result, &a.Result); err != nil {
				return nil, fmt.Errorf("unmarshal analysis result: %w", err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
