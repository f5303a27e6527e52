package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// UpsertValidation inserts or replaces the validation record for a meeting.
func (s *Store) UpsertValidation(ctx context.Context, v ValidationRecord) error {
	divergent, err := marshalOrNil(v.DivergentSegments)
	if err != nil {
		return fmt.Errorf("marshal divergent segments: %w", err)
	}
	tier1, err := marshalOrNil(v.Tier1Scores)
	if err != nil {
		return fmt.Errorf("marshal tier1 scores: %w", err)
	}
	tier2, err := marshalOrNil(v.Tier2Scores)
	if err != nil {
		return fmt.Errorf("marshal tier2 scores: %w", err)
	}
	issues, err := marshalOrNil(v.ValidationIssues)
	if err != nil {
		return fmt.Errorf("marshal validation issues: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcription_validation
			(clip_id, primary_text, secondary_text, merged_text, wer_score,
			 divergent_segments, tier1_scores, tier2_scores, validation_issues, human_review_needed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (clip_id) DO UPDATE SET
			primary_text = EXCLUDED.primary_text,
			secondary_text = EXCLUDED.secondary_text,
			merged_text = EXCLUDED.merged_text,
			wer_score = EXCLUDED.wer_score,
			divergent_segments = EXCLUDED.divergent_segments,
			tier1_scores = EXCLUDED.tier1_scores,
			tier2_scores = EXCLUDED.tier2_scores,
			validation_issues = EXCLUDED.validation_issues,
			human_review_needed = EXCLUDED.human_review_needed,
			validated_at = now()`,
		v.ClipID, v.PrimaryText, v.SecondaryText, v.MergedText, v.WERScore,
		nullableJSON(divergent), nullableJSON(tier1), nullableJSON(tier2), nullableJSON(issues), v.HumanReviewNeeded)
	if err != nil {
		return fmt.Errorf("upsert validation: %w", err)
	}
	return nil
}

func marshalOrNil(v any) ([]byte, error) {
	switch x := v.(type) {
	case []DivergentSegment:
		if len(x) == 0 {
			return nil, nil
		}
	case map[string]any:
		if len(x) == 0 {
			return nil, nil
		}
	case []string:
		if len(x) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

// GetValidation returns the validation record for a meeting.
func (s *Store) GetValidation(ctx context.Context, clipID int64) (*ValidationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT clip_id, primary_text, secondary_text, merged_text, wer_score,
		       divergent_segments, tier1_scores, tier2_scores, validation_issues,
		       validated_at, human_review_needed
		FROM transcription_validation WHERE clip_id = $1`, clipID)

	var v ValidationRecord
	var primaryText, secondaryText, mergedText sql.NullString
	var werScore sql.NullFloat64
	var divergent, tier1, tier2, issues []byte

	if err := row.Scan(&v.ClipID, &primaryText, &secondaryText, &mergedText, &werScore,
		&divergent, &tier1, &tier2, &issues, &v.ValidatedAt, &v.HumanReviewNeeded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get validation: %w", err)
	}
	v.PrimaryText = primaryText.String
	v.SecondaryText = secondaryText.String
	v.MergedText = mergedText.String
	v.WERScore = werScore.Float64

	if len(divergent) > 0 {
		if err := json.Unmarshal(divergent, &v.DivergentSegments); err != nil {
			return nil, fmt.Errorf("unmarshal divergent segments: %w", err)
		}
	}
	if len(tier1) > 0 {
		if err := json.Unmarshal(tier1, &v.Tier1Scores); err != nil {
			return nil, fmt.Errorf("unmarshal tier1 scores: %w", err)
		}
	}
	if len(tier2) > 0 {
		if err := json.Unmarshal(tier2, &v.Tier2Scores); err != nil {
			return nil, fmt.Errorf("unmarshal tier2 scores: %w", err)
		}
	}
	if len(issues) > 0 {
		if err := json.Unmarshal(issues, &v.ValidationIssues); err != nil {
			return nil, fmt.Errorf("unmarshal validation issues: %w", err)
		}
	}
	return &v, nil
}
