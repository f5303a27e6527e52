// Package validate runs dual-model WER comparison and two-tier LLM
// coherence review over a transcribed meeting, producing the ledger's
// validation record.
package validate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

const stageName = "validate"

// Service validates transcribed meetings with WER comparison and two-tier
// LLM coherence review.
type Service struct {
	Chat          capability.Chat
	Ledger        *ledger.Store
	TranscriptDir string

	PrimaryModel   string
	SecondaryModel string
	FastModel      string
	DeepModel      string

	CouncilMembers []string
	MunicipalTerms []string

	WERThreshold       float64
	CoherenceThreshold int
	Tier1SegmentLimit  int
	Tier2SegmentLimit  int

	Log *slog.Logger
}

// Stats summarizes a validate batch's outcome.
type Stats struct {
	Validated int
	Failed    int
}

// RunBatch validates up to batchSize transcribed meetings.
func (s *Service) RunBatch(ctx context.Context, batchSize int) (Stats, error) {
	stats := Stats{}
	for i := 0; i < batchSize; i++ {
		m, err := s.Ledger.NextPending(ctx, stageName)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				break
			}
			return stats, fmt.Errorf("claim next pending validation: %w", err)
		}

		if err := s.validateOne(ctx, m.ClipID); err != nil {
			s.Log.Error("validation failed", "clip_id", m.ClipID, "error", err)
			_ = s.Ledger.UpdateMeetingStatus(ctx, m.ClipID, ledger.StatusFailed)
			_ = s.Ledger.LogEvent(ctx, m.ClipID, stageName, "failed", err.Error())
			stats.Failed++
			continue
		}
		stats.Validated++
	}
	return stats, nil
}

type flaggedSegment struct {
	index       int
	text        string
	start       float64
	agendaTitle string
	divergent   *ledger.DivergentSegment
}

func (s *Service) validateOne(ctx context.Context, clipID int64) error {
	if err := s.Ledger.LogEvent(ctx, clipID, stageName, "started", ""); err != nil {
		return err
	}

	primary, err := loadTranscriptFile(s.TranscriptDir, clipID, s.PrimaryModel)
	if err != nil {
		return fmt.Errorf("load primary transcript: %w", err)
	}
	if primary == nil {
		return fmt.Errorf("no primary transcript found for clip %d", clipID)
	}
	secondary, err := loadTranscriptFile(s.TranscriptDir, clipID, s.SecondaryModel)
	if err != nil {
		return fmt.Errorf("load secondary transcript: %w", err)
	}

	overallWER, divergent := CompareTranscripts(primary, secondary, s.WERThreshold)

	agendaItems, err := s.Ledger.GetAgendaItems(ctx, clipID)
	if err != nil {
		return fmt.Errorf("load agenda items: %w", err)
	}

	tier1Scores := map[string]any{}
	var needsDeep []flaggedSegment

	limit := len(primary.Segments)
	if limit > s.Tier1SegmentLimit {
		limit = s.Tier1SegmentLimit
	}
	for i := 0; i < limit; i++ {
		seg := primary.Segments[i]
		agendaTitle := agendaTitleFor(agendaItems, seg.Start)

		result := runTier1(ctx, s.Chat, s.FastModel, seg.Text, agendaTitle, s.CouncilMembers, s.MunicipalTerms)
		tier1Scores[fmt.Sprintf("%d", i)] = result

		if result.Score < s.CoherenceThreshold || result.NeedsDeepReview {
			needsDeep = append(needsDeep, flaggedSegment{index: i, text: seg.Text, start: seg.Start, agendaTitle: agendaTitle})
		}
	}

	for _, div := range divergent {
		if containsIndex(needsDeep, div.SegmentIndex) {
			continue
		}
		divCopy := div
		text := ""
		start := div.Start
		if div.SegmentIndex < len(primary.Segments) {
			text = primary.Segments[div.SegmentIndex].Text
		}
		needsDeep = append(needsDeep, flaggedSegment{index: div.SegmentIndex, text: text, start: start, divergent: &divCopy})
	}

	tier2Scores := map[string]any{}
	if len(needsDeep) > 0 {
		tier2Limit := len(needsDeep)
		if tier2Limit > s.Tier2SegmentLimit {
			tier2Limit = s.Tier2SegmentLimit
		}
		for _, item := range needsDeep[:tier2Limit] {
			primaryText := item.text
			secondaryText := ""
			if item.divergent != nil {
				primaryText = item.divergent.PrimaryText
				secondaryText = item.divergent.SecondaryText
			} else if secondary != nil {
				secondaryText = secondaryTextNear(secondary.Segments, item.start)
			}

			result := runTier2(ctx, s.Chat, s.DeepModel, item.text, item.agendaTitle, primaryText, secondaryText, s.CouncilMembers, s.MunicipalTerms)
			tier2Scores[fmt.Sprintf("%d", item.index)] = result
		}
	}

	issues := dedupeIssues(tier1Scores, tier2Scores)
	humanReviewNeeded := false
	for _, v := range tier2Scores {
		if r, ok := v.(Tier2Result); ok && r.NeedsHumanReview {
			humanReviewNeeded = true
		}
	}

	secondaryText := ""
	if secondary != nil {
		secondaryText = secondary.Text
	}

	record := ledger.ValidationRecord{
		ClipID:            clipID,
		PrimaryText:       primary.Text,
		SecondaryText:     secondaryText,
		MergedText:        primary.Text,
		WERScore:          overallWER,
		DivergentSegments: divergent,
		Tier1Scores:       tier1Scores,
		Tier2Scores:       tier2Scores,
		ValidationIssues:  issues,
		HumanReviewNeeded: humanReviewNeeded,
	}
	if err := s.Ledger.UpsertValidation(ctx, record); err != nil {
		return fmt.Errorf("save validation: %w", err)
	}

	if err := s.Ledger.UpdateMeetingStatus(ctx, clipID, ledger.StatusValidated); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.Ledger.LogEvent(ctx, clipID, stageName, "completed", fmt.Sprintf("wer=%.3f issues=%d", overallWER, len(issues)))
}

func agendaTitleFor(items []ledger.AgendaItem, segStart float64) string {
	title := ""
	for _, item := range items {
		start := 0
		if item.StartSeconds != nil {
			start = *item.StartSeconds
		}
		if float64(start) <= segStart {
			if item.EndSeconds == nil || float64(*item.EndSeconds) >= segStart {
				title = item.Title
			}
		}
	}
	return title
}

func containsIndex(segs []flaggedSegment, idx int) bool {
	for _, s := range segs {
		if s.index == idx {
			return true
		}
	}
	return false
}

func dedupeIssues(tier1, tier2 map[string]any) []string {
	seen := map[string]bool{}
	var out []string
	add := func(issues []string) {
		for _, i := range issues {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	for _, v := range tier1 {
		if r, ok := v.(Tier1Result); ok {
			add(r.Issues)
		}
	}
	for _, v := range tier2 {
		if r, ok := v.(Tier2Result); ok {
			add(r.Issues)
		}
	}
	return out
}
