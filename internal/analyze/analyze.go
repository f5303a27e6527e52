package analyze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/diarize"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/internal/segment"
	"github.com/chico-council/meeting-pipeline/internal/textutil"
)

const stageName = "analyze"

const (
	minSegmentChars      = 50
	meetingSummaryLimit  = 8000
	chunkSize            = 4000
	maxSummaryChunks     = 3
	maxChunkBullets      = 10
)

// Service runs structured LLM extraction over validated meetings.
type Service struct {
	Chat   capability.Chat
	Ledger *ledger.Store

	TranscriptDir string

	Model          string
	AnalysisTypes  []string
	PriorityKeywords []string
	WatchedMembers []string

	Log *slog.Logger
}

// Stats summarizes an analyze batch's outcome.
type Stats struct {
	Analyzed int
	Failed   int
}

// RunBatch analyzes up to batchSize validated meetings.
func (s *Service) RunBatch(ctx context.Context, batchSize int) (Stats, error) {
	stats := Stats{}
	analysisTypes := s.AnalysisTypes
	if len(analysisTypes) == 0 {
		analysisTypes = DefaultAnalysisTypes()
	}

	for i := 0; i < batchSize; i++ {
		m, err := s.Ledger.NextPending(ctx, stageName)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				break
			}
			return stats, fmt.Errorf("claim next pending analysis: %w", err)
		}

		if err := s.analyzeOne(ctx, m.ClipID, analysisTypes); err != nil {
			s.Log.Error("analysis failed", "clip_id", m.ClipID, "error", err)
			_ = s.Ledger.UpdateMeetingStatus(ctx, m.ClipID, ledger.StatusFailed)
			_ = s.Ledger.LogEvent(ctx, m.ClipID, stageName, "failed", err.Error())
			stats.Failed++
			continue
		}
		stats.Analyzed++
	}
	return stats, nil
}

func (s *Service) analyzeOne(ctx context.Context, clipID int64, analysisTypes []string) error {
	if err := s.Ledger.LogEvent(ctx, clipID, stageName, "started", ""); err != nil {
		return err
	}

	transcript, err := s.Ledger.GetTranscript(ctx, clipID)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	diarization, err := diarize.LoadDiarizationResult(s.TranscriptDir, clipID)
	if err != nil {
		return fmt.Errorf("load diarization result: %w", err)
	}

	agendaItems, err := s.Ledger.GetAgendaItems(ctx, clipID)
	if err != nil {
		return fmt.Errorf("load agenda items: %w", err)
	}

	segments := segment.BySegments(transcript.FullText, transcript.WordTimestamps, agendaItems)

	analyzedCount := 0
	for _, seg := range segments {
		if len(seg.Text) < minSegmentChars {
			continue
		}
		enhanced := enhanceWithSpeakers(seg.Text, diarization)
		agendaTitle := agendaTitleFor(agendaItems, seg.AgendaItemID)

		for _, analysisType := range analysisTypes {
			prompt, ok := buildPrompt(analysisType, enhanced, agendaTitle, s.PriorityKeywords, s.WatchedMembers)
			if !ok {
				continue
			}
			result := runAnalysis(ctx, s.Chat, s.Model, prompt)
			if result == nil {
				continue
			}

			record := ledger.AnalysisRecord{
				ClipID:       clipID,
				AgendaItemID: seg.AgendaItemID,
				AnalysisType: analysisType,
				Result:       result,
				ModelUsed:    s.Model,
			}
			if err := s.Ledger.InsertAnalysis(ctx, record); err != nil {
				return fmt.Errorf("save analysis (%s): %w", analysisType, err)
			}
			analyzedCount++
		}
	}

	if err := s.analyzeMeetingSummary(ctx, clipID, transcript.FullText); err != nil {
		return fmt.Errorf("meeting-level summary: %w", err)
	}

	if err := s.Ledger.UpdateMeetingStatus(ctx, clipID, ledger.StatusAnalyzed); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return s.Ledger.LogEvent(ctx, clipID, stageName, "completed", fmt.Sprintf("analyses=%d", analyzedCount))
}

// analyzeMeetingSummary produces a meeting-level summary, chunking very
// long transcripts and combining each chunk's bullet points rather than
// sending the whole text in one prompt.
func (s *Service) analyzeMeetingSummary(ctx context.Context, clipID int64, fullText string) error {
	var bullets []string

	if len(fullText) > meetingSummaryLimit {
		chunks := textutil.ChunkText(fullText, chunkSize)
		limit := len(chunks)
		if limit > maxSummaryChunks {
			limit = maxSummaryChunks
		}
		for _, chunk := range chunks[:limit] {
			prompt, _ := buildPrompt(Summary, chunk, "", nil, nil)
			result := runAnalysis(ctx, s.Chat, s.Model, prompt)
			bullets = append(bullets, extractSummaryBullets(result)...)
		}
		if len(bullets) > maxChunkBullets {
			bullets = bullets[:maxChunkBullets]
		}
	} else {
		prompt, _ := buildPrompt(Summary, fullText, "", nil, nil)
		result := runAnalysis(ctx, s.Chat, s.Model, prompt)
		bullets = extractSummaryBullets(result)
	}

	if len(bullets) == 0 {
		return nil
	}

	record := ledger.AnalysisRecord{
		ClipID:       clipID,
		AnalysisType: "meeting_summary",
		Result:       map[string]any{"summary": bullets},
		ModelUsed:    s.Model,
	}
	return s.Ledger.InsertAnalysis(ctx, record)
}

func extractSummaryBullets(result map[string]any) []string {
	if result == nil {
		return nil
	}
	raw, ok := result["summary"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func agendaTitleFor(items []ledger.AgendaItem, agendaItemID *int64) string {
	if agendaItemID == nil {
		return ""
	}
	for _, item := range items {
		if item.ID == *agendaItemID {
			return item.Title
		}
	}
	return ""
}
