package ledger

import "time"

// Status is a meeting's position in the pipeline's status machine.
type Status string

const (
	StatusDiscovered   Status = "discovered"
	StatusDownloading  Status = "downloading"
	StatusDownloaded   Status = "downloaded"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusValidating   Status = "validating"
	StatusValidated    Status = "validated"
	StatusAnalyzing    Status = "analyzing"
	StatusAnalyzed     Status = "analyzed"
	StatusFailed       Status = "failed"
	StatusSkipped      Status = "skipped"
)

// Meeting is a single discovered council-meeting recording and its current
// pipeline status.
type Meeting struct {
	ClipID          int64
	Title           string
	MeetingDate     *time.Time
	MeetingType     string
	VideoURL        string
	DurationSeconds *int
	DiscoveredAt    time.Time
	Status          Status
}

// AgendaItem is a single cue point scraped from the meeting's clip page.
type AgendaItem struct {
	ID            int64
	ClipID        int64
	ItemNumber    string
	Title         string
	StartSeconds  *int
	EndSeconds    *int
	SourceItemID  *int64
	Presenter     string
}

// WordTimestamp is a single word's timing within the transcript, when the
// transcription engine returns word-level timing.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the primary-engine transcription result for a meeting.
type Transcript struct {
	ClipID                 int64
	FullText               string
	WordTimestamps         []WordTimestamp
	TranscribedAt          time.Time
	ModelUsed              string
	ProcessingTimeSeconds  float64
}

// DivergentSegment flags a time window where the primary and secondary
// engines disagree beyond the configured WER threshold.
type DivergentSegment struct {
	SegmentIndex  int     `json:"segment_index"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	WER           float64 `json:"wer"`
	PrimaryText   string  `json:"primary_text"`
	SecondaryText string  `json:"secondary_text"`
}

// ValidationRecord is the dual-model WER comparison plus the two-tier LLM
// coherence review for a meeting's transcript.
type ValidationRecord struct {
	ClipID             int64
	PrimaryText        string
	SecondaryText      string
	MergedText         string
	WERScore           float64
	DivergentSegments  []DivergentSegment
	Tier1Scores        map[string]any
	Tier2Scores        map[string]any
	ValidationIssues   []string
	ValidatedAt        time.Time
	HumanReviewNeeded  bool
}

// AnalysisRecord is one LLM-extracted structured analysis for a meeting
// (optionally scoped to a single agenda item).
type AnalysisRecord struct {
	ID                int64
	ClipID            int64
	AgendaItemID      *int64
	AnalysisType      string
	Result            map[string]any
	AnalyzedAt        time.Time
	ModelUsed         string
	PromptTokens      *int
	CompletionTokens  *int
}

// ProcessingEvent is an append-only log entry recording a stage transition
// or failure, used for resume diagnostics and status reporting.
type ProcessingEvent struct {
	ID        string
	ClipID    int64
	Stage     string
	Status    string
	Message   string
	CreatedAt time.Time
}

// ProcessingStats summarizes the ledger for the CLI `status` command.
type ProcessingStats struct {
	TotalMeetings  int
	ByStatus       map[Status]int
	RecentFailures []ProcessingEvent
}
