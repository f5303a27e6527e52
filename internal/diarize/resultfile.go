package diarize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const maxPersistedSegmentChars = 500

// PersistedSegment is one fused segment as written to a meeting's
// diarization file.
type PersistedSegment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	SpeakerID    string  `json:"speaker_id"`
	SpeakerName  string  `json:"speaker_name,omitempty"`
	Method       string  `json:"method,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	AgendaItemID *int64  `json:"agenda_item_id,omitempty"`
}

// PersistedResult is a meeting's complete diarization output, written to
// {transcriptDir}/{clip_id}_diarization.json. The ledger does not
// duplicate this; the analyzer reads the file directly.
type PersistedResult struct {
	ClipID             int64              `json:"clip_id"`
	TotalSpeakers      int                `json:"total_speakers"`
	IdentifiedSpeakers int                `json:"identified_speakers"`
	SpeakerMapping     map[string]string  `json:"speaker_mapping"`
	Segments           []PersistedSegment `json:"segments"`
}

func diarizationFilePath(dir string, clipID int64) string {
	return filepath.Join(dir, fmt.Sprintf("%d_diarization.json", clipID))
}

// saveDiarizationResult writes a meeting's diarization output to disk,
// truncating each segment's text so the file doesn't grow unbounded on
// long meetings.
func saveDiarizationResult(dir string, clipID int64, result PersistedResult) error {
	for i, seg := range result.Segments {
		if len(seg.Text) > maxPersistedSegmentChars {
			result.Segments[i].Text = seg.Text[:maxPersistedSegmentChars]
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diarization result: %w", err)
	}
	if err := os.WriteFile(diarizationFilePath(dir, clipID), data, 0o644); err != nil {
		return fmt.Errorf("write diarization file: %w", err)
	}
	return nil
}

// LoadDiarizationResult reads back a meeting's diarization file. A missing
// file is not an error: callers treat a nil result as "not diarized yet".
func LoadDiarizationResult(dir string, clipID int64) (*PersistedResult, error) {
	data, err := os.ReadFile(diarizationFilePath(dir, clipID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read diarization file: %w", err)
	}

	var result PersistedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse diarization file: %w", err)
	}
	return &result, nil
}

// HasDiarizationFile reports whether a meeting's diarization file already
// exists, the gate the diarize batch and continuous loop use in place of a
// ledger status check: diarization is never reflected in meetings.status.
func HasDiarizationFile(dir string, clipID int64) bool {
	_, err := os.Stat(diarizationFilePath(dir, clipID))
	return err == nil
}
