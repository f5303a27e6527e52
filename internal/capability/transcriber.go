package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPTranscriber calls a local transcription server over HTTP, the Go
// analogue of the reference pipeline's in-process mlx_whisper.transcribe
// call: a single blocking request per (audio, model) pair returning full
// text, per-segment timing, and (when the engine supports it) per-word
// timing.
type HTTPTranscriber struct {
	BaseURL string
	Client  *http.Client
	Log     *slog.Logger
}

// NewHTTPTranscriber builds a Transcriber against baseURL.
func NewHTTPTranscriber(baseURL string, timeout time.Duration, log *slog.Logger) *HTTPTranscriber {
	return &HTTPTranscriber{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type transcribeRequest struct {
	AudioPath      string `json:"audio_path"`
	Model          string `json:"model"`
	Language       string `json:"language"`
	WordTimestamps bool   `json:"word_timestamps"`
}

type transcribeWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type transcribeSegment struct {
	Start float64           `json:"start"`
	End   float64           `json:"end"`
	Text  string            `json:"text"`
	Words []transcribeWord  `json:"words,omitempty"`
}

type transcribeResponse struct {
	Text                  string              `json:"text"`
	Segments              []transcribeSegment `json:"segments"`
	Language              string              `json:"language"`
	ProcessingTimeSeconds float64             `json:"processing_time_seconds"`
}

func (t *HTTPTranscriber) Transcribe(ctx context.Context, audioPath, model, language string) (*TranscriptionResult, error) {
	reqBody, err := json.Marshal(transcribeRequest{
		AudioPath:      audioPath,
		Model:          model,
		Language:       language,
		WordTimestamps: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal transcribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/transcribe", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build transcribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcribe call returned status %d", resp.StatusCode)
	}

	var parsed transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode transcribe response: %w", err)
	}

	segments := make([]TranscriptSegment, len(parsed.Segments))
	for i, s := range parsed.Segments {
		words := make([]WordTiming, len(s.Words))
		for j, w := range s.Words {
			words[j] = WordTiming{Word: w.Word, Start: w.Start, End: w.End}
		}
		segments[i] = TranscriptSegment{Start: s.Start, End: s.End, Text: s.Text, Words: words}
	}

	return &TranscriptionResult{
		Text:                  parsed.Text,
		Segments:              segments,
		Language:              parsed.Language,
		ProcessingTimeSeconds: parsed.ProcessingTimeSeconds,
		Model:                 model,
	}, nil
}
