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

// HTTPDiarizer calls a local diarization sidecar over HTTP. When no
// endpoint is configured it reports no turns rather than erroring — the
// same graceful degradation the reference pipeline used when pyannote
// wasn't installed.
type HTTPDiarizer struct {
	BaseURL string
	Token   string
	Client  *http.Client
	Log     *slog.Logger
}

// NewHTTPDiarizer builds a Diarizer against baseURL. An empty baseURL
// disables diarization entirely; Diarize then always returns no turns.
func NewHTTPDiarizer(baseURL, token string, timeout time.Duration, log *slog.Logger) *HTTPDiarizer {
	return &HTTPDiarizer{
		BaseURL: baseURL,
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type diarizeRequest struct {
	AudioPath string `json:"audio_path"`
}

type diarizeTurn struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id"`
}

type diarizeResponse struct {
	Turns []diarizeTurn `json:"turns"`
}

func (d *HTTPDiarizer) Diarize(ctx context.Context, audioPath string) ([]SpeakerTurn, error) {
	if d.BaseURL == "" {
		d.Log.Info("diarization backend not configured, returning no turns", "audio_path", audioPath)
		return nil, nil
	}

	reqBody, err := json.Marshal(diarizeRequest{AudioPath: audioPath})
	if err != nil {
		return nil, fmt.Errorf("marshal diarize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"/diarize", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build diarize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.Token)
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		d.Log.Warn("diarize call failed, continuing with no turns", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.Log.Warn("diarize call returned non-200, continuing with no turns", "status", resp.StatusCode)
		return nil, nil
	}

	var parsed diarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode diarize response: %w", err)
	}

	turns := make([]SpeakerTurn, len(parsed.Turns))
	for i, t := range parsed.Turns {
		turns[i] = SpeakerTurn{Start: t.Start, End: t.End, SpeakerID: t.SpeakerID}
	}
	return turns, nil
}
