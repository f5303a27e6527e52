package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// OllamaChat implements Chat against an Ollama-compatible /api/generate
// endpoint, the plain-HTTP shape the reference pipeline's `ollama.generate`
// call used.
type OllamaChat struct {
	BaseURL string
	Client  *http.Client
	Log     *slog.Logger
}

// NewOllamaChat builds a Chat client against baseURL (e.g. http://localhost:11434).
func NewOllamaChat(baseURL string, timeout time.Duration, log *slog.Logger) *OllamaChat {
	return &OllamaChat{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (c *OllamaChat) Generate(ctx context.Context, model, prompt string, opts ChatOptions) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		// The reference pipeline treated any call failure as an empty
		// response rather than a fatal error; a chat failure degrades
		// validation/analysis quality but never aborts a stage.
		c.Log.Warn("chat generate call failed", "model", model, "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.Log.Warn("chat generate returned non-200", "model", model, "status", resp.StatusCode, "body", string(body))
		return "", nil
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.Log.Warn("chat generate response decode failed", "model", model, "error", err)
		return "", nil
	}

	return parsed.Response, nil
}
