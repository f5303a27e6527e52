package capability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClipFetcher fetches clip pages over plain HTTP, the Go analogue of
// the reference pipeline's httpx.AsyncClient GET.
type HTTPClipFetcher struct {
	URLTemplate string // e.g. "https://stream.example.gov/player/clip/%d"
	Client      *http.Client
	Log         *slog.Logger
}

// NewHTTPClipFetcher builds a ClipFetcher bound to urlTemplate, a
// fmt.Sprintf template taking a single clip ID argument.
func NewHTTPClipFetcher(urlTemplate string, timeout time.Duration, log *slog.Logger) *HTTPClipFetcher {
	return &HTTPClipFetcher{
		URLTemplate: urlTemplate,
		Client:      &http.Client{Timeout: timeout},
		Log:         log,
	}
}

func (f *HTTPClipFetcher) FetchClipPage(ctx context.Context, clipID int64) (*ClipPage, error) {
	url := fmt.Sprintf(f.URLTemplate, clipID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		f.Log.Warn("clip page fetch failed", "clip_id", clipID, "error", err)
		return nil, fmt.Errorf("fetch clip page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		f.Log.Warn("clip page fetch returned non-200", "clip_id", clipID, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status %d fetching clip %d", resp.StatusCode, clipID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read clip page body: %w", err)
	}

	return &ClipPage{HTML: string(body), FetchedAt: time.Now()}, nil
}
