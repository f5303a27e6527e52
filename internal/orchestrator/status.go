package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/chico-council/meeting-pipeline/internal/ledger"
)

// Status is the pipeline's current backlog by stage plus a rough ETA for
// draining it, computed from the domain config's fixed per-item minute
// estimates.
type Status struct {
	Stats          *ledger.ProcessingStats
	ETARemaining   time.Duration
}

// Status reports the current ledger backlog and a rough remaining-time
// estimate, summing each pending stage's backlog against its configured
// per-item estimate. The estimate is necessarily rough: it assumes serial
// processing at the configured per-item rate and ignores concurrency.
func (o *Orchestrator) Status(ctx context.Context) (*Status, error) {
	stats, err := o.Ledger.GetProcessingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get processing stats: %w", err)
	}

	var etaMinutes float64
	etaMinutes += float64(stats.ByStatus[ledger.StatusDiscovered]) * o.Domain.Estimates.DownloadMinutes
	etaMinutes += float64(stats.ByStatus[ledger.StatusDownloaded]) * o.Domain.Estimates.TranscribeMinutes
	etaMinutes += float64(stats.ByStatus[ledger.StatusTranscribed]) * o.Domain.Estimates.ValidateMinutes
	etaMinutes += float64(stats.ByStatus[ledger.StatusValidated]) * o.Domain.Estimates.AnalyzeMinutes

	return &Status{
		Stats:        stats,
		ETARemaining: time.Duration(etaMinutes * float64(time.Minute)),
	}, nil
}
