// Package orchestrator sequences the pipeline's stages — discovery,
// download, transcription, diarization, validation, analysis — and reports
// aggregate progress and a rough ETA for the remaining backlog.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chico-council/meeting-pipeline/internal/analyze"
	"github.com/chico-council/meeting-pipeline/internal/config"
	"github.com/chico-council/meeting-pipeline/internal/diarize"
	"github.com/chico-council/meeting-pipeline/internal/discovery"
	"github.com/chico-council/meeting-pipeline/internal/downloader"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/internal/transcribe"
	"github.com/chico-council/meeting-pipeline/internal/validate"
)

// Orchestrator runs the pipeline's stages in order against a shared ledger.
type Orchestrator struct {
	Ledger  *ledger.Store
	Domain  *config.DomainConfig
	Log     *slog.Logger

	Discovery  *discovery.Service
	Downloader *downloader.Service
	Transcribe *transcribe.Service
	Diarize    *diarize.Service
	Validate   *validate.Service
	Analyze    *analyze.Service
}

// Result collects every stage's stats from one pipeline run.
type Result struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Discovery   discovery.Stats
	Download    downloader.Stats
	Transcribe  transcribe.Stats
	Diarize     diarize.Stats
	Validate    validate.Stats
	Analyze     analyze.Stats
	Errors      []string
}

// Options controls which stages a run includes.
type Options struct {
	SkipDiscovery  bool
	SkipDownload   bool
	SkipTranscribe bool
	SkipDiarize    bool
	SkipValidate   bool
	SkipAnalyze    bool
}

// RunFull runs every stage in sequence: discovery, download, transcribe,
// diarize, validate, analyze. A failure in one stage is recorded in
// Result.Errors and does not prevent later stages from running — each
// stage only ever touches the meetings it itself claims, so a failure
// upstream just means fewer meetings are ready downstream.
func (o *Orchestrator) RunFull(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	if !opts.SkipDiscovery {
		stats, err := o.Discovery.Run(ctx, int64(o.Domain.ClipIDStart), int64(o.Domain.ClipIDEnd), o.Domain.MeetingTypes)
		result.Discovery = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("discovery: %v", err))
		}
	}

	if !opts.SkipDownload {
		stats, err := o.Downloader.RunBatch(ctx, o.Domain.Batches.Download)
		result.Download = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("download: %v", err))
		}
	}

	if !opts.SkipTranscribe {
		stats, err := o.Transcribe.RunBatch(ctx, o.Domain.Batches.Transcribe)
		result.Transcribe = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("transcribe: %v", err))
		}
	}

	if !opts.SkipDiarize {
		stats, err := o.runDiarizeBatch(ctx, o.Domain.Batches.Diarize, o.Domain.Retry.MaxRetries)
		result.Diarize = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("diarize: %v", err))
		}
	}

	if !opts.SkipValidate {
		stats, err := o.Validate.RunBatch(ctx, o.Domain.Batches.Validate)
		result.Validate = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("validate: %v", err))
		}
	}

	if !opts.SkipAnalyze {
		stats, err := o.Analyze.RunBatch(ctx, o.Domain.Batches.Analyze)
		result.Analyze = stats
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("analyze: %v", err))
		}
	}

	result.CompletedAt = time.Now()
	return result, nil
}

// RunIncremental runs every stage except discovery, for callers that
// already know the backlog and just want the pipeline to keep draining it.
func (o *Orchestrator) RunIncremental(ctx context.Context) (*Result, error) {
	return o.RunFull(ctx, Options{SkipDiscovery: true})
}

// runDiarizeBatch gathers diarization candidates: meetings that have
// reached at least "transcribed" and don't yet have a diarization result,
// excluding any meeting whose "diarize" failure count has already reached
// maxRetries. Diarization is status-transparent (see
// diarize.HasDiarizationFile) so its candidate set is built by scanning
// statuses, not claimed by NextPending like the other stages.
func (o *Orchestrator) runDiarizeBatch(ctx context.Context, batchSize, maxRetries int) (diarize.Stats, error) {
	var candidates []int64
	for _, status := range []ledger.Status{ledger.StatusTranscribed, ledger.StatusValidated, ledger.StatusAnalyzed} {
		meetings, err := o.Ledger.GetMeetingsByStatus(ctx, status)
		if err != nil {
			return diarize.Stats{}, fmt.Errorf("list %s meetings: %w", status, err)
		}
		for _, m := range meetings {
			candidates = append(candidates, m.ClipID)
		}
	}

	candidates, err := o.excludeExhaustedRetries(ctx, candidates, maxRetries)
	if err != nil {
		return diarize.Stats{}, err
	}
	return o.Diarize.RunBatch(ctx, candidates, batchSize)
}

// excludeExhaustedRetries drops any clip ID whose "diarize" failure count
// has already reached maxRetries, so a meeting that fails permanently
// (e.g. a corrupt transcript) stops being offered to the batch instead of
// being retried forever.
func (o *Orchestrator) excludeExhaustedRetries(ctx context.Context, clipIDs []int64, maxRetries int) ([]int64, error) {
	if maxRetries <= 0 {
		return clipIDs, nil
	}

	out := make([]int64, 0, len(clipIDs))
	for _, clipID := range clipIDs {
		count, err := o.Ledger.RetryCount(ctx, clipID, "diarize")
		if err != nil {
			return nil, fmt.Errorf("check retry count for clip %d: %w", clipID, err)
		}
		if count >= maxRetries {
			continue
		}
		out = append(out, clipID)
	}
	return out, nil
}

// RunContinuousDiarize repeatedly drains the diarization backlog, sleeping
// after every pass, until maxEmptyPasses consecutive passes find
// nothing to do. It's meant to run alongside the rest of the pipeline as a
// long-lived background pass, since diarization never blocks on (or is
// blocked by) any other stage's status. A meeting that keeps failing
// diarization is excluded from the candidate set once it hits maxRetries,
// so a single permanently-broken meeting can't keep the loop running
// forever.
func (o *Orchestrator) RunContinuousDiarize(ctx context.Context, batchSize int, sleepBetween time.Duration, maxEmptyPasses, maxRetries int) (diarize.Stats, error) {
	total := diarize.Stats{}
	emptyPasses := 0

	for emptyPasses < maxEmptyPasses {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		stats, err := o.runDiarizeBatch(ctx, batchSize, maxRetries)
		if err != nil {
			return total, err
		}

		total.Diarized += stats.Diarized
		total.Skipped += stats.Skipped
		total.Failed += stats.Failed

		if stats.Diarized == 0 && stats.Failed == 0 {
			emptyPasses++
		} else {
			emptyPasses = 0
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(sleepBetween):
		}
	}
	return total, nil
}
