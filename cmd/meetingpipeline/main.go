// meetingpipeline discovers, downloads, transcribes, diarizes, validates,
// and analyzes a municipality's publicly streamed council meeting
// recordings, resuming cleanly from wherever a prior run left off.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chico-council/meeting-pipeline/internal/analyze"
	"github.com/chico-council/meeting-pipeline/internal/capability"
	"github.com/chico-council/meeting-pipeline/internal/config"
	"github.com/chico-council/meeting-pipeline/internal/database"
	"github.com/chico-council/meeting-pipeline/internal/diarize"
	"github.com/chico-council/meeting-pipeline/internal/discovery"
	"github.com/chico-council/meeting-pipeline/internal/downloader"
	"github.com/chico-council/meeting-pipeline/internal/ledger"
	"github.com/chico-council/meeting-pipeline/internal/orchestrator"
	"github.com/chico-council/meeting-pipeline/internal/statusapi"
	"github.com/chico-council/meeting-pipeline/internal/transcribe"
	"github.com/chico-council/meeting-pipeline/internal/validate"
	"github.com/chico-council/meeting-pipeline/internal/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 2
	}
	subcommand := os.Args[1]
	args := os.Args[2:]

	fs := flag.NewFlagSet(subcommand, flag.ExitOnError)
	configDir := fs.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	batchSize := fs.Int("batch-size", 0, "Override the configured batch size for this stage")
	startOverride := fs.Int("start", 0, "discover: override the configured clip ID range start")
	endOverride := fs.Int("end", 0, "discover: override the configured clip ID range end")
	continuous := fs.Bool("continuous", false, "diarize: run the continuous drain-sleep-repeat loop instead of one batch")
	maxRetries := fs.Int("max-retries", 0, "diarize --continuous: failures before a meeting is excluded (default from config)")
	retryDelay := fs.Duration("retry-delay", 0, "diarize --continuous: sleep between empty passes (default from config)")
	skipDiscovery := fs.Bool("skip-discovery", false, "pipeline: skip the discovery stage")
	skipDownload := fs.Bool("skip-download", false, "pipeline: skip the download stage")
	skipTranscribe := fs.Bool("skip-transcribe", false, "pipeline: skip the transcribe stage")
	skipDiarize := fs.Bool("skip-diarize", false, "pipeline: skip the diarize stage")
	skipValidate := fs.Bool("skip-validate", false, "pipeline: skip the validate stage")
	skipAnalyze := fs.Bool("skip-analyze", false, "pipeline: skip the analyze stage")
	printStatus := fs.Bool("status", false, "pipeline: print backlog status after the run completes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	}

	log := slog.Default()
	log.Info("starting meetingpipeline", "version", version.Full(), "command", subcommand)

	ctx := context.Background()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Error("failed to initialize configuration", "error", err)
		return 1
	}

	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		return 1
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Error("error closing database client", "error", err)
		}
	}()

	store := ledger.New(dbClient.DB())
	o := buildOrchestrator(store, cfg, log)

	switch subcommand {
	case "setup":
		return cmdSetup(cfg, log)
	case "discover":
		return cmdDiscover(ctx, o, cfg, *startOverride, *endOverride, log)
	case "download":
		return cmdBatch(ctx, "download", *batchSize, cfg.Domain.Batches.Download, func(n int) (any, error) {
			return o.Downloader.RunBatch(ctx, n)
		}, log)
	case "transcribe":
		return cmdBatch(ctx, "transcribe", *batchSize, cfg.Domain.Batches.Transcribe, func(n int) (any, error) {
			return o.Transcribe.RunBatch(ctx, n)
		}, log)
	case "validate":
		return cmdBatch(ctx, "validate", *batchSize, cfg.Domain.Batches.Validate, func(n int) (any, error) {
			return o.Validate.RunBatch(ctx, n)
		}, log)
	case "analyze":
		return cmdBatch(ctx, "analyze", *batchSize, cfg.Domain.Batches.Analyze, func(n int) (any, error) {
			return o.Analyze.RunBatch(ctx, n)
		}, log)
	case "diarize":
		return cmdDiarize(ctx, o, fs.Args(), *batchSize, *continuous, *maxRetries, *retryDelay, cfg, log)
	case "pipeline":
		opts := orchestrator.Options{
			SkipDiscovery:  *skipDiscovery,
			SkipDownload:   *skipDownload,
			SkipTranscribe: *skipTranscribe,
			SkipDiarize:    *skipDiarize,
			SkipValidate:   *skipValidate,
			SkipAnalyze:    *skipAnalyze,
		}
		return cmdPipeline(ctx, o, opts, *printStatus, log)
	case "status":
		return cmdStatus(ctx, o, log)
	case "serve":
		return cmdServe(ctx, dbClient, o, log)
	default:
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: meetingpipeline <command> [flags]

commands:
  setup               create data directories and confirm database connectivity
  discover [-start N -end N]
                      probe the configured (or overridden) clip ID range for new meetings
  download            download audio for discovered meetings
  transcribe          run dual-model transcription on downloaded meetings
  diarize [<clip_id>] attach speaker attribution; bare runs one batch, <clip_id> runs one meeting
  diarize -continuous [-max-retries N -retry-delay DURATION]
                      drain the diarize backlog repeatedly until it stays empty
  validate            run WER comparison and two-tier LLM coherence review
  analyze             run structured LLM analysis extraction
  pipeline [-skip-discovery -skip-download -skip-transcribe -skip-diarize -skip-validate -skip-analyze] [-status]
                      run every non-skipped stage once, in order
  status              print the current ledger backlog and ETA
  serve               run the read-only status HTTP API

flags:
  -config-dir string   path to configuration directory (default "./deploy/config")
  -batch-size int       override the configured batch size for this stage`)
}

func buildOrchestrator(store *ledger.Store, cfg *config.Config, log *slog.Logger) *orchestrator.Orchestrator {
	chat := capability.NewOllamaChat(cfg.Capabilities.ChatBaseURL, cfg.Capabilities.HTTPTimeout, log)
	transcriber := capability.NewHTTPTranscriber(cfg.Capabilities.TranscriberBaseURL, cfg.Domain.Timeouts.Transcribe, log)
	diarizer := capability.NewHTTPDiarizer(cfg.Capabilities.DiarizerBaseURL, cfg.Capabilities.DiarizerToken, cfg.Capabilities.HTTPTimeout, log)
	fetcher := capability.NewHTTPClipFetcher(cfg.Capabilities.ClipPageURLTemplate, cfg.Capabilities.HTTPTimeout, log)
	extractor := capability.NewFFmpegAudioExtractor(log)

	return &orchestrator.Orchestrator{
		Ledger: store,
		Domain: cfg.Domain,
		Log:    log,
		Discovery: &discovery.Service{
			Fetcher:     fetcher,
			Ledger:      store,
			URLTemplate: cfg.Capabilities.ClipPageURLTemplate,
			Concurrency: cfg.Domain.DiscoveryConcurrency,
			Log:         log,
		},
		Downloader: &downloader.Service{
			Extractor: extractor,
			Ledger:    store,
			AudioDir:  cfg.Paths.AudioDir,
			Log:       log,
		},
		Transcribe: &transcribe.Service{
			Transcriber:    transcriber,
			Ledger:         store,
			AudioDir:       cfg.Paths.AudioDir,
			TranscriptDir:  cfg.Paths.TranscriptDir,
			PrimaryModel:   cfg.Domain.TranscriberPrimaryModel,
			SecondaryModel: cfg.Domain.TranscriberSecondaryModel,
			Log:            log,
		},
		Diarize: &diarize.Service{
			Diarizer:        diarizer,
			Chat:            chat,
			Ledger:          store,
			AudioDir:        cfg.Paths.AudioDir,
			TranscriptDir:   cfg.Paths.TranscriptDir,
			PrimaryModel:    cfg.Domain.TranscriberPrimaryModel,
			LLMModel:        cfg.Domain.ChatModelValidationFast,
			CouncilMembers:  cfg.Domain.CouncilMembers,
			SpeakerStoplist: cfg.Domain.SpeakerStoplist,
			Log:             log,
		},
		Validate: &validate.Service{
			Chat:               chat,
			Ledger:             store,
			TranscriptDir:      cfg.Paths.TranscriptDir,
			PrimaryModel:       cfg.Domain.TranscriberPrimaryModel,
			SecondaryModel:     cfg.Domain.TranscriberSecondaryModel,
			FastModel:          cfg.Domain.ChatModelValidationFast,
			DeepModel:          cfg.Domain.ChatModelValidationDeep,
			CouncilMembers:     cfg.Domain.CouncilMembers,
			MunicipalTerms:     cfg.Domain.MunicipalTerms,
			WERThreshold:       cfg.Domain.Thresholds.WERThreshold,
			CoherenceThreshold: cfg.Domain.Thresholds.CoherenceThreshold,
			Tier1SegmentLimit:  cfg.Domain.Thresholds.Tier1SegmentLimit,
			Tier2SegmentLimit:  cfg.Domain.Thresholds.Tier2SegmentLimit,
			Log:                log,
		},
		Analyze: &analyze.Service{
			Chat:             chat,
			Ledger:           store,
			TranscriptDir:    cfg.Paths.TranscriptDir,
			Model:            cfg.Domain.ChatModelAnalysis,
			AnalysisTypes:    analyze.DefaultAnalysisTypes(),
			PriorityKeywords: cfg.Domain.PriorityKeywords,
			WatchedMembers:   cfg.Domain.WatchedMembers,
			Log:              log,
		},
	}
}

func cmdSetup(cfg *config.Config, log *slog.Logger) int {
	for _, dir := range []string{cfg.Paths.AudioDir, cfg.Paths.TranscriptDir, cfg.Paths.AnalysisDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create data directory", "dir", dir, "error", err)
			return 1
		}
	}
	log.Info("pipeline setup complete", "stats", cfg.Stats())
	return 0
}

func cmdDiscover(ctx context.Context, o *orchestrator.Orchestrator, cfg *config.Config, startOverride, endOverride int, log *slog.Logger) int {
	start := cfg.Domain.ClipIDStart
	if startOverride > 0 {
		start = startOverride
	}
	end := cfg.Domain.ClipIDEnd
	if endOverride > 0 {
		end = endOverride
	}
	stats, err := o.Discovery.Run(ctx, int64(start), int64(end), cfg.Domain.MeetingTypes)
	if err != nil {
		log.Error("discovery failed", "error", err)
		return 1
	}
	log.Info("discovery complete", "new", stats.New, "existing", stats.Existing, "updated", stats.Updated)
	return 0
}

func cmdBatch(ctx context.Context, name string, overrideSize, defaultSize int, run func(int) (any, error), log *slog.Logger) int {
	n := defaultSize
	if overrideSize > 0 {
		n = overrideSize
	}
	stats, err := run(n)
	if err != nil {
		log.Error(name+" failed", "error", err)
		return 1
	}
	log.Info(name+" complete", "stats", stats)
	return 0
}

// maxContinuousEmptyPasses bounds nothing in practice: the continuous
// diarize CLI mode is meant to run until its process is killed, so it's
// given a pass count high enough to never reach on its own.
const maxContinuousEmptyPasses = 1 << 30

func cmdDiarize(ctx context.Context, o *orchestrator.Orchestrator, positional []string, overrideSize int, continuous bool, maxRetriesOverride int, retryDelayOverride time.Duration, cfg *config.Config, log *slog.Logger) int {
	if continuous {
		maxRetries := cfg.Domain.Retry.MaxRetries
		if maxRetriesOverride > 0 {
			maxRetries = maxRetriesOverride
		}
		retryDelay := cfg.Domain.Retry.RetryDelay
		if retryDelayOverride > 0 {
			retryDelay = retryDelayOverride
		}
		stats, err := o.RunContinuousDiarize(ctx, cfg.Domain.Batches.Diarize, retryDelay, maxContinuousEmptyPasses, maxRetries)
		if err != nil {
			log.Error("continuous diarize failed", "error", err)
			return 1
		}
		log.Info("continuous diarize complete", "diarized", stats.Diarized, "skipped", stats.Skipped, "failed", stats.Failed)
		return 0
	}

	if len(positional) > 0 {
		clipID, err := strconv.ParseInt(positional[0], 10, 64)
		if err != nil {
			log.Error("invalid clip_id argument", "value", positional[0], "error", err)
			return 2
		}
		stats, err := o.Diarize.RunBatch(ctx, []int64{clipID}, 1)
		if err != nil {
			log.Error("diarize failed", "error", err)
			return 1
		}
		log.Info("diarize complete", "clip_id", clipID, "diarized", stats.Diarized, "skipped", stats.Skipped, "failed", stats.Failed)
		return 0
	}

	n := cfg.Domain.Batches.Diarize
	if overrideSize > 0 {
		n = overrideSize
	}
	var candidates []int64
	for _, status := range []ledger.Status{ledger.StatusTranscribed, ledger.StatusValidated, ledger.StatusAnalyzed} {
		meetings, err := o.Ledger.GetMeetingsByStatus(ctx, status)
		if err != nil {
			log.Error("failed to list meetings", "status", status, "error", err)
			return 1
		}
		for _, m := range meetings {
			candidates = append(candidates, m.ClipID)
		}
	}
	stats, err := o.Diarize.RunBatch(ctx, candidates, n)
	if err != nil {
		log.Error("diarize failed", "error", err)
		return 1
	}
	log.Info("diarize complete", "diarized", stats.Diarized, "skipped", stats.Skipped, "failed", stats.Failed)
	return 0
}

func cmdPipeline(ctx context.Context, o *orchestrator.Orchestrator, opts orchestrator.Options, printStatus bool, log *slog.Logger) int {
	result, err := o.RunFull(ctx, opts)
	if err != nil {
		log.Error("pipeline run failed", "error", err)
		return 1
	}
	log.Info("pipeline run complete",
		"discovery_new", result.Discovery.New,
		"downloaded", result.Download.Downloaded,
		"transcribed", result.Transcribe.Transcribed,
		"diarized", result.Diarize.Diarized,
		"validated", result.Validate.Validated,
		"analyzed", result.Analyze.Analyzed,
		"duration", result.CompletedAt.Sub(result.StartedAt).Round(time.Second),
		"errors", result.Errors)

	if printStatus {
		if code := cmdStatus(ctx, o, log); code != 0 {
			return code
		}
	}

	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

func cmdStatus(ctx context.Context, o *orchestrator.Orchestrator, log *slog.Logger) int {
	st, err := o.Status(ctx)
	if err != nil {
		log.Error("failed to get status", "error", err)
		return 1
	}
	log.Info("pipeline status",
		"total_meetings", st.Stats.TotalMeetings,
		"by_status", st.Stats.ByStatus,
		"eta_remaining", st.ETARemaining.Round(time.Second))
	return 0
}

func cmdServe(ctx context.Context, dbClient *database.Client, o *orchestrator.Orchestrator, log *slog.Logger) int {
	addr := ":" + getEnv("HTTP_PORT", "8080")
	server := statusapi.NewServer(dbClient.DB(), o)
	log.Info("starting status API", "addr", addr)
	if err := server.Run(ctx, addr); err != nil {
		log.Error("status API stopped", "error", err)
		return 1
	}
	return 0
}
