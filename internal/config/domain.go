package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DomainConfig holds the municipality-specific knowledge the pipeline needs:
// the clip ID range to probe, meeting-type classification keywords, the
// council roster and terms used by pattern-based speaker identification,
// and the thresholds/batch sizes/timeouts that govern each stage.
type DomainConfig struct {
	ClipIDStart int      `yaml:"clip_id_start"`
	ClipIDEnd   int       `yaml:"clip_id_end"`
	MeetingTypes []string `yaml:"meeting_types"`

	CouncilMembers  []string `yaml:"council_members"`
	MunicipalTerms  []string `yaml:"municipal_terms"`
	PriorityKeywords []string `yaml:"priority_keywords"`
	SpeakerStoplist []string `yaml:"speaker_stoplist"`
	WatchedMembers  []string `yaml:"watched_members"`

	TranscriberPrimaryModel   string `yaml:"transcriber_primary_model"`
	TranscriberSecondaryModel string `yaml:"transcriber_secondary_model"`
	ChatModelAnalysis         string `yaml:"chat_model_analysis"`
	ChatModelValidationFast   string `yaml:"chat_model_validation_fast"`
	ChatModelValidationDeep   string `yaml:"chat_model_validation_deep"`

	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Batches    BatchesConfig    `yaml:"batches"`
	Estimates  EstimatesConfig  `yaml:"estimates"`
	Retry      RetryConfig      `yaml:"retry"`

	DiscoveryConcurrency int `yaml:"discovery_concurrency"`
}

// RetryConfig bounds how many times a meeting may fail a stage before it is
// excluded from that stage's candidate set, and how long a continuous
// runner sleeps between empty passes.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// ThresholdsConfig holds the numeric cutoffs that decide tier escalation,
// divergence flagging, and review routing.
type ThresholdsConfig struct {
	CoherenceThreshold int     `yaml:"coherence_threshold"`
	WERThreshold       float64 `yaml:"wer_threshold"`
	Tier1SegmentLimit  int     `yaml:"tier1_segment_limit"`
	Tier2SegmentLimit  int     `yaml:"tier2_segment_limit"`
}

// TimeoutsConfig holds per-stage external-call timeouts.
type TimeoutsConfig struct {
	Download   time.Duration `yaml:"download"`
	Transcribe time.Duration `yaml:"transcribe"`
	Analysis   time.Duration `yaml:"analysis"`
	HTTP       time.Duration `yaml:"http"`
}

// BatchesConfig holds the default batch size per stage invocation.
type BatchesConfig struct {
	Download   int `yaml:"download"`
	Transcribe int `yaml:"transcribe"`
	Diarize    int `yaml:"diarize"`
	Validate   int `yaml:"validate"`
	Analyze    int `yaml:"analyze"`
}

// EstimatesConfig holds the fixed per-item minute estimates the orchestrator
// uses to compute a rough ETA for the remaining backlog.
type EstimatesConfig struct {
	DownloadMinutes   float64 `yaml:"download_minutes"`
	TranscribeMinutes float64 `yaml:"transcribe_minutes"`
	ValidateMinutes   float64 `yaml:"validate_minutes"`
	AnalyzeMinutes    float64 `yaml:"analyze_minutes"`
}

// DefaultDomainConfig returns the built-in defaults, grounded on the
// constants the reference pipeline used in production.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		ClipIDStart:  900,
		ClipIDEnd:    1300,
		MeetingTypes: []string{"City Council", "Planning Commission", "Special Meeting"},

		CouncilMembers: []string{
			"Coolidge", "Reynolds", "Brown", "Huber", "Morgan", "Stone", "Tandon", "van Overbeek",
		},
		MunicipalTerms: []string{
			"agenda", "ordinance", "resolution", "motion", "second", "consent calendar",
			"public comment", "closed session", "zoning", "variance", "permit",
		},
		PriorityKeywords: []string{
			"housing", "homeless", "budget", "tax", "development", "zoning", "police",
			"fire", "water", "infrastructure", "climate", "emergency",
		},
		SpeakerStoplist: []string{
			"i", "we", "you", "just", "not", "sure", "sorry", "here", "going", "trying",
			"looking", "hoping", "thinking", "wondering", "asking", "saying", "making",
			"doing", "very", "really", "actually", "glad", "happy", "concerned", "worried",
			"curious", "welcome", "thank", "please", "next", "first", "last", "council",
			"member", "mayor", "vice", "city", "public", "speaker",
		},
		WatchedMembers: []string{"van Overbeek", "Reynolds"},

		TranscriberPrimaryModel:   "whisper-large-v3",
		TranscriberSecondaryModel: "whisper-medium",
		ChatModelAnalysis:         "qwen2.5:72b",
		ChatModelValidationFast:   "mistral:7b-instruct",
		ChatModelValidationDeep:   "deepseek-r1:70b",

		Thresholds: ThresholdsConfig{
			CoherenceThreshold: 80,
			WERThreshold:       0.15,
			Tier1SegmentLimit:  50,
			Tier2SegmentLimit:  20,
		},
		Timeouts: TimeoutsConfig{
			Download:   1 * time.Hour,
			Transcribe: 2 * time.Hour,
			Analysis:   30 * time.Minute,
			HTTP:       30 * time.Second,
		},
		Batches: BatchesConfig{
			Download:   10,
			Transcribe: 3,
			Diarize:    5,
			Validate:   5,
			Analyze:    1,
		},
		Estimates: EstimatesConfig{
			DownloadMinutes:   7,
			TranscribeMinutes: 25,
			ValidateMinutes:   3,
			AnalyzeMinutes:    8,
		},
		DiscoveryConcurrency: 5,

		Retry: RetryConfig{
			MaxRetries: 3,
			RetryDelay: 30 * time.Second,
		},
	}
}

// LoadDomainConfig loads an optional YAML override file from path and merges
// it over the built-in defaults (non-zero user values win), the same
// load-then-merge-then-validate shape the ambient config loader uses.
func LoadDomainConfig(path string) (*DomainConfig, error) {
	cfg := DefaultDomainConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read domain config %s: %w", path, err)
			}
		} else {
			var override DomainConfig
			if err := yaml.Unmarshal(data, &override); err != nil {
				return nil, fmt.Errorf("failed to parse domain config %s: %w", path, err)
			}
			if err := mergo.Merge(cfg, &override, mergo.WithOverride); err != nil {
				return nil, fmt.Errorf("failed to merge domain config: %w", err)
			}
		}
	}

	if err := validateDomainConfig(cfg); err != nil {
		return nil, fmt.Errorf("domain config validation failed: %w", err)
	}
	return cfg, nil
}

func validateDomainConfig(cfg *DomainConfig) error {
	if cfg.ClipIDStart > cfg.ClipIDEnd {
		return fmt.Errorf("clip_id_start must be <= clip_id_end")
	}
	if cfg.Thresholds.WERThreshold < 0 || cfg.Thresholds.WERThreshold > 1 {
		return fmt.Errorf("wer_threshold must be in [0,1]")
	}
	if cfg.Thresholds.CoherenceThreshold < 0 || cfg.Thresholds.CoherenceThreshold > 100 {
		return fmt.Errorf("coherence_threshold must be in [0,100]")
	}
	if cfg.DiscoveryConcurrency < 1 {
		return fmt.Errorf("discovery_concurrency must be >= 1")
	}
	if cfg.Retry.MaxRetries < 1 {
		return fmt.Errorf("retry.max_retries must be >= 1")
	}
	return nil
}
