package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Config is the fully-resolved configuration for a pipeline run, built once
// in main and threaded explicitly through every component's constructor.
type Config struct {
	Database     DatabaseConfig
	Paths        PathsConfig
	Capabilities CapabilityConfig
	Domain       *DomainConfig
}

// Stats summarizes the loaded configuration for a single startup log line.
type Stats struct {
	ClipIDRangeSize  int
	CouncilMembers   int
	MeetingTypes     int
	PriorityKeywords int
}

// Stats returns summary counts of the loaded domain configuration.
func (c *Config) Stats() Stats {
	return Stats{
		ClipIDRangeSize:  c.Domain.ClipIDEnd - c.Domain.ClipIDStart + 1,
		CouncilMembers:   len(c.Domain.CouncilMembers),
		MeetingTypes:     len(c.Domain.MeetingTypes),
		PriorityKeywords: len(c.Domain.PriorityKeywords),
	}
}

// Initialize loads environment variables, the optional domain YAML override
// at configDir/pipeline.yaml, and validates the result. This is the primary
// entry point for configuration loading, called once from main.
func Initialize(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	dbCfg, err := LoadDatabaseConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}

	domainPath := ""
	if configDir != "" {
		domainPath = filepath.Join(configDir, "pipeline.yaml")
	}
	domainCfg, err := LoadDomainConfig(domainPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain configuration: %w", err)
	}

	cfg := &Config{
		Database:     dbCfg,
		Paths:        LoadPathsFromEnv(),
		Capabilities: LoadCapabilitiesFromEnv(),
		Domain:       domainCfg,
	}

	stats := cfg.Stats()
	log.Info("configuration initialized",
		"clip_id_range", stats.ClipIDRangeSize,
		"council_members", stats.CouncilMembers,
		"meeting_types", stats.MeetingTypes,
		"priority_keywords", stats.PriorityKeywords)

	return cfg, nil
}
