// Package config loads environment and YAML-based configuration for the
// pipeline: database connection parameters, filesystem roots, external
// capability endpoints, and the domain configuration (council roster,
// stoplist, thresholds, batch sizes).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Validate checks the database configuration for obvious misconfiguration.
func (c DatabaseConfig) Validate() error {
	if c.Password == "" {
		return fmt.Errorf("database password is required")
	}
	if c.MaxOpenConns < 1 {
		return fmt.Errorf("max_open_conns must be >= 1")
	}
	if c.MaxIdleConns < 0 {
		return fmt.Errorf("max_idle_conns must be >= 0")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns must be <= max_open_conns")
	}
	return nil
}

// LoadDatabaseConfigFromEnv reads DB_* environment variables, falling back
// to sensible local-development defaults.
func LoadDatabaseConfigFromEnv() (DatabaseConfig, error) {
	cfg := DatabaseConfig{
		Host:            getEnvOrDefault("DB_HOST", "localhost"),
		Port:            getEnvIntOrDefault("DB_PORT", 5432),
		User:            getEnvOrDefault("DB_USER", "meetingpipeline"),
		Password:        os.Getenv("DB_PASSWORD"),
		Database:        getEnvOrDefault("DB_NAME", "meetingpipeline"),
		SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getEnvDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
	}
	if err := cfg.Validate(); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

// PathsConfig holds the filesystem roots the pipeline reads/writes artifacts under.
type PathsConfig struct {
	AudioDir      string
	TranscriptDir string
	AnalysisDir   string
}

// CapabilityConfig holds endpoints for the pluggable external capabilities.
type CapabilityConfig struct {
	ClipPageURLTemplate string
	ChatBaseURL         string
	TranscriberBaseURL  string
	DiarizerBaseURL     string
	DiarizerToken       string
	HTTPTimeout         time.Duration
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// LoadPathsFromEnv reads the filesystem roots used for downloaded audio,
// transcripts, and analysis artifacts.
func LoadPathsFromEnv() PathsConfig {
	return PathsConfig{
		AudioDir:      getEnvOrDefault("AUDIO_DIR", "./data/audio"),
		TranscriptDir: getEnvOrDefault("TRANSCRIPT_DIR", "./data/transcripts"),
		AnalysisDir:   getEnvOrDefault("ANALYSIS_DIR", "./data/analysis"),
	}
}

// LoadCapabilitiesFromEnv reads the external capability endpoints.
func LoadCapabilitiesFromEnv() CapabilityConfig {
	return CapabilityConfig{
		ClipPageURLTemplate: getEnvOrDefault("CLIP_PAGE_URL_TEMPLATE", "https://council-media.example.gov/player/clip/%d"),
		ChatBaseURL:         getEnvOrDefault("CHAT_BASE_URL", "http://localhost:11434"),
		TranscriberBaseURL:  getEnvOrDefault("TRANSCRIBER_BASE_URL", "http://localhost:8090"),
		DiarizerBaseURL:     getEnvOrDefault("DIARIZER_BASE_URL", "http://localhost:8091"),
		DiarizerToken:       os.Getenv("DIARIZER_TOKEN"),
		HTTPTimeout:         getEnvDurationOrDefault("CAPABILITY_HTTP_TIMEOUT", 30*time.Second),
	}
}
