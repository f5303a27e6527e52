package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDomainConfig_NoPathUsesDefaults(t *testing.T) {
	cfg, err := LoadDomainConfig("")
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.ClipIDStart)
	assert.Contains(t, cfg.CouncilMembers, "Reynolds")
}

func TestLoadDomainConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadDomainConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDomainConfig().ClipIDEnd, cfg.ClipIDEnd)
}

func TestLoadDomainConfig_OverrideFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clip_id_start: 1000
clip_id_end: 1100
council_members:
  - "Alvarez"
  - "Diaz"
`), 0o644))

	cfg, err := LoadDomainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.ClipIDStart)
	assert.Equal(t, 1100, cfg.ClipIDEnd)
	assert.Equal(t, []string{"Alvarez", "Diaz"}, cfg.CouncilMembers)
	// Fields not present in the override file retain their default values.
	assert.Equal(t, DefaultDomainConfig().Thresholds.WERThreshold, cfg.Thresholds.WERThreshold)
}

func TestLoadDomainConfig_InvalidClipIDRangeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clip_id_start: 500
clip_id_end: 100
`), 0o644))

	_, err := LoadDomainConfig(path)
	assert.Error(t, err)
}

func TestLoadDomainConfig_OutOfRangeWERThresholdFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
thresholds:
  wer_threshold: 1.5
`), 0o644))

	_, err := LoadDomainConfig(path)
	assert.Error(t, err)
}

func TestLoadDomainConfig_MalformedYAMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: content:"), 0o644))

	_, err := LoadDomainConfig(path)
	assert.Error(t, err)
}

func TestLoadDomainConfig_ZeroMaxRetriesFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retry:
  max_retries: 0
`), 0o644))

	_, err := LoadDomainConfig(path)
	assert.Error(t, err)
}

func TestLoadDomainConfig_RetryOverrideMergesOverDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
retry:
  max_retries: 5
`), 0o644))

	cfg, err := LoadDomainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Retry.RetryDelay, "retry_delay was left unset and must keep the default")
}
