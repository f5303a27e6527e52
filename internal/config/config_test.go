package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Stats(t *testing.T) {
	cfg := &Config{Domain: DefaultDomainConfig()}

	stats := cfg.Stats()

	assert.Equal(t, cfg.Domain.ClipIDEnd-cfg.Domain.ClipIDStart+1, stats.ClipIDRangeSize)
	assert.Equal(t, len(cfg.Domain.CouncilMembers), stats.CouncilMembers)
}

func TestInitialize_MissingDatabasePasswordFails(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	_, err := Initialize("")
	assert.Error(t, err)
}

func TestInitialize_LoadsDefaultsWithNoConfigDir(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Initialize("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.NotNil(t, cfg.Domain)
}
