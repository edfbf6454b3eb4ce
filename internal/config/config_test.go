package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/tmp", cfg.TempDir)
	assert.Equal(t, int64(80*1024*1024), cfg.DownloadCapBytes)
	assert.Equal(t, 25*time.Second, cfg.TotalBudget())
	assert.Equal(t, 1500*time.Millisecond, cfg.SafetyMargin())
	assert.Equal(t, 3*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 10*time.Second, cfg.AttemptCap())
	assert.Empty(t, cfg.AuthSecret)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("CONV_AUTH_SECRET", "from-env")
	t.Setenv("CONV_TOTAL_BUDGET_MS", "9000")

	cfg, err := LoadConfig("nonexistent.yml")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AuthSecret)
	assert.Equal(t, 9*time.Second, cfg.TotalBudget())
}
