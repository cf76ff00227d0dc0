package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 5*time.Second, cfg.Engine.LookupTimeout)
	assert.Equal(t, 48*time.Hour, cfg.Engine.ReplanHorizon)
	assert.Equal(t, 3, cfg.Engine.MaxAlternatives)
	assert.Equal(t, 5, cfg.Engine.SwapPoolSize)
	assert.Equal(t, []time.Duration{2 * time.Hour, 4 * time.Hour, 24 * time.Hour}, cfg.Engine.TimeShiftOffsets)
	assert.Equal(t, 5, cfg.Engine.RecentFlightsWindow)
	assert.Equal(t, 2, cfg.Notifications.Workers)
	assert.True(t, cfg.Export.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("ENGINE_LOOKUP_TIMEOUT", "750ms")
	t.Setenv("ENGINE_TIME_SHIFT_OFFSETS", "1h,3h")
	t.Setenv("ENGINE_MAX_ALTERNATIVES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LookupTimeout)
	assert.Equal(t, []time.Duration{time.Hour, 3 * time.Hour}, cfg.Engine.TimeShiftOffsets)
	assert.Equal(t, 2, cfg.Engine.MaxAlternatives)
}

func TestParseOffsetsSkipsInvalid(t *testing.T) {
	offsets := parseOffsets("2h, nonsense, -1h, 30m")
	assert.Equal(t, []time.Duration{2 * time.Hour, 30 * time.Minute}, offsets)
}
