package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, 2*time.Second, cfg.ProcessDelay)
	require.Equal(t, 4, cfg.WorkerCount)
	require.Equal(t, 1024, cfg.QueueSize)
	require.Equal(t, time.Minute, cfg.SweepInterval)
	require.Equal(t, 2*time.Minute, cfg.SweepPendingAge)
	require.Equal(t, 5*time.Minute, cfg.SweepProcessingAge)
	require.True(t, cfg.AuthDisabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("PROCESS_DELAY", "50ms")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("SWEEP_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.HTTPPort)
	require.Equal(t, 50*time.Millisecond, cfg.ProcessDelay)
	require.Equal(t, 8, cfg.WorkerCount)
	require.Equal(t, 30*time.Second, cfg.SweepInterval)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "false")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "too-short")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef0123456789abcdef", cfg.JWTSecret)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("PROCESS_DELAY", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
