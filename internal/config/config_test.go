package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, time.Second, cfg.BurstWindow)
	assert.Equal(t, 1500*time.Millisecond, cfg.Suggest.Delay)
	assert.False(t, cfg.Policy().RejectSelfLoops)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
log_level: debug
history_limit: 10
burst_window: 750ms
self_loops: reject
suggest:
  delay: 0s
  breaker:
    max_requests: 2
    timeout: 5s
    failure_threshold: 0.5
    min_requests: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 750*time.Millisecond, cfg.BurstWindow)
	assert.True(t, cfg.Policy().RejectSelfLoops)
	assert.Zero(t, cfg.Suggest.Delay)

	s := cfg.BreakerSettings()
	assert.Equal(t, uint32(2), s.MaxRequests)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.Equal(t, 0.5, s.FailureThreshold)
	assert.Equal(t, uint32(4), s.MinRequests)
	assert.Equal(t, 30*time.Second, s.Interval, "unset fields keep their defaults")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad level", "log_level: loud"},
		{"bad self loops", "self_loops: sometimes"},
		{"zero history", "history_limit: 0"},
		{"threshold above one", "suggest: {breaker: {failure_threshold: 1.5}}"},
		{"not yaml", "addr: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CHATFLOW_ADDR":          ":7000",
		"CHATFLOW_LOG_LEVEL":     "WARN",
		"CHATFLOW_HISTORY_LIMIT": "12",
		"CHATFLOW_SELF_LOOPS":    "reject",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, 12, cfg.HistoryLimit)
	assert.Equal(t, SelfLoopsReject, cfg.SelfLoops)

	env["CHATFLOW_HISTORY_LIMIT"] = "many"
	assert.Error(t, Default().applyEnv(lookup))
}
