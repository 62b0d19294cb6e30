package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/pkg/observability"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithLookup("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, cfg.Timeline.Output, "capture is off unless an output is set")
	assert.Equal(t, 1.0, cfg.Timeline.SampleRate)
}

func TestLoad_Environment(t *testing.T) {
	cfg, err := LoadWithLookup("", env(map[string]string{
		"AXON_TIMELINE_OUTPUT":      "/tmp/timeline.json",
		"AXON_TIMELINE_MODE":        "rotate",
		"AXON_TIMELINE_SAMPLE_RATE": "0.25",
		"AXON_TIMELINE_ADAPTIVE":    "fault_only",
		"AXON_TIMELINE_ROTATE_KEEP": "3",
		"AXON_TIMELINE_MAX_EVENTS":  "100",
		"AXON_INSPECTOR":            "true",
		"AXON_LOG_LEVEL":            "debug",
		"AXON_REDIS_URL":            "redis://localhost:6379/0",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/timeline.json", cfg.Timeline.Output)
	assert.Equal(t, observability.ModeRotate, cfg.Timeline.Mode)
	assert.Equal(t, 0.25, cfg.Timeline.SampleRate)
	assert.Equal(t, observability.PolicyFaultOnly, cfg.Timeline.Adaptive)
	assert.Equal(t, 3, cfg.Timeline.RotateKeep)
	assert.Equal(t, 100, cfg.Timeline.MaxEvents)
	assert.True(t, cfg.Inspector.Enabled)
	assert.Equal(t, ":7070", cfg.Inspector.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Sinks.RedisURL)
}

func TestLoad_EmptyEnvironmentKeepsDefaults(t *testing.T) {
	cfg, err := LoadWithLookup("", env(map[string]string{
		"AXON_TIMELINE_SAMPLE_RATE": "",
		"AXON_TIMELINE_MODE":        "  ",
		"AXON_INSPECTOR_ADDR":       "",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Timeline.SampleRate)
	assert.Equal(t, observability.ModeOverwrite, cfg.Timeline.Mode)
	assert.Equal(t, ":7070", cfg.Inspector.Addr)
}

func TestLoad_UnknownPolicyFallsBackToDefault(t *testing.T) {
	cfg, err := LoadWithLookup("", env(map[string]string{"AXON_TIMELINE_ADAPTIVE": "sometimes"}))
	require.NoError(t, err)
	assert.Equal(t, observability.PolicyDefault, cfg.Timeline.Adaptive)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"rate above one":  {"AXON_TIMELINE_SAMPLE_RATE": "1.5"},
		"rate not number": {"AXON_TIMELINE_SAMPLE_RATE": "half"},
		"unknown mode":    {"AXON_TIMELINE_MODE": "truncate"},
		"unknown level":   {"AXON_LOG_LEVEL": "loud"},
		"unknown format":  {"AXON_LOG_FORMAT": "xml"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadWithLookup("", env(vars))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timeline:
  output: from-file.json
  mode: append
  sample_rate: 0.5
  max_events: 50
inspector:
  addr: ":9090"
sinks:
  sqlite_path: archive.db
  redact: ["^card-"]
`), 0644))

	cfg, err := LoadWithLookup("", env(map[string]string{
		EnvConfigFile:          path,
		"AXON_TIMELINE_OUTPUT": "from-env.json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env.json", cfg.Timeline.Output)
	assert.Equal(t, observability.ModeAppend, cfg.Timeline.Mode)
	assert.Equal(t, 0.5, cfg.Timeline.SampleRate)
	assert.Equal(t, 50, cfg.Timeline.MaxEvents)
	assert.Equal(t, ":9090", cfg.Inspector.Addr)
	assert.Equal(t, "archive.db", cfg.Sinks.SQLitePath)
	assert.Equal(t, []string{"^card-"}, cfg.Sinks.Redact)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep defaults")
}

func TestLoad_RedactFromEnvironment(t *testing.T) {
	cfg, err := LoadWithLookup("", env(map[string]string{"AXON_SINKS_REDACT": "^card-,email"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"^card-", "email"}, cfg.Sinks.Redact)
}

func TestLoad_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "axon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"timeline":{"adaptive":"off","rotate_keep":2}}`), 0644))

	cfg, err := LoadWithLookup(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, observability.PolicyOff, cfg.Timeline.Adaptive)
	assert.Equal(t, 2, cfg.Timeline.RotateKeep)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadWithLookup(filepath.Join(t.TempDir(), "nope.yaml"), env(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	lvl, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
}
