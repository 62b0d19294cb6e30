package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/axon/pkg/observability"
)

// EnvConfigFile names the environment variable pointing at an optional config file.
const EnvConfigFile = "AXON_CONFIG"

// Config is the process-level configuration, read once at bootstrap.
type Config struct {
	Timeline  observability.Config `mapstructure:"timeline" yaml:"timeline" json:"timeline"`
	Inspector Inspector            `mapstructure:"inspector" yaml:"inspector" json:"inspector"`
	Log       Log                  `mapstructure:"log" yaml:"log" json:"log"`
	Sinks     Sinks                `mapstructure:"sinks" yaml:"sinks" json:"sinks"`
}

// Inspector gates the read-only inspection server.
type Inspector struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr" json:"addr"`
}

// Log configures the application logger.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Sinks enables optional mirrors of exported timelines.
type Sinks struct {
	RedisURL   string `mapstructure:"redis_url" yaml:"redis_url" json:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path" json:"sqlite_path"`
	// Redact lists regular expressions; matching labels and branch ids are
	// masked before a record reaches any mirror.
	Redact []string `mapstructure:"redact" yaml:"redact" json:"redact"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Timeline:  observability.DefaultConfig(),
		Inspector: Inspector{Addr: ":7070"},
		Log:       Log{Level: "info", Format: "text"},
	}
}

// envBinding maps an environment variable to a dotted config key.
type envBinding struct {
	env string
	key string
}

var envBindings = []envBinding{
	{"AXON_TIMELINE_OUTPUT", "timeline.output"},
	{"AXON_TIMELINE_MODE", "timeline.mode"},
	{"AXON_TIMELINE_SAMPLE_RATE", "timeline.sample_rate"},
	{"AXON_TIMELINE_ADAPTIVE", "timeline.adaptive"},
	{"AXON_TIMELINE_MAX_EVENTS", "timeline.max_events"},
	{"AXON_TIMELINE_ROTATE_KEEP", "timeline.rotate_keep"},
	{"AXON_TIMELINE_STATS_OUTPUT", "timeline.stats_output"},
	{"AXON_TIMELINE_PROJECTIONS", "timeline.projections"},
	{"AXON_SERVICE", "timeline.service"},
	{"AXON_INSPECTOR", "inspector.enabled"},
	{"AXON_INSPECTOR_ADDR", "inspector.addr"},
	{"AXON_LOG_LEVEL", "log.level"},
	{"AXON_LOG_FORMAT", "log.format"},
	{"AXON_REDIS_URL", "sinks.redis_url"},
	{"AXON_SQLITE_PATH", "sinks.sqlite_path"},
	{"AXON_SINKS_REDACT", "sinks.redact"},
}

// Load reads the configuration from the process environment. The file named by
// path, or by AXON_CONFIG when path is empty, is read first; environment
// variables override it.
func Load(path string) (Config, error) {
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup is Load with an injectable environment.
func LoadWithLookup(path string, lookup func(string) (string, bool)) (Config, error) {
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}

	raw := map[string]any{}
	if path != "" {
		if err := readFile(path, raw); err != nil {
			return Config{}, err
		}
	}
	for _, b := range envBindings {
		// Set but empty counts as unset.
		if v, ok := lookup(b.env); ok && strings.TrimSpace(v) != "" {
			set(raw, b.key, strings.TrimSpace(v))
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		TagName:          "mapstructure",
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to build config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Timeline.Adaptive = observability.ParsePolicy(string(cfg.Timeline.Adaptive))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot be honoured.
func (c Config) Validate() error {
	if err := c.Timeline.Validate(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

func readFile(path string, into map[string]any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &into); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, &into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// set assigns value at a dotted key, creating intermediate maps.
func set(m map[string]any, key, value string) {
	section, leaf, nested := strings.Cut(key, ".")
	if !nested {
		m[key] = value
		return
	}
	child, ok := m[section].(map[string]any)
	if !ok {
		child = map[string]any{}
		m[section] = child
	}
	set(child, leaf, value)
}
