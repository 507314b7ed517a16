// Package config loads canvasreplay settings.
//
// Settings are layered: built-in defaults, then an optional TOML file,
// then CANVASREPLAY_* environment variables. Command-line flags are
// applied last by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CANVASREPLAY_"

// Config is the full set of settings.
type Config struct {
	Replay    ReplayConfig    `toml:"replay" envPrefix:"REPLAY_"`
	Session   SessionConfig   `toml:"session" envPrefix:"SESSION_"`
	Logging   LoggingConfig   `toml:"logging" envPrefix:"LOG_"`
	Metrics   MetricsConfig   `toml:"metrics" envPrefix:"METRICS_"`
	Telemetry TelemetryConfig `toml:"telemetry" envPrefix:"OTEL_"`
}

// ReplayConfig controls playback.
type ReplayConfig struct {
	// Speed is the delay between successive deliveries.
	Speed time.Duration `toml:"speed" env:"SPEED"`
}

// SessionConfig attributes recorded events.
type SessionConfig struct {
	// UserID is stamped on every event when set.
	UserID string `toml:"user_id" env:"USER_ID"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `toml:"level" env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string `toml:"addr" env:"ADDR"`
}

// TelemetryConfig controls trace export.
type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables export.
	Endpoint    string `toml:"endpoint" env:"ENDPOINT"`
	ServiceName string `toml:"service_name" env:"SERVICE_NAME"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Replay:  ReplayConfig{Speed: time.Second},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{
			ServiceName: "canvasreplay",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path (if
// path is non-empty and the file exists), and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("decode TOML: unknown keys %s", strings.Join(keys, ", "))
	}
	return nil
}

// ParseEnv overrides cfg with any CANVASREPLAY_* variables that are set.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Replay.Speed <= 0 {
		errs = append(errs, fmt.Errorf("replay.speed must be positive, got %s", c.Replay.Speed))
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}
	if c.Telemetry.Endpoint != "" && c.Telemetry.ServiceName == "" {
		errs = append(errs, fmt.Errorf("telemetry.service_name is required when an endpoint is set"))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}
