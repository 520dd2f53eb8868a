package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/cryptopicks/internal/model"
)

// EngineConfig is the root configuration for an engine instance.
type EngineConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Feed      FeedConfig      `yaml:"feed"`
	Flash     FlashConfig     `yaml:"flash"`
	Selection SelectionConfig `yaml:"selection"`
	Odds      OddsConfig      `yaml:"odds"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Assets    []model.Asset   `yaml:"assets"` // Overrides the built-in catalog when set
}

// InstanceConfig identifies this engine.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// FeedConfig holds price simulator settings.
type FeedConfig struct {
	Interval time.Duration `yaml:"interval"`
	Seed     uint64        `yaml:"seed"` // 0 = nondeterministic
}

// FlashConfig holds change signal settings.
type FlashConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// SelectionConfig holds per-session selection settings.
type SelectionConfig struct {
	DefaultStake float64 `yaml:"default_stake"`
}

// OddsConfig holds advisory odds settings.
type OddsConfig struct {
	Horizon time.Duration `yaml:"horizon"`
}

// ServerConfig holds HTTP and stream settings.
type ServerConfig struct {
	Port            int `yaml:"port"`
	StreamBuffer    int `yaml:"stream_buffer"`
	StreamMaxBuffer int `yaml:"stream_max_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SlogLevel maps Level to a slog level. Unknown values map to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
