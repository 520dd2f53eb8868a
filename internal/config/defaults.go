package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID      = "cryptopicks"
	DefaultFeedInterval    = 1000 * time.Millisecond
	DefaultFlashTTL        = 500 * time.Millisecond
	DefaultStake           = 10.0
	DefaultOddsHorizon     = 7 * 24 * time.Hour
	DefaultPort            = 8080
	DefaultStreamBuffer    = 16
	DefaultStreamMaxBuffer = 1024
	DefaultLogLevel        = "info"
)

func (c *EngineConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	if c.Feed.Interval == 0 {
		c.Feed.Interval = DefaultFeedInterval
	}
	if c.Flash.TTL == 0 {
		c.Flash.TTL = DefaultFlashTTL
	}
	if c.Selection.DefaultStake == 0 {
		c.Selection.DefaultStake = DefaultStake
	}
	if c.Odds.Horizon == 0 {
		c.Odds.Horizon = DefaultOddsHorizon
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.StreamBuffer == 0 {
		c.Server.StreamBuffer = DefaultStreamBuffer
	}
	if c.Server.StreamMaxBuffer == 0 {
		c.Server.StreamMaxBuffer = DefaultStreamMaxBuffer
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
