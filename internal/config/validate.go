package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *EngineConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Feed.Interval <= 0 {
		return fmt.Errorf("feed.interval must be > 0, got %v", c.Feed.Interval)
	}
	if c.Flash.TTL <= 0 {
		return fmt.Errorf("flash.ttl must be > 0, got %v", c.Flash.TTL)
	}
	if !(c.Selection.DefaultStake > 0) || math.IsInf(c.Selection.DefaultStake, 0) {
		return fmt.Errorf("selection.default_stake must be a positive number, got %v", c.Selection.DefaultStake)
	}
	if c.Odds.Horizon <= 0 {
		return fmt.Errorf("odds.horizon must be > 0, got %v", c.Odds.Horizon)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.StreamBuffer < 1 {
		return errors.New("server.stream_buffer must be >= 1")
	}
	if c.Server.StreamMaxBuffer < c.Server.StreamBuffer {
		return fmt.Errorf("server.stream_max_buffer (%d) cannot be less than stream_buffer (%d)", c.Server.StreamMaxBuffer, c.Server.StreamBuffer)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	ids := make(map[int]bool, len(c.Assets))
	for i, a := range c.Assets {
		if ids[a.ID] {
			return fmt.Errorf("assets[%d]: duplicate id %d", i, a.ID)
		}
		ids[a.ID] = true
		if a.Symbol == "" {
			return fmt.Errorf("assets[%d].symbol is required", i)
		}
	}

	return nil
}
