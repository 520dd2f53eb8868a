package flash

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/cryptopicks/internal/clock"
	"github.com/rickgao/cryptopicks/internal/model"
)

// Config holds change signal configuration.
type Config struct {
	TTL time.Duration // Flag lifetime (default: 500ms)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TTL: 500 * time.Millisecond,
	}
}

// Signal tracks the live direction flag of every asset.
type Signal struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	flags   map[int]*entry
	gens    map[int]uint64 // Last generation issued per asset; never reset
	stopped bool

	// Stats
	raised  int64
	expired int64
	stale   int64
}

type entry struct {
	flag  model.ChangeFlag
	timer clock.Timer
}

// Stats contains signal counters.
type Stats struct {
	Live    int
	Raised  int64
	Expired int64
	Stale   int64 // Expiries that found a newer flag and did nothing
}

// New creates a new Signal. A nil clock uses the wall clock.
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Signal {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &Signal{
		cfg:    cfg,
		clock:  clk,
		logger: logger,
		flags:  make(map[int]*entry),
		gens:   make(map[int]uint64),
	}
}

// Observe classifies one price point and raises a flag when the price moved.
// It reports whether a flag was raised. An unchanged price leaves any live
// flag alone.
func (s *Signal) Observe(p model.PricePoint) bool {
	var dir model.Direction
	switch {
	case p.Price > p.Previous:
		dir = model.DirUp
	case p.Price < p.Previous:
		dir = model.DirDown
	default:
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}

	if old, ok := s.flags[p.AssetID]; ok {
		old.timer.Stop()
	}

	gen := s.gens[p.AssetID] + 1
	s.gens[p.AssetID] = gen

	now := s.clock.Now()
	e := &entry{
		flag: model.ChangeFlag{
			AssetID:    p.AssetID,
			Direction:  dir,
			RaisedAt:   now,
			ExpiresAt:  now.Add(s.cfg.TTL),
			Generation: gen,
		},
	}
	assetID := p.AssetID
	e.timer = s.clock.AfterFunc(s.cfg.TTL, func() {
		s.expire(assetID, gen)
	})
	s.flags[assetID] = e
	s.raised++

	return true
}

// ObserveTick observes every point of one tick and returns how many flags
// were raised.
func (s *Signal) ObserveTick(points []model.PricePoint) int {
	n := 0
	for _, p := range points {
		if s.Observe(p) {
			n++
		}
	}
	return n
}

// Current returns the live flag direction for an asset.
func (s *Signal) Current(assetID int) (model.Direction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flags[assetID]
	if !ok || !s.clock.Now().Before(e.flag.ExpiresAt) {
		return "", false
	}
	return e.flag.Direction, true
}

// Flag returns the full live flag for an asset.
func (s *Signal) Flag(assetID int) (model.ChangeFlag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flags[assetID]
	if !ok || !s.clock.Now().Before(e.flag.ExpiresAt) {
		return model.ChangeFlag{}, false
	}
	return e.flag, true
}

// Flags returns a snapshot of all live flags keyed by asset id.
func (s *Signal) Flags() map[int]model.Direction {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	result := make(map[int]model.Direction, len(s.flags))
	for id, e := range s.flags {
		if now.Before(e.flag.ExpiresAt) {
			result[id] = e.flag.Direction
		}
	}
	return result
}

// Stop cancels every outstanding expiry, clears all flags and ignores further
// observations until Reset. Stopping twice is a no-op.
func (s *Signal) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	cancelled := 0
	for id, e := range s.flags {
		if e.timer.Stop() {
			cancelled++
		}
		delete(s.flags, id)
	}

	s.logger.Debug("change signal stopped", "cancelled_timers", cancelled)
}

// Reset re-enables a stopped signal.
func (s *Signal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
}

// Stats returns current counters.
func (s *Signal) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Live:    len(s.flags),
		Raised:  s.raised,
		Expired: s.expired,
		Stale:   s.stale,
	}
}

// expire clears the flag for assetID only if gen is still the live generation.
func (s *Signal) expire(assetID int, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.flags[assetID]
	if !ok || e.flag.Generation != gen {
		s.stale++
		return
	}
	delete(s.flags, assetID)
	s.expired++
}
