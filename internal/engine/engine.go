// Package engine wires the asset registry, the price feed, the change signal
// and the tick stream into one timeline shared by every session.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/cryptopicks/internal/clock"
	"github.com/rickgao/cryptopicks/internal/feed"
	"github.com/rickgao/cryptopicks/internal/flash"
	"github.com/rickgao/cryptopicks/internal/market"
	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/stream"
)

// ErrStopped is returned by Start once the engine has been stopped.
var ErrStopped = errors.New("engine stopped")

// Config holds engine configuration.
type Config struct {
	Feed   feed.Config
	Flash  flash.Config
	Stream stream.Config
	Seed   uint64 // 0 = nondeterministic
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Feed:   feed.DefaultConfig(),
		Flash:  flash.DefaultConfig(),
		Stream: stream.DefaultConfig(),
	}
}

// Options are the engine's injectable collaborators. Zero values use the
// wall clock, a rand seeded from Config.Seed and slog.Default.
type Options struct {
	Clock  clock.Clock
	Rand   feed.Rand
	Logger *slog.Logger
}

// Engine owns the shared market timeline.
type Engine struct {
	logger *slog.Logger

	registry *market.Registry
	sim      *feed.Simulator
	signal   *flash.Signal
	hub      *stream.Hub
	symbols  map[int]string

	mu      sync.Mutex
	stopped bool
}

// New builds an engine over assets. An empty asset list uses the default
// catalog.
func New(cfg Config, assets []model.Asset, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = feed.NewRand(cfg.Seed)
	}
	if len(assets) == 0 {
		assets = market.DefaultCatalog()
	}

	registry, err := market.NewRegistry(assets, logger.With("component", "market"))
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	e := &Engine{
		logger:   logger,
		registry: registry,
		signal:   flash.New(cfg.Flash, clk, logger.With("component", "flash")),
		hub:      stream.NewHub(cfg.Stream, logger.With("component", "stream")),
		symbols:  make(map[int]string, len(assets)),
	}
	for _, a := range registry.List() {
		e.symbols[a.ID] = a.Symbol
	}
	e.sim = feed.New(cfg.Feed, registry, clk, rnd, feed.TickHandlerFunc(e.handleTick), logger.With("component", "feed"))

	return e, nil
}

// Start begins ticking.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrStopped
	}
	return e.sim.Start(ctx)
}

// Stop halts the feed, cancels every pending flag expiry and ends all tick
// streams. The engine cannot be restarted. Stopping twice is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return nil
	}

	if err := e.sim.Stop(ctx); err != nil {
		return fmt.Errorf("stop price feed: %w", err)
	}
	e.signal.Stop()
	e.hub.Close()
	e.stopped = true

	e.logger.Info("engine stopped", "ticks", e.sim.Ticks(), "published", e.hub.Published())
	return nil
}

// Step runs one tick synchronously, whether or not the loop is running.
func (e *Engine) Step() error {
	return e.sim.Step()
}

// Running reports whether the feed is ticking.
func (e *Engine) Running() bool {
	return e.sim.Running()
}

// Ticks returns the number of ticks applied.
func (e *Engine) Ticks() int64 {
	return e.sim.Ticks()
}

// Registry returns the asset registry.
func (e *Engine) Registry() *market.Registry {
	return e.registry
}

// Signal returns the change signal.
func (e *Engine) Signal() *flash.Signal {
	return e.signal
}

// Hub returns the tick stream hub.
func (e *Engine) Hub() *stream.Hub {
	return e.hub
}

// Snapshot returns the current catalog prices and live flags as a tick
// stamped with the latest sequence number.
func (e *Engine) Snapshot() model.Tick {
	assets := e.registry.List()
	flags := e.signal.Flags()

	prices := make([]model.TickPrice, len(assets))
	for i, a := range assets {
		prices[i] = model.TickPrice{
			AssetID: a.ID,
			Symbol:  a.Symbol,
			Price:   a.BasePrice,
			Flash:   string(flags[a.ID]),
		}
	}
	return model.Tick{Seq: e.sim.Ticks(), Prices: prices}
}

// handleTick runs on the feed goroutine after every applied tick.
func (e *Engine) handleTick(points []model.PricePoint) {
	raised := e.signal.ObserveTick(points)
	flags := e.signal.Flags()

	tick := model.Tick{
		Seq:    e.sim.Ticks(),
		Points: points,
		Prices: make([]model.TickPrice, len(points)),
	}
	if len(points) > 0 {
		tick.Timestamp = points[0].Timestamp
	}
	for i, p := range points {
		tick.Prices[i] = model.TickPrice{
			AssetID: p.AssetID,
			Symbol:  e.symbols[p.AssetID],
			Price:   p.Price,
			Flash:   string(flags[p.AssetID]),
		}
	}

	n := e.hub.Publish(tick)
	e.logger.Debug("tick published", "seq", tick.Seq, "flags", raised, "subscribers", n)
}
