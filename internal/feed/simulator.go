package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/cryptopicks/internal/clock"
	"github.com/rickgao/cryptopicks/internal/model"
)

// ErrAlreadyRunning is returned by Start when the tick loop is live.
var ErrAlreadyRunning = errors.New("price feed already running")

// Catalog is the asset store the simulator reads and writes.
type Catalog interface {
	List() []model.Asset
	Apply(points []model.PricePoint) error
}

// TickHandler receives every applied tick.
type TickHandler interface {
	HandleTick(points []model.PricePoint)
}

// TickHandlerFunc is a function adapter for TickHandler.
type TickHandlerFunc func([]model.PricePoint)

func (f TickHandlerFunc) HandleTick(points []model.PricePoint) {
	f(points)
}

// Config holds simulator configuration.
type Config struct {
	Interval time.Duration // Tick interval (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
	}
}

// Simulator periodically moves every asset's price.
type Simulator struct {
	cfg     Config
	catalog Catalog
	clock   clock.Clock
	rand    Rand
	handler TickHandler
	logger  *slog.Logger

	// Serializes ticks so a tick never overlaps the previous one.
	stepMu sync.Mutex
	ticks  atomic.Int64

	// Lifecycle
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a new Simulator. A nil clock uses the wall clock; a nil rand
// uses the runtime's global source.
func New(cfg Config, catalog Catalog, clk clock.Clock, rnd Rand, handler TickHandler, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if rnd == nil {
		rnd = NewRand(0)
	}
	return &Simulator{
		cfg:     cfg,
		catalog: catalog,
		clock:   clk,
		rand:    rnd,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the tick loop. The first tick fires one interval after Start.
func (s *Simulator) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := s.clock.NewTicker(s.cfg.Interval)

	s.running = true
	s.cancel = cancel
	s.done = done

	go s.run(ctx, ticker, done)

	s.logger.Info("price feed started", "interval", s.cfg.Interval)
	return nil
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
// Stopping a stopped simulator is a no-op.
func (s *Simulator) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("price feed stopped", "ticks", s.ticks.Load())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the tick loop is live.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks returns the number of ticks applied so far.
func (s *Simulator) Ticks() int64 {
	return s.ticks.Load()
}

// run is the main tick loop.
func (s *Simulator) run(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// A stop that raced the tick wins.
			if ctx.Err() != nil {
				return
			}
			if err := s.Step(); err != nil {
				s.logger.Error("tick failed", "err", err)
			}
		}
	}
}

// Step runs one full tick synchronously: compute every new price, apply them
// all at once, then notify the handler.
func (s *Simulator) Step() error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	assets := s.catalog.List()
	now := s.clock.Now()

	points := make([]model.PricePoint, len(assets))
	for i, a := range assets {
		points[i] = model.PricePoint{
			AssetID:   a.ID,
			Price:     NextPrice(a.BasePrice, a.IV, s.rand.Float64()),
			Previous:  a.BasePrice,
			Timestamp: now,
		}
	}

	if err := s.catalog.Apply(points); err != nil {
		return err
	}
	n := s.ticks.Add(1)

	if s.handler != nil {
		s.handler.HandleTick(points)
	}

	s.logger.Debug("tick applied", "seq", n, "assets", len(points))
	return nil
}

// NextPrice applies one symmetric random step to price. u is uniform in
// [0, 1); iv is annualised volatility in percent. The step is bounded by
// price*(iv/100)*0.01 in either direction. Non-positive iv leaves the price
// unchanged.
func NextPrice(price, iv, u float64) float64 {
	if iv <= 0 {
		return price
	}
	change := (u - 0.5) * 2 * (iv / 100) * 0.01
	next := price * (1 + change)
	if next <= 0 {
		return price
	}
	return next
}
