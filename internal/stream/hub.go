package stream

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/rickgao/cryptopicks/internal/model"
)

// ErrClosed is returned by Subscribe after the hub has been closed.
var ErrClosed = errors.New("stream hub closed")

// Config holds hub configuration.
type Config struct {
	BufferSize    int // Initial per-subscriber buffer (default: 16)
	MaxBufferSize int // Per-subscriber ceiling before dropping oldest (default: 1024)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:    16,
		MaxBufferSize: 1024,
	}
}

// Subscription receives every tick published after it was created.
type Subscription struct {
	id  uint64
	hub *Hub
	buf *GrowableBuffer[model.Tick]
}

// ID returns the subscription's hub-unique id.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Next blocks for the next tick. It returns false once the subscription or
// the hub is closed and every buffered tick was read.
func (s *Subscription) Next() (model.Tick, bool) {
	return s.buf.Receive()
}

// TryNext returns the next buffered tick without blocking.
func (s *Subscription) TryNext() (model.Tick, bool) {
	return s.buf.TryReceive()
}

// Stats returns the subscription's buffer counters.
func (s *Subscription) Stats() BufferStats {
	return s.buf.Stats()
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

// Hub fans ticks out to subscribers.
type Hub struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	published int64
}

// NewHub creates an empty Hub.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[uint64]*Subscription),
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}

	h.nextID++
	s := &Subscription{
		id:  h.nextID,
		hub: h,
		buf: NewGrowableBuffer[model.Tick](h.cfg.BufferSize, h.cfg.MaxBufferSize),
	}
	h.subs[s.id] = s

	h.logger.Debug("stream subscribed", "subscription", s.id, "subscribers", len(h.subs))
	return s, nil
}

// Unsubscribe removes s and closes its buffer. Ticks already buffered can
// still be read.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[s.id]
	delete(h.subs, s.id)
	n := len(h.subs)
	h.mu.Unlock()

	s.buf.Close()
	if ok {
		h.logger.Debug("stream unsubscribed", "subscription", s.id, "subscribers", n)
	}
}

// Publish hands tick to every subscriber and returns how many accepted it.
// It never blocks on a subscriber.
func (h *Hub) Publish(tick model.Tick) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0
	}
	h.published++

	n := 0
	for _, s := range h.subs {
		if s.buf.Send(tick) {
			n++
		}
	}
	return n
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Published returns the number of ticks published so far.
func (h *Hub) Published() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.published
}

// Close closes every subscription and rejects new ones. Closing twice is a
// no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, s := range h.subs {
		s.buf.Close()
		delete(h.subs, id)
	}
	h.logger.Debug("stream hub closed", "published", h.published)
}
