// Package session keeps one independent pick selection per user session.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/payout"
	"github.com/rickgao/cryptopicks/internal/selection"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Session is one user's selection against the shared feed.
type Session struct {
	ID        string
	CreatedAt time.Time

	store *selection.Store
}

// Store returns the session's selection store.
func (s *Session) Store() *selection.Store {
	return s.store
}

// Payout computes the payout for the session's picks at its current stake.
func (s *Session) Payout() model.PayoutResult {
	return payout.Compute(s.store.List(), s.store.Stake())
}

// Manager owns all live sessions.
type Manager struct {
	assets       selection.AssetLookup
	defaultStake float64
	now          func() time.Time
	logger       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions resolve assets through assets.
// A non-positive defaultStake falls back to selection.DefaultStake.
func NewManager(assets selection.AssetLookup, defaultStake float64, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if !(defaultStake > 0) {
		defaultStake = selection.DefaultStake
	}
	return &Manager{
		assets:       assets,
		defaultStake: defaultStake,
		now:          time.Now,
		logger:       logger,
		sessions:     make(map[string]*Session),
	}
}

// Create starts a new session with an empty selection.
func (m *Manager) Create() *Session {
	store := selection.NewStore(m.assets, m.defaultStake)

	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now(),
		store:     store,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	m.logger.Debug("session created", "session", s.ID, "sessions", n)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete removes a session and its picks.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)

	m.logger.Debug("session deleted", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
