package selection

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rickgao/cryptopicks/internal/model"
)

// DefaultStake is the stake a new store starts with.
const DefaultStake = 10.0

// ErrInvalidStake is returned by SetStake for non-positive or non-finite values.
var ErrInvalidStake = errors.New("stake must be a positive finite number")

// AssetLookup resolves asset ids to live assets.
type AssetLookup interface {
	Get(id int) (model.Asset, error)
}

// Outcome describes what Toggle did.
type Outcome string

const (
	Added    Outcome = "added"
	Removed  Outcome = "removed"
	Replaced Outcome = "replaced"
)

// Store holds one user's picks and stake.
type Store struct {
	assets AssetLookup

	mu    sync.Mutex
	picks []model.Pick // Insertion order
	stake float64
}

// NewStore creates an empty Store reading live prices from assets. A stake
// that SetStake would reject falls back to DefaultStake.
func NewStore(assets AssetLookup, stake float64) *Store {
	if !validStake(stake) {
		stake = DefaultStake
	}
	return &Store{
		assets: assets,
		stake:  stake,
	}
}

// Toggle adds, deselects or replaces the pick for assetID. The entry price is
// the asset's live price at the moment of the call, for both new and replaced
// picks. Predicates are stored in canonical form, so "over 2x" and "Over 2x"
// name the same pick. Unknown ids fail with the lookup's not-found error and
// change nothing.
func (s *Store) Toggle(assetID int, predicate string) (Outcome, error) {
	predicate = Canonical(predicate)

	asset, err := s.assets.Get(assetID)
	if err != nil {
		return "", fmt.Errorf("toggle pick: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pick := model.Pick{
		AssetID:    asset.ID,
		Symbol:     asset.Symbol,
		Predicate:  predicate,
		EntryPrice: asset.BasePrice,
		Line:       asset.Line,
		Multiplier: Multiplier(predicate),
	}
	pick.Target, _ = Target(asset, predicate)

	i := s.indexLocked(assetID)
	switch {
	case i < 0:
		s.picks = append(s.picks, pick)
		return Added, nil
	case strings.EqualFold(s.picks[i].Predicate, predicate):
		s.picks = append(s.picks[:i], s.picks[i+1:]...)
		return Removed, nil
	default:
		s.picks[i] = pick
		return Replaced, nil
	}
}

// Remove deletes the pick for assetID if there is one. Unknown ids fail with
// the lookup's not-found error.
func (s *Store) Remove(assetID int) error {
	if _, err := s.assets.Get(assetID); err != nil {
		return fmt.Errorf("remove pick: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(assetID); i >= 0 {
		s.picks = append(s.picks[:i], s.picks[i+1:]...)
	}
	return nil
}

// Get returns the pick for assetID, if any.
func (s *Store) Get(assetID int) (model.Pick, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(assetID); i >= 0 {
		return s.picks[i], true
	}
	return model.Pick{}, false
}

// List returns a copy of the picks in insertion order.
func (s *Store) List() []model.Pick {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]model.Pick, len(s.picks))
	copy(result, s.picks)
	return result
}

// Len returns the number of picks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.picks)
}

// Clear removes every pick. The stake is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = nil
}

// Stake returns the current stake.
func (s *Store) Stake() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stake
}

// SetStake sets the stake. Non-positive, NaN and infinite values are rejected.
func (s *Store) SetStake(v float64) error {
	if !validStake(v) {
		return fmt.Errorf("%w: got %v", ErrInvalidStake, v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stake = v
	return nil
}

// indexLocked returns the position of assetID's pick or -1 (caller must hold mu).
func (s *Store) indexLocked(assetID int) int {
	for i, p := range s.picks {
		if p.AssetID == assetID {
			return i
		}
	}
	return -1
}

func validStake(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
