package market

import (
	"sort"
	"strings"
	"sync"

	"github.com/rickgao/cryptopicks/internal/model"
)

// registryState holds the thread-safe asset cache.
type registryState struct {
	mu sync.RWMutex

	// All assets indexed by id.
	assets map[int]*model.Asset

	// Upper-cased symbol to id.
	symbols map[string]int

	// Ids ordered by rank ascending. Fixed after construction.
	order []int
}

func newState() *registryState {
	return &registryState{
		assets:  make(map[int]*model.Asset),
		symbols: make(map[string]int),
	}
}

// insertLocked adds an asset and keeps order sorted by rank (caller must hold
// write lock or own the state exclusively).
func (s *registryState) insertLocked(a model.Asset) {
	aCopy := a
	s.assets[a.ID] = &aCopy
	s.symbols[strings.ToUpper(a.Symbol)] = a.ID

	s.order = append(s.order, a.ID)
	sort.SliceStable(s.order, func(i, j int) bool {
		return s.assets[s.order[i]].Rank < s.assets[s.order[j]].Rank
	})
}

// get returns an asset by id (read-locked).
func (s *registryState) get(id int) (model.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assets[id]
	if !ok {
		return model.Asset{}, false
	}
	return *a, true
}

// getBySymbol returns an asset by upper-cased symbol (read-locked).
func (s *registryState) getBySymbol(symbol string) (model.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.symbols[symbol]
	if !ok {
		return model.Asset{}, false
	}
	return *s.assets[id], true
}

// list returns a copy of all assets in rank order (read-locked).
func (s *registryState) list() []model.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Asset, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, *s.assets[id])
	}
	return result
}

// prices returns live prices keyed by id (read-locked).
func (s *registryState) prices() map[int]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int]float64, len(s.assets))
	for id, a := range s.assets {
		result[id] = a.BasePrice
	}
	return result
}

func (s *registryState) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
