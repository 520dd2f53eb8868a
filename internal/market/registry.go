package market

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/rickgao/cryptopicks/internal/model"
)

// Errors
var (
	ErrNotFound     = errors.New("asset not found")
	ErrInvalidAsset = errors.New("invalid asset")
)

// Registry is the asset catalog plus live prices.
type Registry struct {
	logger *slog.Logger
	state  *registryState
}

// NewRegistry validates the catalog and builds a Registry.
func NewRegistry(assets []model.Asset, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := newState()
	ranks := make(map[int]int, len(assets))
	for _, a := range assets {
		if err := validateAsset(a); err != nil {
			return nil, err
		}
		if _, dup := s.assets[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidAsset, a.ID)
		}
		if other, dup := ranks[a.Rank]; dup {
			return nil, fmt.Errorf("%w: rank %d shared by ids %d and %d", ErrInvalidAsset, a.Rank, other, a.ID)
		}
		ranks[a.Rank] = a.ID
		s.insertLocked(a)
	}

	logger.Info("asset registry loaded", "assets", len(assets))

	return &Registry{logger: logger, state: s}, nil
}

// List returns all assets ordered by rank ascending.
func (r *Registry) List() []model.Asset {
	return r.state.list()
}

// Get returns an asset by id.
func (r *Registry) Get(id int) (model.Asset, error) {
	a, ok := r.state.get(id)
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return a, nil
}

// GetBySymbol returns an asset by symbol, case-insensitively.
func (r *Registry) GetBySymbol(symbol string) (model.Asset, error) {
	a, ok := r.state.getBySymbol(strings.ToUpper(symbol))
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: symbol %q", ErrNotFound, symbol)
	}
	return a, nil
}

// Prices returns a snapshot of live prices keyed by asset id.
func (r *Registry) Prices() map[int]float64 {
	return r.state.prices()
}

// Len returns the number of assets in the catalog.
func (r *Registry) Len() int {
	return r.state.len()
}

// Apply writes one tick's prices. Either every point is applied or none is.
func (r *Registry) Apply(points []model.PricePoint) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	for _, p := range points {
		if _, ok := r.state.assets[p.AssetID]; !ok {
			return fmt.Errorf("apply tick: %w: id %d", ErrNotFound, p.AssetID)
		}
		if !isPositive(p.Price) {
			return fmt.Errorf("apply tick: %w: id %d price %v", ErrInvalidAsset, p.AssetID, p.Price)
		}
	}

	for _, p := range points {
		r.state.assets[p.AssetID].BasePrice = p.Price
	}
	return nil
}

func validateAsset(a model.Asset) error {
	switch {
	case a.Rank < 1:
		return fmt.Errorf("%w: id %d rank must be >= 1, got %d", ErrInvalidAsset, a.ID, a.Rank)
	case strings.TrimSpace(a.Symbol) == "":
		return fmt.Errorf("%w: id %d symbol is required", ErrInvalidAsset, a.ID)
	case !isPositive(a.BasePrice):
		return fmt.Errorf("%w: id %d base_price must be > 0", ErrInvalidAsset, a.ID)
	case !isPositive(a.Line):
		return fmt.Errorf("%w: id %d line must be > 0", ErrInvalidAsset, a.ID)
	case !isNonNegative(a.IV), !isNonNegative(a.ImpliedMove), !isNonNegative(a.Volume24h):
		return fmt.Errorf("%w: id %d iv, implied_move and volume_24h must be >= 0", ErrInvalidAsset, a.ID)
	}
	return nil
}

func isPositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}

func isNonNegative(f float64) bool {
	return f >= 0 && !math.IsInf(f, 0)
}
