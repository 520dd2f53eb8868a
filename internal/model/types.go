package model

import "time"

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// Asset represents a tradable asset and its live price.
type Asset struct {
	ID          int     `json:"id" yaml:"id"`                     // Stable catalog id
	Symbol      string  `json:"symbol" yaml:"symbol"`             // Ticker symbol (e.g., "BTC")
	Name        string  `json:"name" yaml:"name"`                 // Display name
	Rank        int     `json:"rank" yaml:"rank"`                 // Positive, unique; catalog order
	BasePrice   float64 `json:"base_price" yaml:"base_price"`     // Live price, written only by the feed
	Line        float64 `json:"line" yaml:"line"`                 // Reference price for Over/Under
	ImpliedMove float64 `json:"implied_move" yaml:"implied_move"` // Expected move (%)
	IV          float64 `json:"iv" yaml:"iv"`                     // Implied volatility (%)
	Volume24h   float64 `json:"volume_24h" yaml:"volume_24h"`     // 24-hour volume (USD)
}

// -----------------------------------------------------------------------------
// Feed Types
// -----------------------------------------------------------------------------

// PricePoint is one asset's price produced by a single tick.
type PricePoint struct {
	AssetID   int
	Price     float64   // New price
	Previous  float64   // Price before this tick
	Timestamp time.Time // Tick time
}

// Tick is a full-catalog update, published after the registry applied it.
type Tick struct {
	Seq       int64        `json:"seq"`
	Timestamp time.Time    `json:"timestamp"`
	Points    []PricePoint `json:"-"`
	Prices    []TickPrice  `json:"prices"`
}

// TickPrice is the wire form of a PricePoint with its flag, if any.
type TickPrice struct {
	AssetID int     `json:"asset_id"`
	Symbol  string  `json:"symbol"`
	Price   float64 `json:"price"`
	Flash   string  `json:"flash,omitempty"`
}

// Direction is the sign of a price change.
type Direction string

const (
	DirUp   Direction = "up"
	DirDown Direction = "down"
)

func (d Direction) String() string {
	return string(d)
}

// ChangeFlag is a transient direction marker for one asset.
type ChangeFlag struct {
	AssetID    int
	Direction  Direction
	RaisedAt   time.Time
	ExpiresAt  time.Time
	Generation uint64 // Bumped every time a flag is raised for the asset
}

// -----------------------------------------------------------------------------
// Selection Types
// -----------------------------------------------------------------------------

// Pick is a user's Over/Under prediction on one asset.
type Pick struct {
	AssetID    int     `json:"asset_id"`
	Symbol     string  `json:"symbol"`
	Predicate  string  `json:"predicate"`        // e.g. "Over 4x"
	EntryPrice float64 `json:"entry_price"`      // Asset price when the pick was made
	Line       float64 `json:"line"`             // Asset line when the pick was made
	Multiplier float64 `json:"multiplier"`       // Resolved from Predicate
	Target     float64 `json:"target,omitempty"` // Price the predicate needs, from EntryPrice
}

// PayoutResult is the bet-slip summary for a selection and stake.
type PayoutResult struct {
	Stake           float64 `json:"stake"`
	TotalMultiplier float64 `json:"total_multiplier"`
	Payout          float64 `json:"payout"`
}
