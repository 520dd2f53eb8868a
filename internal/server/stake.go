package server

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/selection"
)

// maxStake bounds a single stake.
var maxStake = decimal.New(1, 12)

// parseStake parses a user-entered stake. Anything that is not a positive,
// finite decimal fails with selection.ErrInvalidStake.
func parseStake(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", selection.ErrInvalidStake)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", selection.ErrInvalidStake, raw)
	}
	return checkStake(d)
}

func checkStake(d decimal.Decimal) (float64, error) {
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: got %s", selection.ErrInvalidStake, d.String())
	}
	if d.GreaterThan(maxStake) {
		return 0, fmt.Errorf("%w: %s exceeds %s", selection.ErrInvalidStake, d.String(), maxStake.String())
	}
	v := d.InexactFloat64()
	if v == 0 || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s is out of range", selection.ErrInvalidStake, d.String())
	}
	return v, nil
}

// checkPayout rejects a result that cannot be represented in a response.
func checkPayout(res model.PayoutResult) error {
	if math.IsInf(res.Payout, 0) || math.IsNaN(res.Payout) {
		return fmt.Errorf("%w: payout for stake %v overflows", selection.ErrInvalidStake, res.Stake)
	}
	return nil
}

// money renders an amount with two decimals.
func money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
