// Package payout computes the bet-slip summary for a set of picks.
package payout

import "github.com/rickgao/cryptopicks/internal/model"

// Compute returns the product of the picks' multipliers and stake times that
// product. An empty selection has multiplier 1. The stake is used as given;
// callers validate it first.
func Compute(picks []model.Pick, stake float64) model.PayoutResult {
	total := 1.0
	for _, p := range picks {
		total *= p.Multiplier
	}
	return model.PayoutResult{
		Stake:           stake,
		TotalMultiplier: total,
		Payout:          stake * total,
	}
}
