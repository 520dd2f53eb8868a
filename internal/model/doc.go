// Package model defines shared data types used across the cryptopicks engine.
//
// Conventions:
//   - Prices: float64 in quote currency (USD), always > 0 for live assets
//   - Timestamps: time.Time from the injected clock
//   - IDs: int asset ids (stable catalog ids), string session ids (uuid)
package model
