// Package feed implements the Price Feed Simulator component.
//
// The Price Feed Simulator:
//   - Ticks on a fixed interval (default: 1s) from an injected clock
//   - Moves every asset by a volatility-weighted symmetric random step
//   - Applies the whole catalog to the registry in one atomic update
//   - Hands the tick's price points to a TickHandler before the next tick starts
//
// A production feed replaces the random step with a real subscription while
// keeping the same TickHandler contract.
package feed
