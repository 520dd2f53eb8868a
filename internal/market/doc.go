// Package market implements the Asset Registry component.
//
// The Asset Registry:
//   - Holds the immutable catalog of tradable assets, ordered by rank
//   - Owns each asset's live price; only the price feed writes it, one full
//     tick at a time
//   - Serves read-only lookups to the flash signal, selection stores and the
//     HTTP boundary
package market
