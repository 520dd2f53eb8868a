// Package odds prices Over/Under lines with Black-Scholes.
//
// Probabilities come from the lognormal model: the chance an asset finishes
// above or below a line at a horizon, the chance it touches the line before
// then, and the implied volatility that reproduces an observed option price.
// American-style lines are derived from probabilities for display.
//
// Results are advisory. Nothing in the engine settles picks against them.
package odds
