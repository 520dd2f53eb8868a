// Package selection implements the Selection Store component.
//
// A Store holds one user's picks, at most one per asset, in insertion order,
// plus the stake. Toggling the same predicate twice deselects; toggling a
// different predicate replaces the pick in place and re-captures the entry
// price. Each session owns its own Store.
package selection
