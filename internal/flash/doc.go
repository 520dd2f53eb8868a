// Package flash implements the Change Signal component.
//
// Every price point that moves an asset raises an Up or Down flag that expires
// after a fixed TTL (default: 500ms). A newer flag for the same asset replaces
// the old one and restarts the TTL. Each flag carries a generation number and
// an expiry only clears the flag it was scheduled for, so a late timer can
// never wipe a newer flag.
//
// Flags are advisory; nothing in settlement or payout reads them.
package flash
