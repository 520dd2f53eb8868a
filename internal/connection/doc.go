// Package connection implements a WebSocket client for the engine's tick
// stream.
//
// The client:
//   - Dials the /stream endpoint and decodes snapshot and tick messages
//   - Answers server pings and tracks liveness
//   - Reports a stale or dropped connection on Errors
package connection
