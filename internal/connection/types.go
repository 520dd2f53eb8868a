package connection

import (
	"errors"
	"time"

	"github.com/rickgao/cryptopicks/internal/model"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Message types sent by the stream endpoint.
const (
	TypeSnapshot = "snapshot"
	TypeTick     = "tick"
)

// Message is one decoded stream message.
type Message struct {
	Type       string     `json:"type"`
	Tick       model.Tick `json:"tick"`
	ReceivedAt time.Time  `json:"-"` // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a stream client.
type ClientConfig struct {
	URL          string        // Stream URL (e.g., ws://localhost:8080/stream)
	PingTimeout  time.Duration // Max time without ping or pong before the connection is stale
	PingInterval time.Duration // Client keepalive ping interval
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		PingInterval: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   256,
	}
}
