package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/cryptopicks/internal/model"
	"github.com/rickgao/cryptopicks/internal/stream"
)

// Stream message types.
const (
	msgSnapshot = "snapshot"
	msgTick     = "tick"
)

// streamMessage is the envelope written to stream clients.
type streamMessage struct {
	Type string     `json:"type"`
	Tick model.Tick `json:"tick"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub, err := s.engine.Hub().Subscribe()
	if err != nil {
		closeStream(conn, websocket.CloseGoingAway, "engine stopped")
		return
	}
	defer sub.Close()

	sc := &streamConn{
		cfg:    s.cfg,
		conn:   conn,
		sub:    sub,
		done:   make(chan struct{}),
		server: s,
	}
	sc.run(s.engine.Snapshot())
}

// streamConn pumps ticks from one subscription to one websocket.
type streamConn struct {
	cfg    Config
	conn   *websocket.Conn
	sub    *stream.Subscription
	server *Server

	done     chan struct{}
	doneOnce sync.Once
}

func (c *streamConn) run(snapshot model.Tick) {
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		return nil
	})

	go c.readLoop()
	go c.heartbeatLoop()
	defer c.stop()

	log := c.server.logger.With("subscription", c.sub.ID())
	log.Debug("stream client connected")

	if err := c.write(msgSnapshot, snapshot); err != nil {
		log.Debug("stream write failed", "error", err)
		return
	}

	for {
		tick, ok := c.sub.Next()
		if !ok {
			break
		}
		if err := c.write(msgTick, tick); err != nil {
			log.Debug("stream write failed", "error", err)
			return
		}
	}

	// The subscription ended: either the hub closed or the client went away.
	select {
	case <-c.done:
	default:
		closeStream(c.conn, websocket.CloseGoingAway, "engine stopped")
	}
	log.Debug("stream client disconnected", "stats", c.sub.Stats())
}

func (c *streamConn) write(typ string, tick model.Tick) error {
	data, err := json.Marshal(streamMessage{Type: typ, Tick: tick})
	if err != nil {
		return err
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop discards client messages so control frames are processed, and
// ends the subscription when the client disconnects.
func (c *streamConn) readLoop() {
	defer c.stop()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// heartbeatLoop pings the client so a dead peer trips the read deadline.
func (c *streamConn) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.server.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}

func (c *streamConn) stop() {
	c.doneOnce.Do(func() {
		close(c.done)
		c.sub.Close()
	})
}

func closeStream(conn *websocket.Conn, code int, reason string) {
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second),
	)
}
