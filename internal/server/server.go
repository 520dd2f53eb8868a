package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/cryptopicks/internal/engine"
	"github.com/rickgao/cryptopicks/internal/session"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int           // Listen port (default: 8080)
	OddsHorizon  time.Duration // Horizon for /assets/{id} odds (default: 7 days)
	WriteTimeout time.Duration // Per-message websocket write deadline (default: 5s)
	PingInterval time.Duration // Websocket keepalive interval (default: 30s)
	PongTimeout  time.Duration // Drop a stream client silent this long (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		OddsHorizon:  7 * 24 * time.Hour,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// Server serves the engine and its sessions.
type Server struct {
	cfg      Config
	engine   *engine.Engine
	sessions *session.Manager
	logger   *slog.Logger
	upgrader websocket.Upgrader
	handler  http.Handler
}

// New creates a Server. Zero config fields take their defaults.
func New(cfg Config, eng *engine.Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.OddsHorizon <= 0 {
		cfg.OddsHorizon = def.OddsHorizon
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = def.PongTimeout
	}

	s := &Server{
		cfg:      cfg,
		engine:   eng,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /assets", s.handleListAssets)
	mux.HandleFunc("GET /assets/{id}", s.handleGetAsset)
	mux.HandleFunc("GET /flags", s.handleFlags)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/picks", s.handleListPicks)
	mux.HandleFunc("POST /sessions/{id}/picks", s.handleTogglePick)
	mux.HandleFunc("DELETE /sessions/{id}/picks/{assetID}", s.handleRemovePick)
	mux.HandleFunc("GET /sessions/{id}/payout", s.handlePayout)
	mux.HandleFunc("PUT /sessions/{id}/stake", s.handleSetStake)

	mux.HandleFunc("GET /stream", s.handleStream)

	return mux
}
