package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/cryptopicks/internal/config"
	"github.com/rickgao/cryptopicks/internal/engine"
	"github.com/rickgao/cryptopicks/internal/feed"
	"github.com/rickgao/cryptopicks/internal/flash"
	"github.com/rickgao/cryptopicks/internal/server"
	"github.com/rickgao/cryptopicks/internal/session"
	"github.com/rickgao/cryptopicks/internal/stream"
	"github.com/rickgao/cryptopicks/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	envPath := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	// .env is optional; its values feed ${VAR} expansion in the config file.
	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting engine",
		"version", version.String(),
		"instance_id", cfg.Instance.ID,
		"config", *configPath,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("engine failed", "error", err)
		os.Exit(1)
	}
	logger.Info("engine exited")
}

func loadConfig(path string) (*config.EngineConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

func run(cfg *config.EngineConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	eng, err := engine.New(engine.Config{
		Feed:  feed.Config{Interval: cfg.Feed.Interval},
		Flash: flash.Config{TTL: cfg.Flash.TTL},
		Stream: stream.Config{
			BufferSize:    cfg.Server.StreamBuffer,
			MaxBufferSize: cfg.Server.StreamMaxBuffer,
		},
		Seed: cfg.Feed.Seed,
	}, cfg.Assets, engine.Options{Logger: logger})
	if err != nil {
		return err
	}

	sessions := session.NewManager(eng.Registry(), cfg.Selection.DefaultStake, logger.With("component", "session"))

	srvCfg := server.DefaultConfig()
	srvCfg.Port = cfg.Server.Port
	srvCfg.OddsHorizon = cfg.Odds.Horizon
	srv := server.New(srvCfg, eng, sessions, logger.With("component", "server"))

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return eng.Stop(shutdownCtx)
	})

	logger.Info("engine running",
		"assets", eng.Registry().Len(),
		"interval", cfg.Feed.Interval,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	return g.Wait()
}
