// streamtest connects to a running engine's tick stream and prints prices and
// flash markers to the console.
// Usage: go run ./cmd/streamtest --url ws://localhost:8080/stream
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/cryptopicks/internal/connection"
	"github.com/rickgao/cryptopicks/internal/market"
	"github.com/rickgao/cryptopicks/internal/model"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/stream", "engine stream URL")
	symbols := flag.String("symbols", "", "comma-separated symbols to print (all when empty)")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := connection.DefaultClientConfig()
	cfg.URL = *url
	client := connection.NewClient(cfg, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "url", *url, "error", err)
		os.Exit(1)
	}
	defer client.Close()

	filter := parseSymbols(*symbols)
	logger.Info("streaming started - press Ctrl+C to stop", "url", *url)

	var received int
	stats := time.NewTicker(10 * time.Second)
	defer stats.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutdown complete", "messages", received)
			return
		case err := <-client.Errors():
			logger.Error("stream ended", "error", err, "messages", received)
			os.Exit(1)
		case <-stats.C:
			logger.Info("stats", "messages", received, "connected", client.IsConnected())
		case msg := <-client.Messages():
			received++
			if *verbose {
				data, _ := json.MarshalIndent(msg, "", "  ")
				fmt.Printf("[%s] %s\n", strings.ToUpper(msg.Type), data)
				continue
			}
			printTick(msg, filter)
		}
	}
}

func printTick(msg connection.Message, filter map[string]bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] seq=%d", strings.ToUpper(msg.Type), msg.Tick.Seq)
	for _, p := range msg.Tick.Prices {
		if len(filter) > 0 && !filter[p.Symbol] {
			continue
		}
		fmt.Fprintf(&b, " %s=%s%s", p.Symbol, market.FormatPrice(p.Price), arrow(p.Flash))
	}
	fmt.Println(b.String())
}

func arrow(flash string) string {
	switch model.Direction(flash) {
	case model.DirUp:
		return "↑"
	case model.DirDown:
		return "↓"
	default:
		return ""
	}
}

func parseSymbols(s string) map[string]bool {
	out := make(map[string]bool)
	for _, sym := range strings.Split(s, ",") {
		if sym = strings.TrimSpace(sym); sym != "" {
			out[strings.ToUpper(sym)] = true
		}
	}
	return out
}
