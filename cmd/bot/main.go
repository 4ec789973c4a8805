package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saronqw/uninews-bot/internal/adapters/config"
	"github.com/saronqw/uninews-bot/internal/adapters/telegram"
	"github.com/saronqw/uninews-bot/internal/adapters/upstream"
	"github.com/saronqw/uninews-bot/internal/dialog"
	"github.com/saronqw/uninews-bot/internal/health"
	"github.com/saronqw/uninews-bot/pkg/logger"
)

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("University News Bot starting...",
		zap.String("news_url", cfg.Upstream.NewsURL),
	)

	// Wire the core: gateway -> dialog controller -> transport
	gateway := upstream.NewClient(&cfg.Upstream)
	sessions := dialog.NewStore()
	controller := dialog.NewController(sessions, gateway, cfg.Charts.URL)

	bot, err := telegram.NewBot(&cfg.Telegram, controller)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	defer bot.Close()

	// Health probes
	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer = health.NewServer(cfg.Health.Port, gateway, sessions)
		go func() {
			if err := healthServer.Start(); err != nil {
				logger.Error("health server error", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := bot.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("telegram bot error", zap.Error(err))
		}
	}()

	if healthServer != nil {
		healthServer.SetReady(true)
	}

	logger.Info("📱 bot is up, waiting for users")

	// Keep service running
	<-ctx.Done()
	logger.Info("shutting down gracefully...")

	if healthServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Warn("health server shutdown failed", zap.Error(err))
		}
	}

	return nil
}
