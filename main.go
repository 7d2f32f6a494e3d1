package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fastpost/internal/app"
	"fastpost/internal/config"
	"fastpost/internal/models"
	"fastpost/pkg/logger"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Application ---
	a, err := app.New(ctx, cfg, zl, app.Options{})
	if err != nil {
		zl.Fatal("failed to build application", zap.Error(err))
	}
	defer a.Close()

	// --- Listing event consumer ---
	if a.MQ != nil {
		if err := a.MQ.ConsumeListingEvents(logListingEvent(zl)); err != nil {
			zl.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
	}

	// --- HTTP server ---
	go func() {
		zl.Info("starting server", zap.String("port", cfg.AppPort), zap.String("store", cfg.StoreDriver))
		if err := a.Fiber.Listen(cfg.AppPort); err != nil {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down server")
	if err := a.Fiber.Shutdown(); err != nil {
		zl.Error("error during fiber shutdown", zap.Error(err))
	}
	zl.Info("server gracefully stopped")
}

// logListingEvent returns a consumer handler that records each listing event.
func logListingEvent(zl *zap.Logger) func(models.ListingEvent) error {
	return func(event models.ListingEvent) error {
		zl.Info("listing event received",
			zap.String("type", event.Type),
			zap.String("listing_id", event.ListingID),
			zap.String("owner_id", event.OwnerID),
			zap.String("category", string(event.Category)),
			zap.String("status", string(event.Status)),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
