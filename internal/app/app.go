package app

import (
	"context"
	"fmt"
	"time"

	"fastpost/internal/config"
	"fastpost/internal/handlers"
	"fastpost/internal/middleware"
	"fastpost/internal/repositories"
	"fastpost/internal/services"
	"fastpost/pkg/gemini"
	"fastpost/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// App is the wired HTTP application with the resources it owns.
type App struct {
	Fiber    *fiber.App
	MQ       *rabbitmq.Client
	Sessions *services.SessionService
	Listings *services.ListingService

	db  *gorm.DB
	log *zap.Logger
}

// Options tweak how New builds the application.
type Options struct {
	// Generator replaces the Gemini client built from the config.
	Generator services.TextGenerator
	// DisableAccessLog turns off the fiber request logger.
	DisableAccessLog bool
}

// New builds the repositories, services and routes described by cfg.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*App, error) {
	a := &App{log: log}

	listingRepo, userRepo, err := a.openStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := Seed(userRepo, listingRepo, time.Now()); err != nil {
			a.Close()
			return nil, err
		}
		log.Info("seeded demo data", zap.String("store", cfg.StoreDriver))
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = mq
		publisher = mq
	}

	generator := opts.Generator
	if generator == nil && cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			log.Warn("gemini client unavailable, assist will use fallbacks", zap.Error(err))
		} else {
			log.Info("gemini client ready", zap.String("model", client.Model()))
			generator = client
		}
	}
	if generator == nil {
		log.Warn("no gemini api key configured, assist will use fallbacks")
	}

	listingService := services.NewListingService(listingRepo, publisher, log, services.ListingOptions{
		PlaceholderImage: cfg.PlaceholderImage,
		VehicleFee:       cfg.VehicleFee,
	})
	moderationService := services.NewModerationService(listingRepo, publisher, log)
	assistService := services.NewAssistService(generator, cfg.AssistTimeout, log)
	draftService := services.NewDraftService(assistService, listingService, log)
	dashboardService := services.NewDashboardService(listingService, assistService, log)
	shellService := services.NewShellService(draftService.Invalidate)
	sessionService := services.NewSessionService(userRepo, cfg.JWTSecret, cfg.SessionTTL, log)

	a.Sessions = sessionService
	a.Listings = listingService

	app := fiber.New(fiber.Config{
		AppName:      "fastpost",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.AssistTimeout,
	})
	app.Use(recover.New())
	if !opts.DisableAccessLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"store":    cfg.StoreDriver,
			"rabbitmq": a.MQ != nil,
			"assist":   generator != nil,
		})
	})

	apiV1 := app.Group("/api/v1")

	sessionHandler := handlers.NewSessionHandler(sessionService, log)
	sessionHandler.RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(sessionService, log))
	sessionHandler.RegisterProtectedRoutes(protectedRoutes)
	handlers.NewListingHandler(listingService, log).RegisterRoutes(protectedRoutes)
	handlers.NewDraftHandler(draftService, shellService, log).RegisterRoutes(protectedRoutes)
	handlers.NewAssistHandler(assistService, log).RegisterRoutes(protectedRoutes)
	handlers.NewShellHandler(shellService, listingService, log).RegisterRoutes(protectedRoutes)
	handlers.NewModerationHandler(moderationService, listingService, dashboardService, log).RegisterRoutes(protectedRoutes)

	a.Fiber = app
	return a, nil
}

func (a *App) openStore(cfg config.Config) (repositories.ListingRepository, repositories.UserRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := repositories.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		a.db = db
		return repositories.NewGORMListingRepository(db), repositories.NewGORMUserRepository(db), nil
	case config.StoreMemory:
		return repositories.NewMemoryListingRepository(), repositories.NewMemoryUserRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Close releases the broker connection and the database.
func (a *App) Close() {
	if a.MQ != nil {
		if err := a.MQ.Close(); err != nil {
			a.log.Warn("error closing RabbitMQ client", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Warn("error closing database", zap.Error(err))
			}
		}
	}
}
