package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/slopefinder/slopefinder/internal/api/http"
	"github.com/slopefinder/slopefinder/internal/config"
	"github.com/slopefinder/slopefinder/internal/geocode"
	"github.com/slopefinder/slopefinder/internal/resorts"
	"github.com/slopefinder/slopefinder/internal/scheduler"
	"github.com/slopefinder/slopefinder/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	resortClient := resorts.NewClient(httpClient, cfg.ResortAPIBaseURL)
	geocoder := geocode.NewClient(httpClient, cfg.GeocodeBaseURL, cfg.SuggestLimit)

	// In-memory session store with idle-TTL retention.
	sessions := store.NewSessionStore(cfg.SessionTTL)

	// Scheduler that periodically sweeps expired sessions.
	sched := scheduler.New(sessions, cfg.PurgeInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "slopefinder",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "slopefinder",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, sessions, geocoder, resortClient, cfg.PageSize)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
