package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"notion-forms/internal/admin"
	"notion-forms/internal/auth"
	"notion-forms/internal/config"
	"notion-forms/internal/engine"
	"notion-forms/internal/events"
	"notion-forms/internal/instrument"
	"notion-forms/internal/notion"
	"notion-forms/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Printf("Config loaded (port: %d, db: %s)", cfg.Server.Port, cfg.Database.Driver)

	// 2. Connect to database
	if cfg.Database.IsSQLite() && cfg.Database.Name != ":memory:" {
		if err := os.MkdirAll(cfg.Database.Path, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		return err
	}
	log.Println("System tables ready")

	// 4. Instrumentation
	var sink instrument.Sink
	if cfg.Instrumentation.Enabled {
		buffer := instrument.NewEventBuffer(db.DB, db.Dialect, cfg.Instrumentation.BufferSize, cfg.Instrumentation.FlushIntervalMs)
		defer buffer.Stop()
		sink = buffer

		janitor := instrument.NewJanitor(db.DB, db.Dialect, cfg.Instrumentation.RetentionDays, time.Hour)
		janitor.Start()
		defer janitor.Stop()
	}

	// 5. Events
	publisher, err := events.New(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// 6. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(instrument.Middleware(cfg.Instrumentation, sink))

	// 7. Health check and metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		instrument.RegisterMetricsRoute(app)
	}

	// 8. API routes (auth required)
	backends := func(token string) engine.Backend {
		return notion.NewClient(cfg.Notion, notion.StaticToken(token))
	}
	installations := store.NewInstallations(db, cfg.Notion.Token)
	handler := engine.NewHandler(
		backends,
		installations,
		store.NewSubmissions(db),
		auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL()),
		publisher,
	)
	authMW := auth.AuthMiddleware(cfg.JWTSecret)
	engine.RegisterRoutes(app, handler, authMW)

	// 9. Admin routes (auth + admin required)
	adminHandler := admin.NewHandler(installations, instrument.NewEventHandler(db.DB, db.Dialect))
	admin.RegisterAdminRoutes(app, adminHandler, authMW, auth.RequireAdmin())

	// 10. Start server
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("ERROR: shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	return app.Listen(addr)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
