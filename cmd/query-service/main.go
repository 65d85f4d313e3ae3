package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Udonxai/weak-link/docs"
	"github.com/Udonxai/weak-link/internal/analytics"
	"github.com/Udonxai/weak-link/internal/config"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/query"
	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/Udonxai/weak-link/pkg/logger"
	"github.com/Udonxai/weak-link/pkg/postgres"
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()

	log = logger.WithService(log, "query-service")
	log.Info("Starting Query Service",
		zap.String("environment", cfg.Environment),
		zap.String("http_port", cfg.HTTPPort),
	)

	db, err := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.PostgresDSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	queryService := query.NewService(
		query.NewRepository(db, log),
		analytics.NewRepository(db, log),
		event.NewRepository(db, log),
		watchlist.NewRepository(db, log),
		db,
		cfg.Aggregation.Location(),
		log,
	)
	queryHandler := query.NewHandler(queryService, log)

	app := fiber.New(fiber.Config{
		AppName:      "weak-link query-service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	app.Use(requestLogger(log))

	queryHandler.Register(app)
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.HTTPPort))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Warn("Shutdown timeout, forcing stop", zap.Error(err))
	}

	log.Info("Query Service stopped")
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
			log.Error("HTTP request failed", fields...)
		} else {
			log.Info("HTTP request", fields...)
		}
		return err
	}
}
