package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CarolineNkan/safeher-sub001/ai"
	"github.com/CarolineNkan/safeher-sub001/api"
	"github.com/CarolineNkan/safeher-sub001/api/validator"
	"github.com/CarolineNkan/safeher-sub001/config"
	"github.com/CarolineNkan/safeher-sub001/directions"
	"github.com/CarolineNkan/safeher-sub001/postgres"
	"github.com/CarolineNkan/safeher-sub001/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Could not connect to postgres", "error", err)
		os.Exit(1)
	}

	cache, err := redis.Connect(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Error("Could not connect to redis", "error", err)
		os.Exit(1)
	}

	a := &api.API{
		Logger:     logger,
		DB:         db,
		Cache:      cache,
		AI:         ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout),
		Directions: directions.New(cfg.Directions.BaseURL, cfg.Directions.Timeout),
		Val:        validator.New(),
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
