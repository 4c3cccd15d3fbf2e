package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cqlclinic/clinic/internal/api"
	"github.com/cqlclinic/clinic/internal/config"
	"github.com/cqlclinic/clinic/internal/events"
	"github.com/cqlclinic/clinic/internal/mcp"
	"github.com/cqlclinic/clinic/internal/storage/sqlite"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("clinicd error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogging(cfg)

	logger.Info("starting clinicd",
		"version", Version,
		"port", cfg.Port,
		"debug", cfg.Debug)

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}

	// Event publishing is optional; the clinic runs fine without a broker
	var eventsConn *events.Connection
	if cfg.RabbitMQURL != "" {
		eventsConn, err = events.NewConnection(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", "error", err)
			eventsConn = nil
		} else {
			defer eventsConn.Close()
		}
	}

	app := api.NewApp(cfg, db, eventsConn, logger)
	defer app.Close()

	// Warm the collection cache; a cold source is not fatal, the first
	// request will retry
	warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if exercises, err := app.Store.Load(warmCtx); err != nil {
		logger.Warn("initial exercise load failed", "error", err)
	} else {
		logger.Info("exercise collection loaded", "count", len(exercises))
	}
	cancel()

	if cfg.MCPAddr != "" {
		mcpServer := mcp.NewServer(mcp.Config{
			Store:    app.Store,
			Scorer:   app.Scorer,
			Progress: app.Progress,
		})
		go func() {
			logger.Info("starting MCP server", "addr", cfg.MCPAddr)
			if err := mcpServer.ServeHTTP(context.Background(), cfg.MCPAddr); err != nil {
				logger.Error("mcp server error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		logger.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("clinicd stopped")
	return nil
}

func setupLogging(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
