package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/trainer/internal/app"
	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/config"
	"github.com/felixgeelhaar/trainer/internal/daemon"
	"github.com/felixgeelhaar/trainer/internal/queue"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	pidFileName = "trainerd.pid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	trainerDir, err := config.EnsureTrainerDir()
	if err != nil {
		return fmt.Errorf("ensure trainer dir: %w", err)
	}

	local, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err := config.Load(local, ".env", filepath.Join(trainerDir, ".env"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logFile, err := setupLogging(trainerDir, logLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	pidPath := filepath.Join(trainerDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.New(ctx, cfg, app.Options{Dir: trainerDir, Queue: true})
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	defer services.Close()

	if cfg.CatalogFile != "" {
		watcher, err := catalog.Watch(services.Catalog, cfg.CatalogFile, slog.Default())
		if err != nil {
			slog.Warn("catalog watch disabled", "path", cfg.CatalogFile, "error", err)
		} else {
			defer watcher.Close()
		}
	}

	if conn := services.Queue(); conn != nil {
		consumer := queue.NewConsumer(conn, queue.GenerateHandler(services.Exercises), queue.ConsumerConfig{
			Workers: cfg.QueueWorkers,
		})
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("start consumer: %w", err)
		}
		defer consumer.Stop()
	}

	server, err := daemon.NewServer(daemon.ServerConfig{
		Config:    cfg,
		Exercises: services.Exercises,
		Sessions:  services.Sessions,
		Version:   Version,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(trainerDir string, level slog.Level) (*os.File, error) {
	logPath := filepath.Join(trainerDir, "logs", "trainerd.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	// JSON to the file, text to stderr for foreground mode
	slog.SetDefault(slog.New(&multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
		},
	}))

	return logFile, nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
