// Mutual fund advisor - conversational terminal client
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/karth1ksr/mf-recommendation-engine/internal/config"
	"github.com/karth1ksr/mf-recommendation-engine/internal/engine"
	"github.com/karth1ksr/mf-recommendation-engine/internal/identity"
	"github.com/karth1ksr/mf-recommendation-engine/internal/realtime"
	"github.com/karth1ksr/mf-recommendation-engine/internal/session"
	"github.com/karth1ksr/mf-recommendation-engine/internal/store"
	"github.com/karth1ksr/mf-recommendation-engine/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// The terminal is owned by the UI, so structured logs go to a file.
	logger, logFile, err := newFileLogger(cfg.LogPath)
	if err != nil {
		slog.Error("Failed to open log file", "error", err, "path", cfg.LogPath)
		os.Exit(1)
	}
	defer func() {
		if closeErr := logFile.Close(); closeErr != nil {
			slog.Error("Failed to close log file", "error", closeErr)
		}
	}()
	slog.SetDefault(logger)

	logger.Info("Starting advisor", "engine_url", cfg.EngineURL, "mode", cfg.Mode)

	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize client state store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("Failed to close client state store", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		logger.Error("Client state store health check failed", "error", err)
		os.Exit(1)
	}

	ids := identity.NewStore(repo)
	client := engine.NewClient(cfg.EngineURL, cfg.RequestTimeout, logger)
	transport := realtime.NewWebsocketTransport(logger)
	orch := session.NewOrchestrator(cfg, ids, client, transport, logger)

	if err := tui.Run(orch); err != nil {
		logger.Error("UI exited with error", "error", err)
		os.Exit(1)
	}

	if err := orch.Leave(context.Background()); err != nil {
		logger.Warn("Failed to leave realtime room on exit", "error", err)
	}
	logger.Info("Advisor stopped")
}

func newFileLogger(path string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logger, f, nil
}
