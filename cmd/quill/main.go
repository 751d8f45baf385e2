package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/docstore"
	"quill/internal/gateway"
	"quill/internal/web"
)

func main() {
	setupLogging()

	cfg := config.Load()
	dataPath, err := resolveDataPath(cfg)
	if err != nil {
		slog.Error("resolve data path", "err", err)
		os.Exit(1)
	}
	cfg.DataPath = dataPath
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		slog.Error("create data dir", "err", err)
		os.Exit(1)
	}

	store, err := docstore.OpenWithOptions(filepath.Join(cfg.DataPath, "notes.sqlite"), docstore.OpenOptions{
		BusyTimeout: cfg.DBBusyTimeout,
	})
	if err != nil {
		slog.Error("open store", "err", err)
		os.Exit(1)
	}
	defer store.Close()
	store.SetLockTimeout(cfg.DBLockTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		slog.Error("init store", "err", err)
		os.Exit(1)
	}

	if cfg.GenAPIKey == "" {
		slog.Warn("QUILL_GEN_API_KEY is not set, /api/improve will report a configuration error")
	}
	gen := gateway.NewClient(gateway.Config{
		APIKey:  cfg.GenAPIKey,
		BaseURL: cfg.GenBaseURL,
		Model:   cfg.GenModel,
		Timeout: cfg.GenTimeout,
	})

	srv, err := web.NewServer(cfg, store, gen)
	if err != nil {
		slog.Error("auth init", "err", err)
		os.Exit(1)
	}

	slog.Info("listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func resolveDataPath(cfg config.Config) (string, error) {
	dataPath := strings.TrimSpace(cfg.DataPath)
	if dataPath == "" {
		dataPath = ".quill"
	}
	path, err := filepath.Abs(dataPath)
	if err != nil {
		return "", fmt.Errorf("resolve data path: %w", err)
	}
	return path, nil
}
