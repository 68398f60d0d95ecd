package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/ncdash/internal/backend"
	"github.com/starford/ncdash/internal/blobs"
	"github.com/starford/ncdash/internal/catalog"
	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/store"
)

// NewLogger returns the structured JSON logger used by every command.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// Components are the long-lived parts shared by the server, the MCP server
// and the one-shot commands.
type Components struct {
	Service *dashboard.Service
	Blobs   *blobs.FS
	Catalog *catalog.DB
}

// Build opens the blob store and the catalog, reconciles them and wires the
// dashboard service to the backend.
func Build(cfg *Config, logger *slog.Logger) (*Components, error) {
	if err := os.MkdirAll(cfg.Blobs.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	blobStore, err := blobs.NewFS(cfg.Blobs.Path)
	if err != nil {
		return nil, fmt.Errorf("init blobs: %w", err)
	}

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if err := catalog.Sync(db, blobStore, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	clientOpts := []backend.Option{
		backend.WithLogger(logger),
		backend.WithRetry(backend.Retry{
			MaxAttempts:     cfg.Backend.Retry.MaxAttempts,
			InitialInterval: cfg.Backend.Retry.InitialInterval,
		}),
	}
	if cfg.Backend.Timeout > 0 {
		clientOpts = append(clientOpts, backend.WithTimeout(cfg.Backend.Timeout))
	}

	svc := dashboard.NewService(
		backend.New(cfg.Backend.BaseURL, clientOpts...),
		store.New(logger),
		blobStore,
		db,
		dashboard.WithLogger(logger),
		dashboard.WithURLPrefix(cfg.Blobs.URLPrefix),
		dashboard.WithMaxImages(cfg.Cache.MaxImages),
		dashboard.WithToastDuration(cfg.Toast.Duration),
	)

	return &Components{Service: svc, Blobs: blobStore, Catalog: db}, nil
}

// Close stops the service timers and closes the catalog.
func (c *Components) Close() error {
	c.Service.Close()
	return c.Catalog.Close()
}
