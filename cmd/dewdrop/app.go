package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alvinashcraft/dewdrop/internal/categorize"
	"github.com/alvinashcraft/dewdrop/internal/config"
	"github.com/alvinashcraft/dewdrop/internal/feeds"
	"github.com/alvinashcraft/dewdrop/internal/service"
	"github.com/alvinashcraft/dewdrop/internal/storage"
	"github.com/alvinashcraft/dewdrop/internal/wordpress"
)

// app bundles the wired-up application components shared by all commands.
type app struct {
	cfg   *config.Config
	store *storage.Store
	svc   *service.Service

	close func()
}

// setup loads configuration, opens the database, runs migrations, seeds
// default feed sources, and wires the service. Callers must invoke
// app.close when done.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := storage.OpenDatabase(filepath.Join(dataDir, "app.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	store := storage.NewStore(db)
	if err := store.SeedDefaults(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding default sources: %w", err)
	}

	rules, err := categorize.LoadRules(cfg.Categories.RulesPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("loading categorization rules: %w", err)
	}

	// nil publisher when WordPress is not configured; publish commands
	// then fail fast with a clear error.
	var wp service.Publisher
	if cfg.WordPress.BaseURL != "" {
		wp = wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.AppPassword)
	} else {
		slog.Warn("wordpress.base_url is empty, publishing disabled")
	}

	svc := service.New(cfg, store, feeds.NewFetcher(), rules, wp)

	return &app{
		cfg:   cfg,
		store: store,
		svc:   svc,
		close: func() { db.Close() },
	}, nil
}
