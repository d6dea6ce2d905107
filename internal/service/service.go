// Package service orchestrates the export and publish flows: fetching feeds,
// categorizing posts, rendering digest artifacts, and pushing them to
// WordPress. It owns the one-flow-at-a-time rule: only a single export or
// publish may run per process.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/alvinashcraft/dewdrop/internal/categorize"
	"github.com/alvinashcraft/dewdrop/internal/config"
	"github.com/alvinashcraft/dewdrop/internal/digest"
	"github.com/alvinashcraft/dewdrop/internal/feeds"
	"github.com/alvinashcraft/dewdrop/internal/models"
	"github.com/alvinashcraft/dewdrop/internal/storage"
	"github.com/alvinashcraft/dewdrop/internal/wordpress"
)

var (
	// ErrBusy means another export or publish flow is already running.
	ErrBusy = errors.New("another export or publish is already running")

	// ErrAlreadyPublished means the target artifact's metadata says it was
	// already published; the caller must explicitly confirm to proceed.
	ErrAlreadyPublished = errors.New("digest is already published")

	// ErrWordPressNotConfigured means wordpress.base_url is empty.
	ErrWordPressNotConfigured = errors.New("wordpress is not configured")
)

// FeedFetcher fetches posts from feed sources.
type FeedFetcher interface {
	FetchAll(ctx context.Context, sources []models.FeedSource, opts feeds.FetchOptions) (*feeds.FetchResult, error)
}

// Publisher pushes posts to WordPress.
type Publisher interface {
	CreatePost(ctx context.Context, post wordpress.Post) (int64, error)
	ResolveCategories(ctx context.Context, names []string) ([]int64, error)
}

// Service wires the stages of the digest pipeline together. wp may be nil
// when WordPress is not configured; publishing then fails fast with
// ErrWordPressNotConfigured.
type Service struct {
	cfg         *config.Config
	store       *storage.Store
	fetcher     FeedFetcher
	rules       *categorize.RuleSet
	categorizer *categorize.Categorizer
	exporter    *digest.Exporter
	wp          Publisher

	// flowMu serializes export/publish flows. TryLock rather than Lock:
	// a second invocation reports ErrBusy instead of queueing.
	flowMu sync.Mutex
}

// New creates a Service. wp may be nil.
func New(cfg *config.Config, store *storage.Store, fetcher FeedFetcher, rules *categorize.RuleSet, wp Publisher) *Service {
	return &Service{
		cfg:         cfg,
		store:       store,
		fetcher:     fetcher,
		rules:       rules,
		categorizer: categorize.New(rules),
		exporter:    digest.NewExporter(cfg.Export.TitlePrefix, cfg.Export.ContentIDPrefix),
		wp:          wp,
	}
}
