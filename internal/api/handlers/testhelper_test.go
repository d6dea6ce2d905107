package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/categorize"
	"github.com/alvinashcraft/dewdrop/internal/config"
	"github.com/alvinashcraft/dewdrop/internal/feeds"
	"github.com/alvinashcraft/dewdrop/internal/models"
	"github.com/alvinashcraft/dewdrop/internal/service"
	"github.com/alvinashcraft/dewdrop/internal/storage"
	"github.com/alvinashcraft/dewdrop/internal/wordpress"
)

// newTestStore creates an in-memory SQLite store with migrations applied and
// default sources seeded. It registers a cleanup function to close the
// database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	store := storage.NewStore(db)
	if err := store.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seeding defaults: %v", err)
	}

	return store
}

// stubFetcher returns a fixed post list without network access.
type stubFetcher struct {
	posts []models.Post
}

func (s *stubFetcher) FetchAll(ctx context.Context, sources []models.FeedSource, opts feeds.FetchOptions) (*feeds.FetchResult, error) {
	return &feeds.FetchResult{Posts: s.posts}, nil
}

// stubPublisher accepts every post and returns a fixed WordPress post ID.
type stubPublisher struct {
	postID int64
}

func (s *stubPublisher) CreatePost(ctx context.Context, post wordpress.Post) (int64, error) {
	return s.postID, nil
}

func (s *stubPublisher) ResolveCategories(ctx context.Context, names []string) ([]int64, error) {
	return nil, nil
}

// newTestService wires a service around the given store with stubbed feed
// fetching and publishing.
func newTestService(t *testing.T, store *storage.Store, wp service.Publisher) *service.Service {
	t.Helper()

	now := time.Date(2025, 9, 28, 10, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{posts: []models.Post{
		{Title: "Understanding CSS Grid", Link: "https://a.example.com/grid", Author: "Ann", Source: "Blog A", PublishedAt: &now},
		{Title: "Weekend reading", Link: "https://c.example.com/reading", Author: "Cam", Source: "Blog C"},
	}}

	cfg := &config.Config{
		Feeds: config.FeedsConfig{MaxPostsPerFeed: 20, LookbackDays: 7},
		Export: config.ExportConfig{
			OutputDir:       t.TempDir(),
			DefaultFormat:   models.FormatMarkdown,
			TitlePrefix:     "Dew Drop",
			ContentIDPrefix: "dewdrop",
		},
		WordPress: config.WordPressConfig{DefaultStatus: "draft"},
	}
	rules := &categorize.RuleSet{
		Categories:      []categorize.Rule{{Name: "Web Development", TitleKeywords: []string{"css"}}},
		DefaultCategory: "Miscellaneous",
	}

	return service.New(cfg, store, fetcher, rules, wp)
}
