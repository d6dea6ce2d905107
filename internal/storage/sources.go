package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// defaultSources defines the developer blogs seeded into a new database.
// The list mirrors the feeds a Dew Drop digest has traditionally drawn from.
var defaultSources = []models.FeedSource{
	{Name: "Scott Hanselman", FeedURL: "https://www.hanselman.com/blog/feed/rss", SiteURL: "https://www.hanselman.com/blog", IsActive: true},
	{Name: ".NET Blog", FeedURL: "https://devblogs.microsoft.com/dotnet/feed/", SiteURL: "https://devblogs.microsoft.com/dotnet", IsActive: true},
	{Name: "Visual Studio Blog", FeedURL: "https://devblogs.microsoft.com/visualstudio/feed/", SiteURL: "https://devblogs.microsoft.com/visualstudio", IsActive: true},
	{Name: "Azure Blog", FeedURL: "https://azure.microsoft.com/en-us/blog/feed/", SiteURL: "https://azure.microsoft.com/en-us/blog", IsActive: true},
	{Name: "GitHub Blog", FeedURL: "https://github.blog/feed/", SiteURL: "https://github.blog", IsActive: true},
	{Name: "CSS-Tricks", FeedURL: "https://css-tricks.com/feed/", SiteURL: "https://css-tricks.com", IsActive: true},
	{Name: "Smashing Magazine", FeedURL: "https://www.smashingmagazine.com/feed/", SiteURL: "https://www.smashingmagazine.com", IsActive: true},
	{Name: "Go Blog", FeedURL: "https://go.dev/blog/feed.atom", SiteURL: "https://go.dev/blog", IsActive: true},
	{Name: "Cloudflare Blog", FeedURL: "https://blog.cloudflare.com/rss/", SiteURL: "https://blog.cloudflare.com", IsActive: true},
	{Name: "Stack Overflow Blog", FeedURL: "https://stackoverflow.blog/feed/", SiteURL: "https://stackoverflow.blog", IsActive: true},
}

// SeedDefaults inserts the default feed sources if they are not already
// present. Existing rows (matched by feed_url) are left untouched, so user
// edits survive restarts.
func (s *Store) SeedDefaults(ctx context.Context) error {
	for _, src := range defaultSources {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO feed_sources (name, feed_url, site_url, is_active)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(feed_url) DO NOTHING`,
			src.Name, src.FeedURL, src.SiteURL, boolToInt(src.IsActive),
		)
		if err != nil {
			return fmt.Errorf("seeding source %q: %w", src.Name, err)
		}
	}
	return nil
}

// GetAllSources returns all feed sources regardless of active status,
// ordered by name.
func (s *Store) GetAllSources(ctx context.Context) ([]models.FeedSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, feed_url, site_url, is_active, last_fetch_at, last_fetch_ok, last_error, created_at
		 FROM feed_sources ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying all sources: %w", err)
	}
	defer rows.Close()

	return scanSources(rows)
}

// GetActiveSources returns all feed sources where is_active = 1,
// ordered by name.
func (s *Store) GetActiveSources(ctx context.Context) ([]models.FeedSource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, feed_url, site_url, is_active, last_fetch_at, last_fetch_ok, last_error, created_at
		 FROM feed_sources WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying active sources: %w", err)
	}
	defer rows.Close()

	return scanSources(rows)
}

// CreateSource inserts a new feed source and returns its ID.
func (s *Store) CreateSource(ctx context.Context, src *models.FeedSource) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO feed_sources (name, feed_url, site_url, is_active)
		 VALUES (?, ?, ?, ?)`,
		src.Name, src.FeedURL, src.SiteURL, boolToInt(src.IsActive),
	)
	if err != nil {
		return 0, fmt.Errorf("creating source %q: %w", src.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting created source id: %w", err)
	}
	return id, nil
}

// ToggleSource sets the is_active flag for the given source ID.
// It returns ErrNotFound if no source matches the given ID.
func (s *Store) ToggleSource(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE feed_sources SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("toggling source %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected for source %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFetchStatus records the outcome of the most recent fetch attempt for
// the source with the given name. Unknown names are ignored; a failed feed in
// a fetch batch may have been removed concurrently.
func (s *Store) UpdateFetchStatus(ctx context.Context, name string, fetchedAt time.Time, ok bool, fetchErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE feed_sources
		 SET last_fetch_at = ?, last_fetch_ok = ?, last_error = ?
		 WHERE name = ?`,
		fetchedAt.UTC().Format("2006-01-02 15:04:05"), boolToInt(ok), nullableString(fetchErr), name,
	)
	if err != nil {
		return fmt.Errorf("updating fetch status for %q: %w", name, err)
	}
	return nil
}

// scanSources scans all rows into FeedSource models.
func scanSources(rows *sql.Rows) ([]models.FeedSource, error) {
	var sources []models.FeedSource
	for rows.Next() {
		var (
			src         models.FeedSource
			isActive    int
			lastFetchAt sql.NullString
			lastFetchOK int
			lastError   sql.NullString
			createdAt   string
		)
		if err := rows.Scan(
			&src.ID, &src.Name, &src.FeedURL, &src.SiteURL, &isActive,
			&lastFetchAt, &lastFetchOK, &lastError, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}

		src.IsActive = isActive != 0
		src.LastFetchOK = lastFetchOK != 0
		src.LastFetchAt = parseTimePtr(nullStringToPtr(lastFetchAt))
		src.LastError = lastError.String
		src.CreatedAt = parseTime(createdAt)

		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	return sources, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
