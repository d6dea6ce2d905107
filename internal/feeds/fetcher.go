// Package feeds fetches and parses RSS/Atom feeds from tracked blog sources.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

const (
	httpTimeout    = 30 * time.Second
	maxConcurrent  = 10
	rateLimitDelay = 1 * time.Second
)

// FetchOptions controls how feeds are fetched.
type FetchOptions struct {
	// MaxPosts caps the number of posts taken per feed.
	MaxPosts int

	// LookbackDays filters out posts published more than N days ago.
	// Posts without a parsed publish date are kept.
	LookbackDays int

	// ExtractMissingDescriptions fetches the article page and extracts a
	// readability excerpt for posts whose feed entry has no description.
	ExtractMissingDescriptions bool
}

// FailedFeed records a feed that could not be fetched.
type FailedFeed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// FetchResult contains the successfully fetched posts and any failures.
type FetchResult struct {
	Posts  []models.Post
	Failed []FailedFeed
}

// Fetcher handles RSS feed fetching with per-domain rate limiting and
// bounded concurrency.
type Fetcher struct {
	client      *http.Client
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher with a custom HTTP client configured with a
// 30-second timeout and browser-like request headers.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	// Use a browser-like User-Agent to avoid bot detection on some sites.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.base.RoundTrip(req)
}

// FetchAll fetches RSS feeds from all sources concurrently with a maximum of
// 10 goroutines. Individual source failures are collected in
// FetchResult.Failed rather than failing the entire batch, so one broken feed
// never blocks a digest.
func (f *Fetcher) FetchAll(ctx context.Context, sources []models.FeedSource, opts FetchOptions) (*FetchResult, error) {
	var (
		result FetchResult
		mu     sync.Mutex
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, src := range sources {
		g.Go(func() error {
			posts, err := f.fetchSingleFeed(ctx, src, opts)
			if err != nil {
				slog.Warn("failed to fetch feed",
					"source", src.Name,
					"url", src.FeedURL,
					"error", err,
				)

				mu.Lock()
				result.Failed = append(result.Failed, FailedFeed{
					Source: src.Name,
					Error:  err.Error(),
				})
				mu.Unlock()

				return nil // skip failures, don't fail the batch
			}

			mu.Lock()
			result.Posts = append(result.Posts, posts...)
			mu.Unlock()

			slog.Info("fetched feed",
				"source", src.Name,
				"items", len(posts),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	return &result, nil
}

// fetchSingleFeed retrieves and parses a feed from a single source.
func (f *Fetcher) fetchSingleFeed(ctx context.Context, source models.FeedSource, opts FetchOptions) ([]models.Post, error) {
	domain := extractDomain(source.FeedURL)
	f.waitForRateLimit(domain)

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", source.FeedURL, err)
	}

	posts := parseFeedItems(source, feed, opts)

	if opts.ExtractMissingDescriptions {
		f.fillMissingDescriptions(posts)
	}

	return posts, nil
}

// fillMissingDescriptions extracts a readability excerpt for posts whose feed
// entry carried no description. Extraction failures leave the description
// empty; the post is still included in the digest.
func (f *Fetcher) fillMissingDescriptions(posts []models.Post) {
	for i := range posts {
		if posts[i].Description != "" {
			continue
		}

		f.waitForRateLimit(extractDomain(posts[i].Link))

		excerpt, err := extractExcerpt(posts[i].Link, httpTimeout)
		if err != nil {
			slog.Warn("failed to extract excerpt",
				"url", posts[i].Link,
				"error", err,
			)
			continue
		}
		posts[i].Description = excerpt
	}
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain. It blocks until the delay has elapsed.
func (f *Fetcher) waitForRateLimit(domain string) {
	f.mu.Lock()
	lastReq, ok := f.rateLimiter[domain]
	if ok {
		elapsed := time.Since(lastReq)
		if elapsed < rateLimitDelay {
			f.mu.Unlock()
			time.Sleep(rateLimitDelay - elapsed)
			f.mu.Lock()
		}
	}
	f.rateLimiter[domain] = time.Now()
	f.mu.Unlock()
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
