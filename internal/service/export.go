package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/feeds"
	"github.com/alvinashcraft/dewdrop/internal/models"
)

// ExportOptions controls one export run.
type ExportOptions struct {
	// Format is "html" or "markdown"; empty means the configured default.
	Format string
}

// ExportResult is the outcome of one export run.
type ExportResult struct {
	Digest      models.Digest      `json:"digest"`
	FailedFeeds []feeds.FailedFeed `json:"failed_feeds,omitempty"`
}

// Export runs the full digest pipeline: fetch all active feeds, categorize
// the posts, render the digest artifact, write it to the output directory,
// and record it. Per-feed fetch failures are reported in the result, never
// aborting the run. Returns ErrBusy if another flow is already running.
func (s *Service) Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if !s.flowMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.flowMu.Unlock()

	format := opts.Format
	if format == "" {
		format = s.cfg.Export.DefaultFormat
	}

	sources, err := s.store.GetActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no active feed sources configured")
	}

	fetched, err := s.fetcher.FetchAll(ctx, sources, feeds.FetchOptions{
		MaxPosts:                   s.cfg.Feeds.MaxPostsPerFeed,
		LookbackDays:               s.cfg.Feeds.LookbackDays,
		ExtractMissingDescriptions: s.cfg.Feeds.ExtractMissingDescriptions,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	s.recordFetchStatuses(ctx, sources, fetched.Failed)

	if len(fetched.Posts) == 0 {
		return nil, fmt.Errorf("no posts fetched from %d sources", len(sources))
	}

	posts := s.categorizer.Apply(sortPosts(fetched.Posts))

	seq, err := s.store.NextDigestSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating digest sequence: %w", err)
	}

	now := time.Now()
	rendered, err := s.exporter.Export(posts, s.rules.CategoryOrder(), now, seq, format)
	if err != nil {
		return nil, fmt.Errorf("rendering digest: %w", err)
	}

	path := filepath.Join(s.cfg.Export.OutputDir, artifactFileName(s.cfg.Export.TitlePrefix, now, seq, format))
	if err := os.MkdirAll(s.cfg.Export.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(rendered.Content), 0o644); err != nil {
		return nil, fmt.Errorf("writing digest file: %w", err)
	}

	record := models.Digest{
		ContentID:     rendered.ContentID,
		Sequence:      seq,
		Title:         rendered.Title,
		Format:        format,
		Path:          path,
		PostCount:     rendered.PostCount,
		CategoryCount: len(rendered.Categories),
	}
	id, err := s.store.CreateDigest(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("recording digest: %w", err)
	}
	record.ID = id
	record.CreatedAt = now

	slog.Info("exported digest",
		"content_id", record.ContentID,
		"sequence", seq,
		"posts", record.PostCount,
		"path", path,
		"failed_feeds", len(fetched.Failed),
	)

	return &ExportResult{Digest: record, FailedFeeds: fetched.Failed}, nil
}

// recordFetchStatuses persists per-source fetch outcomes. Failures here are
// logged and swallowed; fetch bookkeeping must not fail an export.
func (s *Service) recordFetchStatuses(ctx context.Context, sources []models.FeedSource, failed []feeds.FailedFeed) {
	now := time.Now()
	failedByName := make(map[string]string, len(failed))
	for _, f := range failed {
		failedByName[f.Source] = f.Error
	}

	for _, src := range sources {
		fetchErr, isFailed := failedByName[src.Name]
		if err := s.store.UpdateFetchStatus(ctx, src.Name, now, !isFailed, fetchErr); err != nil {
			slog.Warn("failed to record fetch status", "source", src.Name, "error", err)
		}
	}
}

// sortPosts orders posts newest first, with undated posts last, breaking
// ties by title. Feed fetching is concurrent, so input order is not stable;
// sorting keeps repeated exports of the same posts deterministic.
func sortPosts(posts []models.Post) []models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].PublishedAt, posts[j].PublishedAt
		switch {
		case a == nil && b == nil:
			return posts[i].Title < posts[j].Title
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return posts[i].Title < posts[j].Title
		}
	})
	return posts
}

// artifactFileName builds the digest file name, e.g.
// "dew-drop-2025-09-28-4288.md".
func artifactFileName(titlePrefix string, now time.Time, seq int, format string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(titlePrefix), "-"))
	ext := "md"
	if format == models.FormatHTML {
		ext = "html"
	}
	return fmt.Sprintf("%s-%s-%d.%s", slug, now.UTC().Format("2006-01-02"), seq, ext)
}
