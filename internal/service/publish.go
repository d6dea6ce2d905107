package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/digest"
	"github.com/alvinashcraft/dewdrop/internal/storage"
	"github.com/alvinashcraft/dewdrop/internal/wordpress"
)

// PublishOptions selects the artifact to publish and how. Exactly one of
// Path or DigestID identifies the artifact; Path wins when both are set.
type PublishOptions struct {
	// Path is the digest artifact file to publish.
	Path string
	// DigestID selects a recorded digest by row ID instead of a path.
	DigestID int64
	// Confirm allows republishing an artifact already marked published.
	Confirm bool
	// Status overrides the configured default WordPress post status.
	Status string
	// Categories are WordPress category names to attach to the post.
	Categories []string
}

// PublishResult is the outcome of a successful publish.
type PublishResult struct {
	PostID    int64  `json:"post_id"`
	Path      string `json:"path"`
	ContentID string `json:"content_id,omitempty"`
	// Warning is set when the remote post was created but some local
	// bookkeeping (file marker or digest record) could not be updated.
	Warning string `json:"warning,omitempty"`
}

// Publish pushes a digest artifact to WordPress as a new post, then flips the
// artifact's embedded metadata and the digest record to published.
//
// The remote create is the point of no return: once WordPress has accepted
// the post, local bookkeeping failures are reported as a warning on the
// result, never as an error, and nothing is rolled back. Returns
// ErrAlreadyPublished when the artifact's metadata says published and Confirm
// is false, and ErrBusy when another flow is running.
func (s *Service) Publish(ctx context.Context, opts PublishOptions) (*PublishResult, error) {
	if s.wp == nil {
		return nil, ErrWordPressNotConfigured
	}
	if !s.flowMu.TryLock() {
		return nil, ErrBusy
	}
	defer s.flowMu.Unlock()

	path := opts.Path
	if path == "" {
		if opts.DigestID == 0 {
			return nil, fmt.Errorf("no artifact selected: need a path or digest id")
		}
		d, err := s.store.GetDigestByID(ctx, opts.DigestID)
		if err != nil {
			return nil, fmt.Errorf("looking up digest %d: %w", opts.DigestID, err)
		}
		path = d.Path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}
	content := string(data)

	if digest.IsPublished(content) && !opts.Confirm {
		return nil, ErrAlreadyPublished
	}

	var contentID string
	if meta, ok := digest.ParseMetadata(content); ok {
		contentID = meta.ContentID
	}

	title := s.artifactTitle(ctx, contentID, content)

	var categoryIDs []int64
	if len(opts.Categories) > 0 {
		categoryIDs, err = s.wp.ResolveCategories(ctx, opts.Categories)
		if err != nil {
			// Category lookup is best-effort: publish under the site
			// default rather than failing.
			slog.Warn("resolving wordpress categories failed, publishing without", "error", err)
			categoryIDs = nil
		}
	}

	status := opts.Status
	if status == "" {
		status = s.cfg.WordPress.DefaultStatus
	}

	postID, err := s.wp.CreatePost(ctx, wordpress.Post{
		Title:      title,
		Content:    content,
		Status:     status,
		Categories: categoryIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("creating wordpress post: %w", err)
	}

	result := &PublishResult{PostID: postID, Path: path, ContentID: contentID}
	now := time.Now()

	if err := digest.MarkFilePublished(path, postID, now); err != nil {
		result.Warning = fmt.Sprintf("post %d created but artifact metadata not updated: %v", postID, err)
		slog.Warn("published but could not update artifact metadata", "path", path, "error", err)
	}

	if contentID != "" {
		err := s.store.MarkDigestPublished(ctx, contentID, postID, now)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Artifact exported elsewhere; the file marker is still updated.
		case err != nil:
			if result.Warning == "" {
				result.Warning = fmt.Sprintf("post %d created but digest record not updated: %v", postID, err)
			}
			slog.Warn("published but could not update digest record", "content_id", contentID, "error", err)
		}
	}

	slog.Info("published digest", "post_id", postID, "path", path, "status", status)
	return result, nil
}

var (
	htmlTitlePattern     = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	markdownTitlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// artifactTitle resolves the WordPress post title: the recorded digest title
// when the content ID is known, otherwise the artifact's own top heading,
// otherwise the artifact path.
func (s *Service) artifactTitle(ctx context.Context, contentID, content string) string {
	if contentID != "" {
		if d, err := s.store.GetDigestByContentID(ctx, contentID); err == nil {
			return d.Title
		}
	}

	if m := htmlTitlePattern.FindStringSubmatch(content); m != nil {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}
	if m := markdownTitlePattern.FindStringSubmatch(content); m != nil {
		return strings.ReplaceAll(strings.TrimSpace(m[1]), `\`, "")
	}
	return fmt.Sprintf("%s – %s", s.cfg.Export.TitlePrefix, time.Now().UTC().Format("January 2, 2006"))
}
