package digest

import (
	"fmt"
	"os"
	"time"
)

// IsFilePublished reports whether the artifact at path has already been
// published. Unreadable files are treated as never-published and logged by
// the caller; this keeps the duplicate check advisory rather than blocking.
func IsFilePublished(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading artifact %q: %w", path, err)
	}
	return IsPublished(string(data)), nil
}

// MarkFilePublished flips the artifact at path to published status, recording
// the WordPress post ID and publish time in its metadata marker, and writes
// the result back to the same file.
//
// This runs after the remote publish has already succeeded. A failure here
// means the remote post exists but the local file still says draft; callers
// surface that as a warning rather than rolling anything back.
func MarkFilePublished(path string, postID int64, publishedAt time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading artifact %q: %w", path, err)
	}

	updated := Update(string(data), Fields{
		Status:          StatusPublished,
		PublishedDate:   publishedAt.UTC().Format(time.RFC3339),
		WordPressPostID: postID,
	}, publishedAt)

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing artifact %q: %w", path, err)
	}
	return nil
}
