package models

import "time"

// Digest formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Digest records one exported digest artifact. The ContentID is the
// fingerprint embedded in the artifact's metadata marker; it is assigned at
// export time and never changes for a given file.
type Digest struct {
	ID              int64      `json:"id"`
	ContentID       string     `json:"content_id"`
	Sequence        int        `json:"sequence"`
	Title           string     `json:"title"`
	Format          string     `json:"format"`
	Path            string     `json:"path"`
	PostCount       int        `json:"post_count"`
	CategoryCount   int        `json:"category_count"`
	WordPressPostID *int64     `json:"wordpress_post_id,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
