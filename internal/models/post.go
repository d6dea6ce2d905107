package models

import "time"

// Post represents a single blog post discovered from an RSS/Atom feed as it
// flows through categorization and export. Posts are immutable inputs; the
// Category field is the one derived value, assigned by the categorizer.
type Post struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	Source      string     `json:"source,omitempty"`
	Category    string     `json:"category,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}
