package models

import "time"

// FeedSource represents a developer blog we track via RSS.
type FeedSource struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	FeedURL     string     `json:"feed_url"`
	SiteURL     string     `json:"site_url"`
	IsActive    bool       `json:"is_active"`
	LastFetchAt *time.Time `json:"last_fetch_at,omitempty"`
	LastFetchOK bool       `json:"last_fetch_ok"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
