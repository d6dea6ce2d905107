// Package wordpress is a minimal client for the WordPress REST API v2,
// covering post creation and category lookup.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Post statuses accepted by the WordPress REST API.
const (
	StatusDraft   = "draft"
	StatusPublish = "publish"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Post is the payload for creating a WordPress post.
type Post struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Status     string  `json:"status"`
	Categories []int64 `json:"categories,omitempty"`
}

// Category is one WordPress category term.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Client talks to one WordPress site using application-password basic auth.
type Client struct {
	baseURL     string
	username    string
	appPassword string
	http        HTTPClient
}

// NewClient creates a Client for the WordPress site at baseURL (scheme and
// host, no trailing path). Authentication uses an application password.
func NewClient(baseURL, username, appPassword string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		username:    username,
		appPassword: appPassword,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTP is like NewClient but with an injected HTTP client,
// used by tests.
func NewClientWithHTTP(baseURL, username, appPassword string, httpClient HTTPClient) *Client {
	c := NewClient(baseURL, username, appPassword)
	c.http = httpClient
	return c
}

// CreatePost creates a post and returns the numeric post ID assigned by
// WordPress.
func (c *Client) CreatePost(ctx context.Context, post Post) (int64, error) {
	body, err := json.Marshal(post)
	if err != nil {
		return 0, fmt.Errorf("marshaling post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.appPassword)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting to wordpress: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("decoding create response: %w", err)
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("wordpress response carried no post id")
	}
	return created.ID, nil
}

// ListCategories returns the site's category terms (up to 100).
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	u := c.baseURL + "/wp-json/wp/v2/categories?" + url.Values{"per_page": {"100"}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var categories []Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	return categories, nil
}

// ResolveCategories maps category names to WordPress term IDs. Names with no
// matching term are skipped with a warning rather than failing the publish;
// WordPress then files the post under its default category.
func (c *Client) ResolveCategories(ctx context.Context, names []string) ([]int64, error) {
	if len(names) == 0 {
		return nil, nil
	}

	categories, err := c.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(categories))
	for _, cat := range categories {
		byName[strings.ToLower(cat.Name)] = cat.ID
	}

	var ids []int64
	for _, name := range names {
		id, ok := byName[strings.ToLower(name)]
		if !ok {
			slog.Warn("no matching wordpress category, skipping", "name", name)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readErrorBody returns up to 512 bytes of a response body for error messages.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
