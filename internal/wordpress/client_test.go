package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mockTransport records the last request and returns a canned response.
type mockTransport struct {
	lastReq    *http.Request
	lastBody   []byte
	statusCode int
	body       string
	err        error
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func TestCreatePost(t *testing.T) {
	mock := &mockTransport{statusCode: http.StatusCreated, body: `{"id": 4288}`}
	c := NewClientWithHTTP("https://blog.example.com/", "alvin", "app-pass", mock)

	id, err := c.CreatePost(context.Background(), Post{
		Title:   "Dew Drop – September 28, 2025 (#4288)",
		Content: "<p>digest</p>",
		Status:  StatusDraft,
	})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if id != 4288 {
		t.Errorf("CreatePost() = %d, want 4288", id)
	}

	if got := mock.lastReq.URL.String(); got != "https://blog.example.com/wp-json/wp/v2/posts" {
		t.Errorf("request URL = %q", got)
	}
	if user, pass, ok := mock.lastReq.BasicAuth(); !ok || user != "alvin" || pass != "app-pass" {
		t.Errorf("basic auth = %q/%q (ok=%v), want alvin/app-pass", user, pass, ok)
	}

	var sent Post
	if err := json.Unmarshal(mock.lastBody, &sent); err != nil {
		t.Fatalf("unmarshaling sent body: %v", err)
	}
	want := Post{
		Title:   "Dew Drop – September 28, 2025 (#4288)",
		Content: "<p>digest</p>",
		Status:  StatusDraft,
	}
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Errorf("sent payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePost_ErrorStatus(t *testing.T) {
	mock := &mockTransport{statusCode: http.StatusUnauthorized, body: `{"code":"rest_cannot_create"}`}
	c := NewClientWithHTTP("https://blog.example.com", "alvin", "bad-pass", mock)

	if _, err := c.CreatePost(context.Background(), Post{Title: "t", Status: StatusDraft}); err == nil {
		t.Error("CreatePost() with 401 response: expected error, got nil")
	}
}

func TestCreatePost_MissingID(t *testing.T) {
	mock := &mockTransport{statusCode: http.StatusCreated, body: `{}`}
	c := NewClientWithHTTP("https://blog.example.com", "alvin", "app-pass", mock)

	if _, err := c.CreatePost(context.Background(), Post{Title: "t", Status: StatusDraft}); err == nil {
		t.Error("CreatePost() with no id in response: expected error, got nil")
	}
}

func TestListCategories(t *testing.T) {
	mock := &mockTransport{
		statusCode: http.StatusOK,
		body:       `[{"id": 3, "name": "Web Development"}, {"id": 9, "name": "AI"}]`,
	}
	c := NewClientWithHTTP("https://blog.example.com", "alvin", "app-pass", mock)

	categories, err := c.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error: %v", err)
	}

	want := []Category{{ID: 3, Name: "Web Development"}, {ID: 9, Name: "AI"}}
	if diff := cmp.Diff(want, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCategories_SkipsUnknownNames(t *testing.T) {
	mock := &mockTransport{
		statusCode: http.StatusOK,
		body:       `[{"id": 3, "name": "Web Development"}]`,
	}
	c := NewClientWithHTTP("https://blog.example.com", "alvin", "app-pass", mock)

	ids, err := c.ResolveCategories(context.Background(), []string{"web development", "No Such Category"})
	if err != nil {
		t.Fatalf("ResolveCategories() error: %v", err)
	}

	if diff := cmp.Diff([]int64{3}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveCategories_EmptyInput(t *testing.T) {
	// No HTTP call should be needed for an empty name list.
	c := NewClientWithHTTP("https://blog.example.com", "alvin", "app-pass", &mockTransport{})

	ids, err := c.ResolveCategories(context.Background(), nil)
	if err != nil {
		t.Fatalf("ResolveCategories() error: %v", err)
	}
	if ids != nil {
		t.Errorf("ids = %v, want nil", ids)
	}
}
