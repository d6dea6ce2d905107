package digest

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digest.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return path
}

func TestIsFilePublished(t *testing.T) {
	now := time.Date(2025, 9, 28, 12, 0, 0, 0, time.UTC)
	draft := Update("# d\n", Fields{ContentID: "dewdrop-2025-09-28-a1b2c3d4", Status: StatusDraft}, now)

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"marker-less file is never-published", "# exported before tracking existed\n", false},
		{"draft", draft, false},
		{
			"published",
			Update(draft, Fields{Status: StatusPublished, PublishedDate: now.Format(time.RFC3339), WordPressPostID: 9}, now),
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeArtifact(t, tt.content)
			got, err := IsFilePublished(path)
			if err != nil {
				t.Fatalf("IsFilePublished() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsFilePublished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsFilePublished_MissingFile(t *testing.T) {
	if _, err := IsFilePublished(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Error("IsFilePublished() on missing file: expected error, got nil")
	}
}

func TestMarkFilePublished(t *testing.T) {
	now := time.Date(2025, 9, 28, 12, 0, 0, 0, time.UTC)
	draft := Update("# Dew Drop\n\n- [p](https://x/a)\n", Fields{
		ContentID: "dewdrop-2025-09-28-a1b2c3d4",
		Status:    StatusDraft,
	}, now)
	path := writeArtifact(t, draft)

	publishedAt := now.Add(time.Hour)
	if err := MarkFilePublished(path, 4288, publishedAt); err != nil {
		t.Fatalf("MarkFilePublished() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact back: %v", err)
	}

	m, ok := ParseMetadata(string(data))
	if !ok {
		t.Fatal("marker missing after MarkFilePublished")
	}
	if m.Status != StatusPublished {
		t.Errorf("Status = %q, want %q", m.Status, StatusPublished)
	}
	if m.WordPressPostID != 4288 {
		t.Errorf("WordPressPostID = %d, want 4288", m.WordPressPostID)
	}
	if m.PublishedDate != publishedAt.UTC().Format(time.RFC3339) {
		t.Errorf("PublishedDate = %q, want %q", m.PublishedDate, publishedAt.UTC().Format(time.RFC3339))
	}
	if m.ContentID != "dewdrop-2025-09-28-a1b2c3d4" {
		t.Errorf("ContentID = %q, want unchanged", m.ContentID)
	}

	// Content body survives the in-place metadata update.
	if !regexp.MustCompile(`- \[p\]\(https://x/a\)`).Match(data) {
		t.Error("digest body corrupted by metadata update")
	}
}

func TestMarkFilePublished_MarkerlessFileGainsMarker(t *testing.T) {
	path := writeArtifact(t, "# hand-written digest\n")

	if err := MarkFilePublished(path, 7, time.Date(2025, 9, 28, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("MarkFilePublished() error: %v", err)
	}

	data, _ := os.ReadFile(path)
	m, ok := ParseMetadata(string(data))
	if !ok {
		t.Fatal("marker not inserted into marker-less file")
	}
	if m.Status != StatusPublished {
		t.Errorf("Status = %q, want %q", m.Status, StatusPublished)
	}
}
