package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var metadataNow = time.Date(2025, 9, 28, 12, 0, 0, 0, time.UTC)

func TestParseMetadata_Absent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty content", ""},
		{"plain markdown", "# A digest\n\n- [post](https://x/a)\n"},
		{"unrelated comment", "<!-- just a comment -->\n# A digest\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if m, ok := ParseMetadata(tt.content); ok {
				t.Errorf("ParseMetadata() = %+v, want absent", m)
			}
		})
	}
}

func TestParseMetadata_MalformedJSONTreatedAsAbsent(t *testing.T) {
	content := "<!-- PUBLICATION_METADATA: {not valid json} -->\n# A digest\n"

	if m, ok := ParseMetadata(content); ok {
		t.Errorf("ParseMetadata() = %+v, want absent for malformed JSON", m)
	}
}

func TestParseMetadata_WireFormat(t *testing.T) {
	// Exact persisted layout; must keep parsing for files written by
	// earlier versions of the tool.
	content := `<!-- PUBLICATION_METADATA: {"contentId":"dewdrop-2025-09-28-a1b2c3d4","status":"published","lastModified":"2025-09-28T12:00:00Z","publishedDate":"2025-09-28T12:00:00Z","wordpressPostId":4288} -->` + "\n# Dew Drop\n"

	m, ok := ParseMetadata(content)
	if !ok {
		t.Fatal("ParseMetadata() did not find marker")
	}

	want := &Metadata{
		ContentID:       "dewdrop-2025-09-28-a1b2c3d4",
		Status:          StatusPublished,
		LastModified:    "2025-09-28T12:00:00Z",
		PublishedDate:   "2025-09-28T12:00:00Z",
		WordPressPostID: 4288,
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestEmbed_MarkdownPlacement(t *testing.T) {
	content := "# Dew Drop\n\n- [post](https://x/a)\n"

	out := Embed(content, Metadata{ContentID: "dewdrop-2025-09-28-a1b2c3d4", Status: StatusDraft})

	first, _, _ := strings.Cut(out, "\n")
	if !strings.HasPrefix(first, "<!-- PUBLICATION_METADATA: ") {
		t.Errorf("first line = %q, want metadata marker", first)
	}
	if !strings.Contains(out, content) {
		t.Error("original content corrupted by Embed")
	}
}

func TestEmbed_HTMLPlacement(t *testing.T) {
	content := "<!DOCTYPE html>\n<html>\n<head><title>t</title></head>\n<body class=\"digest\">\n<h1>Dew Drop</h1>\n</body>\n</html>\n"

	out := Embed(content, Metadata{ContentID: "dewdrop-2025-09-28-a1b2c3d4", Status: StatusDraft})

	bodyIdx := strings.Index(out, `<body class="digest">`)
	markerIdx := strings.Index(out, "<!-- PUBLICATION_METADATA: ")
	h1Idx := strings.Index(out, "<h1>")

	if markerIdx < bodyIdx || markerIdx > h1Idx {
		t.Errorf("marker at %d, want between body tag (%d) and content (%d)", markerIdx, bodyIdx, h1Idx)
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	content := "# Dew Drop\n\n- [post](https://x/a)\n"

	out := Update(content, Fields{
		ContentID: "dewdrop-2025-09-28-a1b2c3d4",
		Status:    StatusDraft,
	}, metadataNow)

	m, ok := ParseMetadata(out)
	if !ok {
		t.Fatal("ParseMetadata() did not find marker after Update")
	}

	want := &Metadata{
		ContentID:    "dewdrop-2025-09-28-a1b2c3d4",
		Status:       StatusDraft,
		LastModified: "2025-09-28T12:00:00Z",
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_MergesOntoExisting(t *testing.T) {
	content := "# Dew Drop\n"
	content = Update(content, Fields{
		ContentID: "dewdrop-2025-09-28-a1b2c3d4",
		Status:    StatusDraft,
	}, metadataNow)

	later := metadataNow.Add(2 * time.Hour)
	out := Update(content, Fields{
		Status:          StatusPublished,
		PublishedDate:   later.Format(time.RFC3339),
		WordPressPostID: 4288,
	}, later)

	// Exactly one marker line after the in-place update.
	if n := strings.Count(out, "<!-- PUBLICATION_METADATA: "); n != 1 {
		t.Fatalf("marker count = %d, want 1", n)
	}

	m, ok := ParseMetadata(out)
	if !ok {
		t.Fatal("ParseMetadata() did not find marker")
	}
	if m.ContentID != "dewdrop-2025-09-28-a1b2c3d4" {
		t.Errorf("ContentID = %q, want preserved from first write", m.ContentID)
	}
	if m.Status != StatusPublished {
		t.Errorf("Status = %q, want %q", m.Status, StatusPublished)
	}
	if m.WordPressPostID != 4288 {
		t.Errorf("WordPressPostID = %d, want 4288", m.WordPressPostID)
	}
	if m.PublishedDate == "" {
		t.Error("PublishedDate is empty after publish update")
	}
	if m.LastModified != later.UTC().Format(time.RFC3339) {
		t.Errorf("LastModified = %q, want refreshed to %q", m.LastModified, later.UTC().Format(time.RFC3339))
	}
}

func TestUpdate_Idempotent(t *testing.T) {
	content := "# Dew Drop\n"
	fields := Fields{ContentID: "dewdrop-2025-09-28-a1b2c3d4", Status: StatusDraft}

	once := Update(content, fields, metadataNow)
	twice := Update(once, fields, metadataNow.Add(time.Minute))

	m1, ok1 := ParseMetadata(once)
	m2, ok2 := ParseMetadata(twice)
	if !ok1 || !ok2 {
		t.Fatal("marker missing after update")
	}

	ignoreModified := cmpopts.IgnoreFields(Metadata{}, "LastModified")
	if diff := cmp.Diff(m1, m2, ignoreModified); diff != "" {
		t.Errorf("repeated Update changed metadata (-first +second):\n%s", diff)
	}
}

func TestIsPublished(t *testing.T) {
	draft := Update("# d\n", Fields{ContentID: "x", Status: StatusDraft}, metadataNow)
	published := Update(draft, Fields{
		Status:          StatusPublished,
		PublishedDate:   metadataNow.Format(time.RFC3339),
		WordPressPostID: 7,
	}, metadataNow)

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"no marker", "# plain file\n", false},
		{"draft", draft, false},
		{"published", published, true},
		{"malformed marker", "<!-- PUBLICATION_METADATA: nope -->\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPublished(tt.content); got != tt.want {
				t.Errorf("IsPublished() = %v, want %v", got, tt.want)
			}
		})
	}
}
