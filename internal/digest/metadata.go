package digest

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"time"
)

// Publication statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Metadata is the publication record embedded as a comment line inside every
// exported artifact. The JSON field names and the marker framing are a
// persisted format: files written by earlier versions of the tool must keep
// parsing, so neither may change.
//
// PublishedDate and WordPressPostID are both absent until the artifact is
// published, then both present.
type Metadata struct {
	ContentID       string `json:"contentId"`
	Status          string `json:"status"`
	LastModified    string `json:"lastModified"`
	PublishedDate   string `json:"publishedDate,omitempty"`
	WordPressPostID int64  `json:"wordpressPostId,omitempty"`
}

const (
	markerPrefix = "<!-- PUBLICATION_METADATA: "
	markerSuffix = " -->"
)

var (
	markerPattern  = regexp.MustCompile(`<!--\s*PUBLICATION_METADATA:\s*(\{.*?\})\s*-->`)
	bodyTagPattern = regexp.MustCompile(`(?i)<body[^>]*>`)
)

// encodeMarker serializes m into a single marker comment line.
func encodeMarker(m Metadata) string {
	// Marshal of a flat struct with string/int fields cannot fail.
	data, _ := json.Marshal(m)
	return markerPrefix + string(data) + markerSuffix
}

// ParseMetadata scans content for a metadata marker and returns the decoded
// record. It returns ok=false when no marker is present. A marker with
// malformed JSON is logged and treated exactly like an absent marker; this
// never surfaces as an error to callers.
func ParseMetadata(content string) (*Metadata, bool) {
	match := markerPattern.FindStringSubmatch(content)
	if match == nil {
		return nil, false
	}

	var m Metadata
	if err := json.Unmarshal([]byte(match[1]), &m); err != nil {
		slog.Warn("malformed publication metadata marker, treating as absent", "error", err)
		return nil, false
	}
	return &m, true
}

// Embed inserts a metadata marker for m into content. For HTML content the
// marker goes immediately after the first opening body tag; for Markdown and
// plain text it becomes the very first line. Any existing marker is replaced
// instead.
func Embed(content string, m Metadata) string {
	marker := encodeMarker(m)

	if loc := markerPattern.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + marker + content[loc[1]:]
	}

	if loc := bodyTagPattern.FindStringIndex(content); loc != nil {
		return content[:loc[1]] + "\n" + marker + content[loc[1]:]
	}

	return marker + "\n" + content
}

// Fields is a partial metadata record for Update. Zero-valued fields are
// left untouched in the merged record.
type Fields struct {
	ContentID       string
	Status          string
	PublishedDate   string
	WordPressPostID int64
}

// Update shallow-merges fields onto the metadata already embedded in content
// (or onto an empty record when none is present), refreshes LastModified to
// now, and returns the content with the marker replaced in place or inserted
// per the Embed placement rule. The caller is responsible for persisting the
// returned text.
func Update(content string, fields Fields, now time.Time) string {
	m := Metadata{}
	if existing, ok := ParseMetadata(content); ok {
		m = *existing
	}

	if fields.ContentID != "" {
		m.ContentID = fields.ContentID
	}
	if fields.Status != "" {
		m.Status = fields.Status
	}
	if fields.PublishedDate != "" {
		m.PublishedDate = fields.PublishedDate
	}
	if fields.WordPressPostID != 0 {
		m.WordPressPostID = fields.WordPressPostID
	}
	m.LastModified = now.UTC().Format(time.RFC3339)

	return Embed(content, m)
}

// IsPublished reports whether content carries a metadata marker with
// published status. Content with no marker (including files created before
// metadata tracking existed) is never-published.
func IsPublished(content string) bool {
	m, ok := ParseMetadata(content)
	return ok && m.Status == StatusPublished
}
