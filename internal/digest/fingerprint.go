// Package digest builds exported digest artifacts: it fingerprints post
// lists, renders them as HTML or Markdown grouped by category, and embeds a
// publication metadata marker that tracks the artifact's publish state.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// fingerprintDelimiter separates post fields in the hashed concatenation.
// It is not expected to appear in titles, links, or author names.
const fingerprintDelimiter = "|"

// Fingerprint derives a deterministic content ID of the form
// <prefix>-YYYY-MM-DD-<8 hex chars> from the digest date and its posts.
// The hash covers each post's title, link, and author in post order, so
// reordering posts or editing any of those fields yields a different ID.
func Fingerprint(prefix string, date time.Time, posts []models.Post) string {
	var b strings.Builder
	for i, p := range posts {
		if i > 0 {
			b.WriteString(fingerprintDelimiter)
		}
		b.WriteString(p.Title)
		b.WriteString(fingerprintDelimiter)
		b.WriteString(p.Link)
		b.WriteString(fingerprintDelimiter)
		b.WriteString(p.Author)
	}

	sum := sha256.Sum256([]byte(b.String()))
	hash8 := hex.EncodeToString(sum[:4])

	return prefix + "-" + date.UTC().Format("2006-01-02") + "-" + hash8
}
