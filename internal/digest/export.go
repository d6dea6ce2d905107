package digest

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// maxDescriptionWords caps how much of a feed description makes it into the
// rendered digest entry.
const maxDescriptionWords = 40

// Exporter renders categorized posts into a digest artifact. It is safe for
// concurrent use.
type Exporter struct {
	titlePrefix string
	idPrefix    string
	converter   *md.Converter
}

// NewExporter creates an Exporter. titlePrefix names the digest series (e.g.
// "Dew Drop") and contentIDPrefix is the fingerprint prefix (e.g. "dewdrop").
func NewExporter(titlePrefix, contentIDPrefix string) *Exporter {
	return &Exporter{
		titlePrefix: titlePrefix,
		idPrefix:    contentIDPrefix,
		converter:   md.NewConverter("", true, nil),
	}
}

// Result is one rendered digest artifact. Content already carries the
// embedded draft metadata marker.
type Result struct {
	Content    string
	Title      string
	ContentID  string
	PostCount  int
	Categories []string
}

// Export renders posts into a digest in the given format ("html" or
// "markdown"). Posts sharing a normalized link are collapsed to the first
// occurrence before fingerprinting and grouping. categoryOrder controls
// section order; categories not listed are appended in order of first
// appearance. The returned content embeds a draft metadata marker whose
// contentId is fingerprinted from now's date and the deduplicated post list.
func (e *Exporter) Export(posts []models.Post, categoryOrder []string, now time.Time, seq int, format string) (*Result, error) {
	posts = dedupeByLink(posts)

	contentID := Fingerprint(e.idPrefix, now, posts)
	title := fmt.Sprintf("%s – %s (#%d)", e.titlePrefix, now.UTC().Format("January 2, 2006"), seq)
	groups := groupByCategory(posts, categoryOrder)

	var content string
	switch format {
	case models.FormatHTML:
		content = e.renderHTML(title, groups)
	case models.FormatMarkdown:
		content = e.renderMarkdown(title, groups)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}

	content = Embed(content, Metadata{
		ContentID:    contentID,
		Status:       StatusDraft,
		LastModified: now.UTC().Format(time.RFC3339),
	})

	categories := make([]string, len(groups))
	for i, g := range groups {
		categories[i] = g.name
	}

	return &Result{
		Content:    content,
		Title:      title,
		ContentID:  contentID,
		PostCount:  len(posts),
		Categories: categories,
	}, nil
}

// group is one category section of a digest.
type group struct {
	name  string
	posts []models.Post
}

// dedupeByLink collapses posts sharing the same normalized link, keeping the
// first occurrence. Posts without a link are always kept.
func dedupeByLink(posts []models.Post) []models.Post {
	seen := make(map[string]bool, len(posts))
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		key := normalizeLink(p.Link)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, p)
	}
	return out
}

// normalizeLink lowercases a link and strips trailing slashes so that
// https://x/a and https://x/a/ compare equal.
func normalizeLink(link string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(link)), "/")
}

// groupByCategory splits posts into ordered category sections. Within a
// section posts keep their input order.
func groupByCategory(posts []models.Post, categoryOrder []string) []group {
	byName := make(map[string][]models.Post)
	var appearance []string
	for _, p := range posts {
		if _, ok := byName[p.Category]; !ok {
			appearance = append(appearance, p.Category)
		}
		byName[p.Category] = append(byName[p.Category], p)
	}

	var groups []group
	added := make(map[string]bool)
	for _, name := range categoryOrder {
		if ps, ok := byName[name]; ok && !added[name] {
			groups = append(groups, group{name: name, posts: ps})
			added[name] = true
		}
	}
	for _, name := range appearance {
		if !added[name] {
			groups = append(groups, group{name: name, posts: byName[name]})
			added[name] = true
		}
	}
	return groups
}

func (e *Exporter) renderHTML(title string, groups []group) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")

	for _, g := range groups {
		b.WriteString("<h2>" + html.EscapeString(g.name) + "</h2>\n<ul>\n")
		for _, p := range g.posts {
			b.WriteString("<li><a href=\"" + html.EscapeString(p.Link) + "\">" + html.EscapeString(p.Title) + "</a>")
			if p.Author != "" {
				b.WriteString(" <em>(" + html.EscapeString(p.Author) + ")</em>")
			}
			if desc := e.plainDescription(p.Description); desc != "" {
				b.WriteString(" &ndash; " + html.EscapeString(desc))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func (e *Exporter) renderMarkdown(title string, groups []group) string {
	var b strings.Builder
	b.WriteString("# " + escapeMarkdown(title) + "\n")

	for _, g := range groups {
		b.WriteString("\n## " + escapeMarkdown(g.name) + "\n\n")
		for _, p := range g.posts {
			b.WriteString("- [" + escapeMarkdown(p.Title) + "](" + escapeLinkDest(p.Link) + ")")
			if p.Author != "" {
				b.WriteString(" (" + escapeMarkdown(p.Author) + ")")
			}
			if desc := e.markdownDescription(p.Description); desc != "" {
				b.WriteString(" – " + desc)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

var (
	htmlTagPattern  = regexp.MustCompile("<[^>]*>")
	markdownEscaper = strings.NewReplacer(
		`[`, `\[`,
		`]`, `\]`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
	)
	linkDestEscaper = strings.NewReplacer(
		" ", "%20",
		"(", "%28",
		")", "%29",
		"<", "%3C",
		">", "%3E",
	)
)

// escapeMarkdown escapes characters that would otherwise alter Markdown
// structure when s is rendered as link text or a heading.
func escapeMarkdown(s string) string {
	s = markdownEscaper.Replace(s)
	if strings.HasPrefix(s, "#") || strings.HasPrefix(s, ">") {
		s = `\` + s
	}
	return s
}

// escapeLinkDest percent-encodes the characters that would end or break a
// Markdown link destination. Feed links with parentheses or spaces are rare
// but real.
func escapeLinkDest(link string) string {
	return linkDestEscaper.Replace(link)
}

// plainDescription strips markup from a feed description and truncates it
// for display in HTML output (where it is escaped separately).
func (e *Exporter) plainDescription(desc string) string {
	clean := html.UnescapeString(htmlTagPattern.ReplaceAllString(desc, ""))
	return truncateWords(strings.TrimSpace(clean), maxDescriptionWords)
}

// markdownDescription converts an HTML feed description to Markdown,
// flattened to a single line and truncated. Conversion failures fall back to
// the stripped plain text.
func (e *Exporter) markdownDescription(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return ""
	}
	converted, err := e.converter.ConvertString(desc)
	if err != nil {
		converted = htmlTagPattern.ReplaceAllString(desc, "")
	}
	flat := strings.Join(strings.Fields(converted), " ")
	return truncateWords(flat, maxDescriptionWords)
}

// truncateWords returns the first maxWords whitespace-delimited words of s.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "…"
}
