package categorize

import (
	"regexp"
	"strings"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// Categorizer assigns exactly one category label to each post. It is built
// once from an immutable RuleSet and is safe for concurrent use.
type Categorizer struct {
	rules     *RuleSet
	wholeWord map[string]*regexp.Regexp
}

// New creates a Categorizer from the given rule set, precompiling
// word-boundary matchers for every whole-word keyword.
func New(rules *RuleSet) *Categorizer {
	ww := make(map[string]*regexp.Regexp, len(rules.WholeWordKeywords))
	for _, kw := range rules.WholeWordKeywords {
		ww[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return &Categorizer{rules: rules, wholeWord: ww}
}

// Categorize returns the category for a single post. Rules are evaluated in
// declared order and the first rule with any keyword match wins; posts
// matching no rule get the default category. Empty post fields never match.
func (c *Categorizer) Categorize(post models.Post) string {
	title := strings.ToLower(post.Title)
	link := strings.ToLower(post.Link)
	author := strings.ToLower(post.Author)

	for _, rule := range c.rules.Categories {
		if c.matchAny(title, rule.TitleKeywords) ||
			c.matchAny(link, rule.URLKeywords) ||
			c.matchAny(author, rule.AuthorKeywords) {
			return rule.Name
		}
	}
	return c.rules.DefaultCategory
}

// Apply assigns a category to every post in place and returns the slice.
func (c *Categorizer) Apply(posts []models.Post) []models.Post {
	for i := range posts {
		posts[i].Category = c.Categorize(posts[i])
	}
	return posts
}

// matchAny reports whether any keyword matches the given lowercased text.
// Whole-word keywords require a word-boundary match so that e.g. "ai" does
// not match inside "air"; all other keywords match as substrings.
func (c *Categorizer) matchAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if re, ok := c.wholeWord[kw]; ok {
			if re.MatchString(text) {
				return true
			}
			continue
		}
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
