// Package categorize assigns category labels to blog posts using keyword
// rules loaded from a JSON config file.
package categorize

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FallbackCategory is used when the rules file does not configure a default.
const FallbackCategory = "Miscellaneous"

// Rule maps keyword lists to one category name. Keyword matching is
// case-insensitive substring matching unless a keyword is listed in the rule
// set's WholeWordKeywords.
type Rule struct {
	Name           string   `json:"name"`
	TitleKeywords  []string `json:"titleKeywords,omitempty"`
	URLKeywords    []string `json:"urlKeywords,omitempty"`
	AuthorKeywords []string `json:"authorKeywords,omitempty"`
}

// RuleSet is the full categorization configuration. Categories is an ordered
// list: the first rule with any keyword match wins, so declared order is rule
// priority.
type RuleSet struct {
	Categories        []Rule   `json:"categories"`
	DefaultCategory   string   `json:"defaultCategory"`
	WholeWordKeywords []string `json:"wholeWordKeywords,omitempty"`
}

const defaultRulesContent = `{
  "categories": [
    {
      "name": "Web Development",
      "titleKeywords": ["react", "angular", "vue", "javascript", "typescript", "css", "blazor", "asp.net", "html"],
      "urlKeywords": ["webdev", "frontend"]
    },
    {
      "name": "AI",
      "titleKeywords": ["ai", "machine learning", "llm", "copilot", "openai", "chatgpt"],
      "authorKeywords": []
    },
    {
      "name": "Cloud & DevOps",
      "titleKeywords": ["azure", "aws", "kubernetes", "docker", "terraform", "devops"]
    },
    {
      "name": "Mobile Development",
      "titleKeywords": ["android", "ios", "flutter", "maui", "xamarin", "swift"]
    },
    {
      "name": "Database & Data",
      "titleKeywords": ["sql", "database", "postgres", "mongodb", "analytics"]
    },
    {
      "name": "Podcasts & Screencasts",
      "titleKeywords": ["podcast", "episode", "screencast", "video"],
      "urlKeywords": ["youtube.com", "spotify.com"]
    }
  ],
  "defaultCategory": "Miscellaneous",
  "wholeWordKeywords": ["ai", "sql", "ios"]
}
`

// LoadRules reads and parses the JSON rules file at the given path. If the
// file does not exist, it creates a default rules file there first. A missing
// defaultCategory falls back to FallbackCategory rather than failing.
func LoadRules(path string) (*RuleSet, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefaultRules(path); err != nil {
			return nil, fmt.Errorf("creating default rules: %w", err)
		}
		slog.Info("created default categorization rules", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %q: %w", path, err)
	}

	normalize(&rules)
	return &rules, nil
}

// createDefaultRules writes the built-in default rules to the given path,
// creating parent directories as needed.
func createDefaultRules(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating rules directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultRulesContent), 0o644); err != nil {
		return fmt.Errorf("writing default rules: %w", err)
	}
	return nil
}

// normalize lowercases every keyword and fills in the fallback default
// category when the file omits one.
func normalize(rules *RuleSet) {
	for i := range rules.Categories {
		lowerAll(rules.Categories[i].TitleKeywords)
		lowerAll(rules.Categories[i].URLKeywords)
		lowerAll(rules.Categories[i].AuthorKeywords)
	}
	lowerAll(rules.WholeWordKeywords)

	if rules.DefaultCategory == "" {
		slog.Warn("rules file has no defaultCategory, using fallback", "fallback", FallbackCategory)
		rules.DefaultCategory = FallbackCategory
	}
}

// CategoryOrder returns every category name in rule-declaration order with
// the default category appended last. The exporter uses this to order digest
// sections.
func (rs *RuleSet) CategoryOrder() []string {
	order := make([]string, 0, len(rs.Categories)+1)
	for _, r := range rs.Categories {
		order = append(order, r.Name)
	}
	return append(order, rs.DefaultCategory)
}

func lowerAll(ss []string) {
	for i, s := range ss {
		ss[i] = strings.ToLower(s)
	}
}
