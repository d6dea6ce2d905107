package feeds

import (
	"fmt"
	"net/http"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// browserHeaders sets browser-like request headers so sites that check Accept
// or User-Agent don't reject the request with 406.
func browserHeaders(r *http.Request) {
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Dewdrop/1.0; +https://github.com/alvinashcraft/dewdrop)")
}

// extractExcerpt fetches the web page at the given URL and returns a short
// readable excerpt using go-readability.
func extractExcerpt(url string, timeout time.Duration) (string, error) {
	article, err := readability.FromURL(url, timeout, browserHeaders)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}
	return article.Excerpt, nil
}
