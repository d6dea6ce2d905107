package feeds

import (
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/alvinashcraft/dewdrop/internal/models"
)

// parseFeedItems converts gofeed items into Post models, filtering by the
// lookback window and capping at opts.MaxPosts per feed. Items with nil
// PublishedParsed are always included. Items with empty Title or Link are
// skipped. Descriptions are kept as delivered by the feed (often HTML); the
// exporter decides how to render them per output format.
func parseFeedItems(source models.FeedSource, feed *gofeed.Feed, opts FetchOptions) []models.Post {
	cutoff := time.Now().AddDate(0, 0, -opts.LookbackDays)

	var posts []models.Post
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		// Filter by publication date when available.
		if item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
			continue
		}

		var publishedAt *time.Time
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			publishedAt = &t
		}

		posts = append(posts, models.Post{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			Author:      itemAuthor(item),
			Source:      source.Name,
			PublishedAt: publishedAt,
		})

		if opts.MaxPosts > 0 && len(posts) >= opts.MaxPosts {
			break
		}
	}

	return posts
}

// itemAuthor returns the first author name attached to a feed item, or the
// empty string when the feed does not carry author information.
func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
