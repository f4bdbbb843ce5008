package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// parseFeedItems converts gofeed items into headlines. Items with an empty
// title or link are skipped. The feed title names the source, and the first
// image or enclosure becomes the headline image.
func parseFeedItems(feed *gofeed.Feed) []models.Headline {
	var headlines []models.Headline
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		var publishedAt *time.Time
		switch {
		case item.PublishedParsed != nil:
			t := *item.PublishedParsed
			publishedAt = &t
		case item.UpdatedParsed != nil:
			t := *item.UpdatedParsed
			publishedAt = &t
		}

		headlines = append(headlines, models.Headline{
			Title:       strings.TrimSpace(stripHTML(item.Title)),
			Description: strings.TrimSpace(stripHTML(item.Description)),
			URL:         item.Link,
			URLToImage:  itemImage(item),
			Source:      feed.Title,
			PublishedAt: publishedAt,
		})
	}

	return headlines
}

// itemImage returns the item's image URL, falling back to the first image
// enclosure.
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}
