// Package news lists headlines from a news API.
package news

import (
	"context"
	"strings"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// Source lists headlines for a query.
type Source interface {
	List(ctx context.Context, q models.HeadlineQuery) ([]models.Headline, error)
}

// removedTitle is the placeholder NewsAPI puts on withdrawn articles.
const removedTitle = "[Removed]"

// Filter drops headlines with a missing or placeholder title or an empty URL,
// assigns each survivor its ID, and keeps at most pageSize of them.
func Filter(headlines []models.Headline, pageSize int) []models.Headline {
	out := make([]models.Headline, 0, min(len(headlines), pageSize))
	for _, h := range headlines {
		if len(out) == pageSize {
			break
		}
		title := strings.TrimSpace(h.Title)
		if title == "" || title == removedTitle || strings.TrimSpace(h.URL) == "" {
			continue
		}
		h.ID = models.ArticleID(h.URL)
		out = append(out, h)
	}
	return out
}
