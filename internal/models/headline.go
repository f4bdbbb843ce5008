package models

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Headline is a single article in a headline listing.
type Headline struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage,omitempty"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// HeadlineQuery selects a listing. A non-empty Query switches sources into
// search mode, where Category and Country are ignored.
type HeadlineQuery struct {
	Category string
	Country  string
	Query    string
}

// IsSearch reports whether the query runs in search mode.
func (q HeadlineQuery) IsSearch() bool {
	return strings.TrimSpace(q.Query) != ""
}

// ArticleID returns the stable identifier used to route to an article: the
// SHA-256 hex digest of its URL.
func ArticleID(url string) string {
	h := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", h)
}

// ArticleContent is the readable text extracted from an article page.
type ArticleContent struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	SiteName    string `json:"siteName,omitempty"`
	Excerpt     string `json:"excerpt,omitempty"`
	Text        string `json:"text"`
	ReadingTime int    `json:"readingTime"` // minutes
}
