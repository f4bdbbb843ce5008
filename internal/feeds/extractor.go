package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// ExtractArticle fetches the page at articleURL and returns its main readable
// text using go-readability. The text is truncated to 5000 words.
func (f *Fetcher) ExtractArticle(ctx context.Context, articleURL string) (*models.ArticleContent, error) {
	pageURL, err := url.Parse(articleURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid article URL %q", articleURL)
	}

	if err := f.waitForRateLimit(ctx, pageURL.Hostname()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article %q: %w", articleURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching article %q: status %d", articleURL, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("readability extraction: %w", err)
	}

	text := truncateWords(strings.TrimSpace(article.TextContent), maxWords)
	slog.Debug("extracted article", "url", articleURL, "words", countWords(text))

	return &models.ArticleContent{
		ID:          models.ArticleID(articleURL),
		URL:         articleURL,
		Title:       article.Title,
		SiteName:    article.SiteName,
		Excerpt:     article.Excerpt,
		Text:        text,
		ReadingTime: CalculateReadingTime(text),
	}, nil
}

// truncateWords returns the first maxWords whitespace-delimited words from s.
// If s contains fewer than maxWords words, it is returned unchanged.
func truncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ")
}
