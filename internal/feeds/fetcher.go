// Package feeds lists headlines from RSS and Atom feeds and extracts the
// readable text of article pages.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/news"
)

// Compile-time interface check.
var _ news.Source = (*Fetcher)(nil)

const (
	httpTimeout    = 30 * time.Second
	maxConcurrent  = 10
	rateLimitDelay = 1 * time.Second
	maxWords       = 5000
)

// Fetcher lists headlines from a fixed set of feeds with per-domain rate
// limiting and bounded concurrency.
type Fetcher struct {
	feeds    []string
	pageSize int
	client   *http.Client

	delay       time.Duration
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher for the given feed URLs. Listings are cut to
// pageSize headlines.
func NewFetcher(feedURLs []string, pageSize int) *Fetcher {
	return &Fetcher{
		feeds:    feedURLs,
		pageSize: pageSize,
		client: &http.Client{
			Timeout: httpTimeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		delay:       rateLimitDelay,
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject browser-like
// headers on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	// Some news sites answer 403 to non-browser agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; NewsBuddy/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.base.RoundTrip(req)
}

// List fetches every feed concurrently and merges their items newest first.
// A search query keeps items whose title or description contains it; the
// category and country are not meaningful for feeds and are ignored.
// Individual feed failures are logged and skipped. Only when every feed
// fails is a network error returned.
func (f *Fetcher) List(ctx context.Context, q models.HeadlineQuery) ([]models.Headline, error) {
	var (
		all  []models.Headline
		errs []error
		mu   sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, feedURL := range f.feeds {
		g.Go(func() error {
			items, err := f.fetchSingleFeed(gctx, feedURL)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				slog.Warn("failed to fetch feed", "url", feedURL, "error", err)
				errs = append(errs, err)
				return nil // skip failures, don't fail the batch
			}

			all = append(all, items...)
			slog.Debug("fetched feed", "url", feedURL, "items", len(items))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	if len(f.feeds) > 0 && len(errs) == len(f.feeds) {
		return nil, &news.Error{Kind: news.KindNetwork, Err: errors.Join(errs...)}
	}

	sortNewestFirst(all)
	if q.IsSearch() {
		all = matching(all, q.Query)
	}
	headlines := news.Filter(all, f.pageSize)

	slog.Info("listed feed headlines",
		"feeds", len(f.feeds),
		"failed", len(errs),
		"kept", len(headlines),
	)
	return headlines, nil
}

// fetchSingleFeed retrieves and parses one feed.
func (f *Fetcher) fetchSingleFeed(ctx context.Context, feedURL string) ([]models.Headline, error) {
	if err := f.waitForRateLimit(ctx, extractDomain(feedURL)); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", feedURL, err)
	}

	return parseFeedItems(feed), nil
}

// waitForRateLimit enforces a minimum delay between requests to the same
// domain. It blocks until the delay has elapsed or ctx is done.
func (f *Fetcher) waitForRateLimit(ctx context.Context, domain string) error {
	for {
		f.mu.Lock()
		lastReq, ok := f.rateLimiter[domain]
		wait := time.Duration(0)
		if ok {
			wait = f.delay - time.Since(lastReq)
		}
		if wait <= 0 {
			f.rateLimiter[domain] = time.Now()
			f.mu.Unlock()
			return nil
		}
		f.mu.Unlock()

		// Re-check after sleeping: another goroutine may have claimed the slot.
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// sortNewestFirst orders headlines by publication time, undated last.
func sortNewestFirst(hs []models.Headline) {
	sort.SliceStable(hs, func(i, j int) bool {
		a, b := hs[i].PublishedAt, hs[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// matching keeps headlines whose title or description contains query,
// ignoring case.
func matching(hs []models.Headline, query string) []models.Headline {
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []models.Headline
	for _, h := range hs {
		if strings.Contains(strings.ToLower(h.Title), needle) ||
			strings.Contains(strings.ToLower(h.Description), needle) {
			out = append(out, h)
		}
	}
	return out
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
