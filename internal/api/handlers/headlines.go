package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/news"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
)

// ContentExtractor fetches the readable text of an article page.
type ContentExtractor interface {
	ExtractArticle(ctx context.Context, articleURL string) (*models.ArticleContent, error)
}

// ListHeadlines handles GET /api/headlines?category=&country=&q=. The fetched
// listing replaces the stored one so article routes can resolve against it.
func ListHeadlines(store *storage.Store, source news.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := r.URL.Query()
		q := models.HeadlineQuery{
			Category: strings.TrimSpace(params.Get("category")),
			Country:  strings.TrimSpace(params.Get("country")),
			Query:    strings.TrimSpace(params.Get("q")),
		}

		headlines, err := source.List(r.Context(), q)
		if err != nil {
			slog.Error("listing headlines failed", "error", err)
			writeNewsError(w, err)
			return
		}

		if err := store.ReplaceHeadlines(r.Context(), headlines); err != nil {
			slog.Error("storing headlines failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to store headlines")
			return
		}

		writeJSON(w, http.StatusOK, headlines)
	}
}

// GetHeadline handles GET /api/headlines/{id}.
func GetHeadline(store *storage.Store, source news.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseArticleID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid article id")
			return
		}

		h, err := resolveHeadline(r.Context(), store, source, id)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, h)
	}
}

// GetArticleContent handles GET /api/headlines/{id}/content. It returns the
// article's readable text and an estimated reading time.
func GetArticleContent(store *storage.Store, source news.Source, extractor ContentExtractor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseArticleID(r, "id")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid article id")
			return
		}

		h, err := resolveHeadline(r.Context(), store, source, id)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		content, err := extractor.ExtractArticle(r.Context(), h.URL)
		if err != nil {
			slog.Warn("extracting article failed", "url", h.URL, "error", err)
			writeError(w, http.StatusBadGateway, "Could not load the full article.")
			return
		}
		if content.Title == "" {
			content.Title = h.Title
		}

		writeJSON(w, http.StatusOK, content)
	}
}

// resolveHeadline finds id in the stored listing. On a miss it refreshes the
// default listing once, which covers a reload after the server restarted, and
// looks again. It returns storage.ErrNotFound if the article is still absent.
func resolveHeadline(ctx context.Context, store *storage.Store, source news.Source, id string) (*models.Headline, error) {
	h, err := store.GetHeadlineByID(ctx, id)
	if !errors.Is(err, storage.ErrNotFound) {
		return h, err
	}

	slog.Debug("article not in listing, refreshing", "id", id)
	headlines, err := source.List(ctx, models.HeadlineQuery{})
	if err != nil {
		return nil, err
	}
	if err := store.ReplaceHeadlines(ctx, headlines); err != nil {
		return nil, fmt.Errorf("storing refreshed headlines: %w", err)
	}
	return store.GetHeadlineByID(ctx, id)
}

// writeLookupError maps a resolveHeadline failure to a response.
func writeLookupError(w http.ResponseWriter, err error) {
	var ne *news.Error
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Article not found")
	case errors.As(err, &ne):
		writeNewsError(w, err)
	default:
		slog.Error("resolving article failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load article")
	}
}
