package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/newsbuddy/internal/chat"
	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
)

type staticSource struct{ headlines []models.Headline }

func (s staticSource) List(context.Context, models.HeadlineQuery) ([]models.Headline, error) {
	out := make([]models.Headline, len(s.headlines))
	for i, h := range s.headlines {
		h.ID = models.ArticleID(h.URL)
		out[i] = h
	}
	return out, nil
}

type noExtractor struct{}

func (noExtractor) ExtractArticle(context.Context, string) (*models.ArticleContent, error) {
	return &models.ArticleContent{Text: "text"}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := storage.OpenDatabase(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))
	store := storage.NewStore(db)

	source := staticSource{headlines: []models.Headline{{Title: "Ports reopen", URL: "https://news.example/ports"}}}
	return NewRouter(store, source, noExtractor{}, chat.NewService(store, nil, nil))
}

func TestRouter_APIRoutes(t *testing.T) {
	router := newTestRouter(t)
	id := models.ArticleID("https://news.example/ports")

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/headlines", "", http.StatusOK},
		{http.MethodGet, "/api/headlines/" + id, "", http.StatusOK},
		{http.MethodGet, "/api/headlines/" + id + "/content", "", http.StatusOK},
		{http.MethodPost, "/api/chat", `{"article_id":"` + id + `"}`, http.StatusCreated},
		{http.MethodGet, "/api/chat/not-a-uuid", "", http.StatusBadRequest},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{http.MethodOptions, "/api/chat", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRouter_ChatLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"headline":{"title":"Ports reopen","url":"https://news.example/ports"}}`)))
	require.Equal(t, http.StatusCreated, w.Code)

	var sess models.ChatSession
	require.NoError(t, json.NewDecoder(w.Body).Decode(&sess))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat/"+sess.ID+"/messages", strings.NewReader(`{"text":"why?"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat/"+sess.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/chat/"+sess.ID, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouter_StaticAndSPAFallback(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path     string
		contains string
	}{
		{"/", "<title>NewsBuddy</title>"},
		{"/article/" + models.ArticleID("https://news.example/ports"), "<title>NewsBuddy</title>"},
		{"/app.js", "function route"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
