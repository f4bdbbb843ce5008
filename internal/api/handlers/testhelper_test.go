package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/newsbuddy/internal/models"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(storage.MemoryPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

// withURLParams returns r with chi URL parameters set, as the router would.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// fakeSource is a news.Source returning a fixed listing.
type fakeSource struct {
	mu        sync.Mutex
	headlines []models.Headline
	err       error
	queries   []models.HeadlineQuery
}

func (f *fakeSource) List(_ context.Context, q models.HeadlineQuery) ([]models.Headline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Headline, len(f.headlines))
	for i, h := range f.headlines {
		h.ID = models.ArticleID(h.URL)
		out[i] = h
	}
	return out, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

var sampleHeadlines = []models.Headline{
	{Title: "Ports reopen after storm", Description: "Shipping resumed on Tuesday.", URL: "https://news.example/ports"},
	{Title: "Rates held steady", URL: "https://news.example/rates"},
}
