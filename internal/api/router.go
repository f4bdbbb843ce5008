package api

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hoanghai1803/newsbuddy/internal/api/handlers"
	"github.com/hoanghai1803/newsbuddy/internal/chat"
	"github.com/hoanghai1803/newsbuddy/internal/news"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
)

//go:embed all:dist
var distFS embed.FS

// NewRouter creates the HTTP router with the API routes and the embedded
// single-page front end.
func NewRouter(store *storage.Store, source news.Source, extractor handlers.ContentExtractor, chats *chat.Service) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/headlines", handlers.ListHeadlines(store, source))
		api.Get("/headlines/{id}", handlers.GetHeadline(store, source))
		api.Get("/headlines/{id}/content", handlers.GetArticleContent(store, source, extractor))

		api.Post("/chat", handlers.OpenChat(store, source, chats))
		api.Get("/chat/{id}", handlers.GetChat(chats))
		api.Post("/chat/{id}/messages", handlers.SendMessage(chats))
		api.Delete("/chat/{id}", handlers.CloseChat(chats))

		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
		})
	})

	distContent, _ := fs.Sub(distFS, "dist")
	fileServer := http.FileServer(http.FS(distContent))

	// Paths that are not static files get index.html so the page can route
	// on the client, e.g. /article/{id}.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}
		if f, err := distContent.Open(name); err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})

	return r
}
