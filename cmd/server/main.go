package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/hoanghai1803/newsbuddy/internal/ai"
	"github.com/hoanghai1803/newsbuddy/internal/api"
	"github.com/hoanghai1803/newsbuddy/internal/chat"
	"github.com/hoanghai1803/newsbuddy/internal/config"
	"github.com/hoanghai1803/newsbuddy/internal/feeds"
	"github.com/hoanghai1803/newsbuddy/internal/logger"
	"github.com/hoanghai1803/newsbuddy/internal/news"
	"github.com/hoanghai1803/newsbuddy/internal/storage"
	"github.com/hoanghai1803/newsbuddy/internal/suggest"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	noBrowser := flag.Bool("no-browser", false, "do not open the browser on start")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.Log.Level, cfg.Log.Format))

	// Listing and chat state live only as long as the process.
	db, err := storage.OpenDatabase(storage.MemoryPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(db)

	// The fetcher extracts article text for either source; with the rss
	// provider it also lists the headlines.
	fetcher := feeds.NewFetcher(cfg.News.Feeds, cfg.News.PageSize)
	source := newHeadlineSource(cfg, fetcher)

	// Without an API key the chat opens but cannot answer; handlers report 503.
	var (
		asker     chat.Asker
		suggester chat.Suggester
	)
	if cfg.AI.APIKey != "" {
		provider, err := ai.NewProvider(ai.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			slog.Error("failed to create AI provider", "error", err)
			os.Exit(1)
		}

		limiter := ai.NewLimiter(
			time.Duration(cfg.Limiter.BaseDelayMS)*time.Millisecond,
			time.Duration(cfg.Limiter.MaxDelayMS)*time.Millisecond,
		)
		client := ai.NewClient(provider, limiter, cfg.Limiter.MaxRetries)
		asker = client
		suggester = suggest.NewGenerator(client)
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, chat answers will be disabled")
	}

	chats := chat.NewService(store, asker, suggester)
	router := api.NewRouter(store, source, fetcher, chats)

	// Determine server address (localhost only for security).
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Auto-open browser after a short delay to let the server start.
	if cfg.Server.AutoOpenBrowser && !*noBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			openBrowser("http://" + addr)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "addr", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}

// newHeadlineSource returns the configured headline source.
func newHeadlineSource(cfg *config.Config, fetcher *feeds.Fetcher) news.Source {
	if cfg.News.Provider == "rss" {
		slog.Info("listing headlines from feeds", "feeds", len(cfg.News.Feeds))
		return fetcher
	}
	return news.NewNewsAPI(news.Options{
		APIKey:   cfg.News.APIKey,
		BaseURL:  cfg.News.BaseURL,
		Country:  cfg.News.Country,
		Category: cfg.News.Category,
		PageSize: cfg.News.PageSize,
	})
}

// openBrowser opens the given URL in the user's default browser.
// It is a fire-and-forget operation; errors are silently ignored.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
