package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWords int
		want     string
	}{
		{
			name:     "under limit returns original",
			input:    "hello world",
			maxWords: 5,
			want:     "hello world",
		},
		{
			name:     "exactly at limit returns original",
			input:    "one two three",
			maxWords: 3,
			want:     "one two three",
		},
		{
			name:     "over limit is truncated",
			input:    "one two three four five six",
			maxWords: 3,
			want:     "one two three",
		},
		{
			name:     "empty string returns empty",
			input:    "",
			maxWords: 5,
			want:     "",
		},
		{
			name:     "single word at limit",
			input:    "hello",
			maxWords: 1,
			want:     "hello",
		},
		{
			name:     "multiple spaces between words",
			input:    "one   two   three   four",
			maxWords: 2,
			want:     "one two",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  one two three  ",
			maxWords: 2,
			want:     "one two",
		},
		{
			name:     "tabs and newlines",
			input:    "one\ttwo\nthree\rfour",
			maxWords: 2,
			want:     "one two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateWords(tt.input, tt.maxWords)
			if got != tt.want {
				t.Errorf("truncateWords(%q, %d) = %q, want %q", tt.input, tt.maxWords, got, tt.want)
			}
		})
	}
}

const articlePage = `<!DOCTYPE html>
<html><head><title>Ports reopen after storm</title>
<meta property="og:site_name" content="World Desk"></head>
<body>
<nav><a href="/">Home</a> <a href="/world">World</a></nav>
<article>
<h1>Ports reopen after storm</h1>
<p>Shipping resumed on Tuesday at the three largest ports on the coast after a week of closures caused by the storm, officials said, as crews cleared debris from the main channels.</p>
<p>Harbour authorities said the backlog of container ships waiting offshore would take at least ten days to clear, and warned that some deliveries to inland warehouses would be delayed.</p>
<p>Insurers are still assessing damage to cranes and warehouses, and the regional government has promised emergency funds for dock workers who lost wages during the shutdown.</p>
</article>
<footer>Copyright World Desk</footer>
</body></html>`

func TestExtractArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/story" {
			http.NotFound(w, r)
			return
		}
		assert.Contains(t, r.Header.Get("User-Agent"), "NewsBuddy")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	f := NewFetcher(nil, 12)
	articleURL := srv.URL + "/story"

	got, err := f.ExtractArticle(context.Background(), articleURL)
	require.NoError(t, err)

	assert.Equal(t, models.ArticleID(articleURL), got.ID)
	assert.Equal(t, articleURL, got.URL)
	assert.Contains(t, got.Text, "Shipping resumed on Tuesday")
	assert.Contains(t, got.Text, "emergency funds")
	assert.Equal(t, 1, got.ReadingTime)
	assert.LessOrEqual(t, len(strings.Fields(got.Text)), maxWords)
}

func TestExtractArticle_Errors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	tests := []struct {
		name string
		url  string
	}{
		{name: "not found", url: srv.URL + "/missing"},
		{name: "unsupported scheme", url: "ftp://example.com/file"},
		{name: "garbage", url: "::not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFetcher(nil, 12).ExtractArticle(context.Background(), tt.url)
			assert.Error(t, err)
		})
	}
}
