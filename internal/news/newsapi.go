package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hoanghai1803/newsbuddy/internal/models"
)

// Compile-time interface check.
var _ Source = (*NewsAPI)(nil)

const (
	defaultBaseURL  = "https://newsapi.org"
	defaultCountry  = "us"
	defaultPageSize = 12
	httpTimeout     = 15 * time.Second
)

// Options configures a NewsAPI client.
type Options struct {
	APIKey   string
	BaseURL  string
	Country  string // used when a query has no country
	Category string // used when a query has no category
	PageSize int
}

// NewsAPI lists headlines from newsapi.org.
type NewsAPI struct {
	opts   Options
	client *http.Client
}

// NewNewsAPI creates a NewsAPI client, filling unset options with defaults.
func NewNewsAPI(opts Options) *NewsAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Country == "" {
		opts.Country = defaultCountry
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	return &NewsAPI{
		opts:   opts,
		client: &http.Client{Timeout: httpTimeout},
	}
}

type apiArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

type apiResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []apiArticle `json:"articles"`
}

// List fetches headlines. A non-empty q.Query searches everything, newest
// first; otherwise the top headlines for the country and category are used.
func (c *NewsAPI) List(ctx context.Context, q models.HeadlineQuery) ([]models.Headline, error) {
	endpoint := c.endpoint(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindGeneric, Err: fmt.Errorf("creating request: %w", err)}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var apiResp apiResponse
	jsonErr := json.Unmarshal(body, &apiResp)

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if jsonErr == nil && apiResp.Message != "" {
			msg = apiResp.Message
		}
		return nil, &Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Err: errors.New(msg)}
	}
	if jsonErr != nil {
		return nil, &Error{Kind: KindGeneric, Status: resp.StatusCode, Err: fmt.Errorf("parsing response: %w", jsonErr)}
	}
	if apiResp.Status == "error" {
		return nil, &Error{Kind: KindGeneric, Status: resp.StatusCode, Err: fmt.Errorf("%s: %s", apiResp.Code, apiResp.Message)}
	}

	headlines := make([]models.Headline, 0, len(apiResp.Articles))
	for _, a := range apiResp.Articles {
		headlines = append(headlines, toHeadline(a))
	}
	headlines = Filter(headlines, c.opts.PageSize)

	slog.Info("listed headlines",
		"search", q.IsSearch(),
		"received", len(apiResp.Articles),
		"kept", len(headlines),
		"duration", time.Since(start),
	)
	return headlines, nil
}

// endpoint builds the request URL for q, including the API key.
func (c *NewsAPI) endpoint(q models.HeadlineQuery) string {
	params := url.Values{}
	params.Set("pageSize", strconv.Itoa(c.opts.PageSize))
	params.Set("apiKey", c.opts.APIKey)

	if q.IsSearch() {
		params.Set("q", strings.TrimSpace(q.Query))
		params.Set("sortBy", "publishedAt")
		params.Set("language", "en")
		return c.opts.BaseURL + "/v2/everything?" + params.Encode()
	}

	country := q.Country
	if country == "" {
		country = c.opts.Country
	}
	params.Set("country", country)

	category := q.Category
	if category == "" {
		category = c.opts.Category
	}
	if category != "" {
		params.Set("category", category)
	}
	return c.opts.BaseURL + "/v2/top-headlines?" + params.Encode()
}

func toHeadline(a apiArticle) models.Headline {
	h := models.Headline{
		Title:       strings.TrimSpace(a.Title),
		Description: strings.TrimSpace(a.Description),
		URL:         strings.TrimSpace(a.URL),
		URLToImage:  a.URLToImage,
		Source:      a.Source.Name,
	}
	if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		h.PublishedAt = &t
	}
	return h
}
