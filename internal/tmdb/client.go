package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/justestif/go-moodflix/internal/metrics"
	"github.com/justestif/go-moodflix/internal/random"
)

const (
	userAgent = "go-moodflix/1.0"

	discoverPath = "/discover/movie"
	searchPath   = "/search/movie"

	maxBodyBytes = 4 << 20
)

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status from TMDB")

// StatusError carries a non-2xx HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB returned status %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// ResponseCache stores raw catalog responses. Implementations own the TTL.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
}

// Client is a TMDB API client.
type Client struct {
	apiKey       string
	httpClient   *http.Client
	baseURL      string
	imageBaseURL string

	breaker *breaker
	cache   ResponseCache
	rng     random.Source
}

// Option configures a Client.
type Option func(*Client)

// WithCache enables response caching.
func WithCache(cache ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithRandom sets the random source for sort order, page choice and tie-breaking.
func WithRandom(src random.Source) Option {
	return func(c *Client) {
		if src != nil {
			c.rng = src
		}
	}
}

// NewClient creates a TMDB client. A read token is sent as an OAuth2 bearer
// token; otherwise the API key is added to every query string.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()

	httpClient := &http.Client{Timeout: cfg.Timeout}
	apiKey := cfg.APIKey
	if cfg.ReadToken != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.ReadToken,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = cfg.Timeout
		apiKey = ""
	}

	c := &Client{
		apiKey:       apiKey,
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		breaker:      newBreaker("tmdb-api"),
		rng:          random.NewFromTime(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PosterURL resolves a poster path to an absolute image URL. Empty paths stay empty.
func (c *Client) PosterURL(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case !strings.HasPrefix(path, "/"):
		path = "/" + path
	}
	return c.imageBaseURL + path
}

// Search runs a free-text title search and returns one page of results.
func (c *Client) Search(ctx context.Context, text string, page int) ([]Movie, error) {
	params := url.Values{
		"query":         {text},
		"include_adult": {"false"},
	}
	resp, err := c.fetchPage(ctx, searchPath, params, page)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// fetchPage requests one page of a paginated endpoint.
func (c *Client) fetchPage(ctx context.Context, endpoint string, params url.Values, page int) (*pageResponse, error) {
	p := cloneValues(params)
	p.Set("page", fmt.Sprint(max(page, 1)))

	body, err := c.doRequest(ctx, endpoint, p)
	if err != nil {
		return nil, err
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	if resp.Results == nil {
		resp.Results = []Movie{}
	}
	return &resp, nil
}

// doRequest performs a cached, breaker-protected GET. Credentials never
// appear in cache keys.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	cacheKey := "tmdb:" + endpoint + "?" + params.Encode()
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
			return body, nil
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	q := cloneValues(params)
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + endpoint + "?" + q.Encode()

	body, err := c.breaker.execute(func() ([]byte, error) {
		return c.doSingleRequest(ctx, endpoint, reqURL)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, body)
	}
	return body, nil
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveCatalogRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	metrics.ObserveCatalogRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
