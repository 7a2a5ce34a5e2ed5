/*
Package github is a small client for the repository search endpoint of the
GitHub REST API.

Client performs single page requests. Pager and FetchAll accumulate pages
up to a cap, treating total_count as the authority on whether more pages
exist.
*/
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/khanglvm/gh-repo-search/internal/config"
	"github.com/khanglvm/gh-repo-search/internal/version"
)

const (
	// DefaultRequestsPerMinute matches the unauthenticated search quota.
	DefaultRequestsPerMinute = 10

	defaultTimeout = 10 * time.Second
	acceptHeader   = "application/vnd.github+json"
	apiVersion     = "2022-11-28"
)

// Searcher fetches one page of repository results.
type Searcher interface {
	SearchRepositories(ctx context.Context, term string, page int) (*SearchResponse, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends the token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithLimiter replaces the request limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPerPage sets the per_page parameter. Zero leaves it to the server.
func WithPerPage(n int) Option {
	return func(c *Client) { c.perPage = n }
}

// NewLimiter returns a limiter allowing rpm requests per minute, bursting
// up to the whole quota.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

// Client calls the GitHub search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	limiter    *rate.Limiter
	logger     *log.Logger
	perPage    int
}

// NewClient creates a client for the API rooted at baseURL, such as
// https://api.github.com or https://ghes.example.com/api/v3.
// It returns a *config.ConfigurationError when baseURL is missing or not
// an absolute http(s) URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    NewLimiter(DefaultRequestsPerMinute),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig builds a client from the github section of the config.
func NewClientFromConfig(cfg config.GitHubConfig, logger *log.Logger) (*Client, error) {
	return NewClient(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithToken(cfg.Token),
		WithLimiter(NewLimiter(cfg.RequestsPerMinute)),
		WithPerPage(cfg.PerPage),
		WithLogger(logger),
	)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchRepositories fetches one page (1-based) of results for term.
func (c *Client) SearchRepositories(ctx context.Context, term string, page int) (*SearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}
	if page < 1 {
		page = 1
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(term, page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", version.UserAgent())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("search request", "term", term, "page", page)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		ne := &NetworkError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(body, "message").String(),
		}
		c.logger.Warn("search request failed", "term", term, "page", page, "status", resp.StatusCode, "message", ne.Message)
		return nil, ne
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.Debug("search response", "term", term, "page", page, "total", result.TotalCount, "items", len(result.Items))
	return &result, nil
}

func (c *Client) searchURL(term string, page int) string {
	q := url.Values{}
	q.Set("q", term)
	q.Set("page", strconv.Itoa(page))
	if c.perPage > 0 {
		q.Set("per_page", strconv.Itoa(c.perPage))
	}
	return c.baseURL + "/search/repositories?" + q.Encode()
}
