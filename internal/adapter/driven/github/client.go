// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/repoanalyzer/internal/domain/port/driven"
	"github.com/ericfisherdev/repoanalyzer/internal/gate"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	// requestTimeout bounds a single HTTP attempt against the GitHub API.
	requestTimeout = 30 * time.Second

	// defaultRetryBase is the wait before the first retry of a transient
	// GraphQL failure; each later wait doubles.
	defaultRetryBase = 500 * time.Millisecond

	// defaultMaxAttempts is the total number of GraphQL attempts, including
	// the first.
	defaultMaxAttempts = 3
)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh          *gh.Client
	gate        gate.Gate
	retryBase   time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// Option configures optional Client behavior.
type Option func(*Client)

// WithGate sets the gate shared by every GraphQL call. The default admits
// every caller.
func WithGate(g gate.Gate) Option {
	return func(c *Client) {
		if g != nil {
			c.gate = g
		}
	}
}

// WithRetryBackoff sets the initial retry wait and the total number of
// attempts for transient GraphQL failures.
func WithRetryBackoff(base time.Duration, maxAttempts int) Option {
	return func(c *Client) {
		c.retryBase = base
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
	}
}

// WithLogger sets the logger used for retries and rate limit warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub API client with PAT auth)
func NewClient(token string, opts ...Option) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = requestTimeout
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return newClient(client, opts)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
// GraphQL requests are sent to "<baseURL>graphql".
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string, opts ...Option) (*Client, error) {
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return newClient(client, opts), nil
}

func newClient(client *gh.Client, opts []Option) *Client {
	c := &Client{
		gh:          client,
		gate:        gate.Unbounded(),
		retryBase:   defaultRetryBase,
		maxAttempts: defaultMaxAttempts,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// logRateLimit logs the GitHub API rate limit status after each call.
func (c *Client) logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	c.logger.Debug("github api call",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		c.logger.Warn("github rate limit low",
			"endpoint", endpoint,
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
