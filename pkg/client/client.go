// Package client is the HTTP client for the boutique hotel REST API, with
// response caching, rate limit gating, retries and Prometheus metrics.
package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/boutique-hotel-client/pkg/cache"
	"github.com/Sternrassler/boutique-hotel-client/pkg/logging"
	"github.com/Sternrassler/boutique-hotel-client/pkg/ratelimit"
)

// DefaultBaseURL is the public hotel API.
const DefaultBaseURL = "https://boutique-hotel.helmuth-lammer.at/api/v1"

// DefaultUserAgent identifies this client to the API.
const DefaultUserAgent = "boutique-hotel-client/1.0"

// Client talks to the hotel API.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	cache       *cache.Store
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. DefaultBaseURL.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Redis enables the response cache and shares rate limit state.
	// Optional: nil disables caching and keeps rate limit state in memory.
	Redis *redis.Client

	// Timeout per HTTP attempt.
	Timeout time.Duration

	// MaxConcurrency bounds fan-out requests such as availability checks.
	MaxConcurrency int

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL string, rdb *redis.Client) Config {
	return Config{
		BaseURL:        baseURL,
		UserAgent:      DefaultUserAgent,
		Redis:          rdb,
		Timeout:        15 * time.Second,
		MaxConcurrency: 5,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// New creates a client. BaseURL must be an absolute http or https URL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 1
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	logger := logging.NewLogger(logging.ComponentClient)

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     logger,
	}

	if cfg.Redis != nil {
		c.cache, err = cache.NewStore(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logging.NewLogger(logging.ComponentRateLimit))
	} else {
		c.rateLimiter = ratelimit.NewTracker(nil, logging.NewLogger(logging.ComponentRateLimit))
	}

	return c, nil
}

// Do performs req with rate limiting, caching and retries.
//
// Responses with 4xx statuses are returned as-is so callers can decode the
// API's error body; 5xx, 429 and transport failures are retried for GET and
// HEAD requests and reported as errors once retries are exhausted. A 304 to a
// conditional request is answered from the cache, or refetched once without
// the conditional headers when nothing is cached.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	rt := route(c.relPath(req))

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(rt).Observe(time.Since(start).Seconds())
	}()

	allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if !allowed {
		requestsTotal.WithLabelValues(rt, "rate_limited").Inc()
		return nil, ErrRateLimited
	}

	cacheable := c.cache != nil && req.Method == http.MethodGet
	key := c.cacheKey(req)

	var cached *cache.Entry
	if cacheable {
		cached, err = c.cache.Get(ctx, key)
		switch {
		case err == nil && !cached.Expired():
			requestsTotal.WithLabelValues(rt, "cached").Inc()
			c.logger.Debug().Str("endpoint", req.URL.Path).Msg("Serving response from cache")
			return cached.Response(req), nil
		case err == nil:
			cache.Revalidate(req, cached)
			cache.ConditionalRequests.Inc()
		case errors.Is(err, cache.ErrCacheMiss):
			cached = nil
		default:
			cached = nil
			c.logger.Warn().Err(err).Str("endpoint", req.URL.Path).Msg("Cache get error")
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	c.logger.Debug().
		Str("endpoint", req.URL.Path).
		Str("method", req.Method).
		Msg("Executing hotel API request")

	retryCfg := DefaultRetryConfig()
	retryCfg.MaxAttempts = 1
	if idempotent(req.Method) {
		retryCfg.MaxAttempts = c.config.MaxRetries + 1
	}
	if c.config.InitialBackoff > 0 {
		retryCfg.InitialBackoff = c.config.InitialBackoff
	}
	if c.config.MaxBackoff > 0 {
		retryCfg.MaxBackoff = c.config.MaxBackoff
	}

	var resp *http.Response
	err = retryWithBackoff(ctx, retryCfg, c.logger, func() (ErrorClass, error) {
		attempt, err := c.send(req)
		if err != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(rt, "network_error").Inc()
			c.logger.Warn().Err(err).Str("endpoint", req.URL.Path).Msg("HTTP request failed")
			return ErrorClassNetwork, err
		}

		if err := c.rateLimiter.Observe(ctx, attempt.StatusCode, attempt.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
		requestsTotal.WithLabelValues(rt, strconv.Itoa(attempt.StatusCode)).Inc()

		class := classify(attempt.StatusCode, nil)
		if class == "" {
			resp = attempt
			return "", nil
		}

		errorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", req.URL.Path).
			Int("status", attempt.StatusCode).
			Str("error_class", string(class)).
			Msg("Hotel API request error")

		if !shouldRetry(class) || !idempotent(req.Method) {
			resp = attempt
			return "", nil
		}

		body, _ := io.ReadAll(io.LimitReader(attempt.Body, 64<<10))
		attempt.Body.Close()
		apiErr := newAPIError(attempt.StatusCode, body)
		return class, apiErr
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		resp.Body.Close()
		cache.NotModified.Inc()
		c.logger.Debug().Str("endpoint", req.URL.Path).Msg("304 Not Modified - using cache")

		expires := time.Now().Add(cache.DefaultTTL)
		if exp := resp.Header.Get("Expires"); exp != "" {
			if t, err := http.ParseTime(exp); err == nil {
				expires = t
			}
		}
		if err := c.cache.Extend(ctx, key, expires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to extend cache entry")
		}
		return cached.Response(req), nil
	}

	if resp.StatusCode == http.StatusNotModified && conditional(req) {
		// Nothing cached to answer the 304 with; ask for the full body once.
		resp.Body.Close()
		c.logger.Debug().Str("endpoint", req.URL.Path).Msg("304 Not Modified without cache entry - refetching")

		full := req.Clone(ctx)
		full.Header.Del("If-None-Match")
		full.Header.Del("If-Modified-Since")
		return c.Do(full)
	}

	if cacheable && resp.StatusCode == http.StatusOK {
		entry, err := cache.FromResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

func conditional(req *http.Request) bool {
	return req.Header.Get("If-None-Match") != "" || req.Header.Get("If-Modified-Since") != ""
}

// send performs a single attempt, rewinding the request body if needed.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		req.Body = body
	}
	return c.httpClient.Do(req)
}

// NewRequest builds a request for path relative to the base URL. A non-empty
// token is sent as a bearer token; a non-nil body is encoded as JSON.
func (c *Client) NewRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// Get performs a GET request for path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// GetJSON performs a GET and decodes a 2xx body into out.
func (c *Client) GetJSON(ctx context.Context, path, token string, out any) error {
	req, err := c.NewRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// PostJSON sends in as JSON and decodes a 2xx body into out. out may be nil.
func (c *Client) PostJSON(ctx context.Context, path, token string, in, out any) error {
	req, err := c.NewRequest(ctx, http.MethodPost, path, token, in)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// Invalidate drops cached responses under path. It is a no-op without Redis.
func (c *Client) Invalidate(ctx context.Context, path string) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Invalidate(ctx, path)
}

// cacheKey keys responses by path relative to the base URL, query and the
// caller's bearer token, so user-specific answers are never shared.
func (c *Client) cacheKey(req *http.Request) cache.Key {
	key := cache.Key{Path: c.relPath(req), Query: req.URL.Query()}
	if auth := req.Header.Get("Authorization"); auth != "" {
		sum := sha256.Sum256([]byte(auth))
		key.Scope = hex.EncodeToString(sum[:8])
	}
	return key
}

// relPath strips the base URL's path prefix from req's path.
func (c *Client) relPath(req *http.Request) string {
	return strings.TrimPrefix(req.URL.Path, c.baseURL.Path)
}

func idempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// MaxConcurrency returns the configured fan-out bound.
func (c *Client) MaxConcurrency() int {
	return c.config.MaxConcurrency
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
