// Package client provides the Healthie GraphQL HTTP client with retry, rate limiting,
// an optional Redis page cache, and a connectivity check.
package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/healthie-source/pkg/cache"
	"github.com/Sternrassler/healthie-source/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Healthie client operations.
var (
	healthieRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthie_requests_total",
		Help: "Total Healthie API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	healthieRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthie_request_duration_seconds",
		Help:    "Healthie API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	healthieErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthie_errors_total",
		Help: "Total Healthie API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// StagingBaseURL is the Healthie staging GraphQL endpoint.
const StagingBaseURL = "https://staging-api.gethealthie.com/graphql"

// DefaultUserAgent identifies the connector to the API.
const DefaultUserAgent = "healthie-source/0.1.0"

// Client is the Healthie GraphQL client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	tenant      string
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the GraphQL endpoint every request is POSTed to.
	BaseURL string

	// APIKey is sent as "Authorization: Basic <APIKey>". It is opaque to the client.
	APIKey string

	// UserAgent header
	UserAgent string

	// Redis client for the page cache and shared rate limit state (optional).
	// Without it caching is disabled and rate limit state is kept in memory.
	Redis *redis.Client

	// CacheTTL is how long successful pages stay cached. 0 disables caching.
	CacheTTL time.Duration

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// Retry
	MaxRetries     int           // Attempts per request, including the first
	InitialBackoff time.Duration // Overrides the per-class initial backoff when > 0
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		UserAgent:  DefaultUserAgent,
		CacheTTL:   cache.DefaultTTL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
	}
}

// New creates a new Healthie client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("max_retries must be >= 1 (got %d)", cfg.MaxRetries)
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative (got %s)", cfg.Timeout)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	logger := log.With().Str("component", "healthie-client").Logger()

	// Redis state is scoped to endpoint and API key.
	tenant := cache.Tenant(cfg.BaseURL, cfg.APIKey)

	var (
		store        ratelimit.Store = ratelimit.NewMemoryStore()
		cacheManager *cache.Manager
	)
	if cfg.Redis != nil {
		store = ratelimit.NewRedisStore(cfg.Redis, tenant)
		if cfg.CacheTTL > 0 {
			cacheManager = cache.NewManager(cfg.Redis)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.NewTracker(store, logger),
		cache:       cacheManager,
		config:      cfg,
		tenant:      tenant,
		logger:      logger,
	}, nil
}

// Do performs an HTTP request with the fixed Healthie headers, rate limit gating and
// retry. Retryable failures (5xx, 429, network) are retried with backoff; a 4xx response
// is returned as-is for the caller to inspect.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		healthieRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	c.setHeaders(req)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing Healthie request")

	var (
		resp    *http.Response
		attempt int
	)

	retryErr := retryWithBackoff(ctx, c.retryOverrides(), func() (ErrorClass, error) {
		attempt++
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return "", fmt.Errorf("rewind request body: %w", err)
			}
			req.Body = body
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
			}
			c.logger.Warn().Err(err).Msg("Rate limit check failed")
		}

		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			errClass := c.classifyError(nil, reqErr)
			healthieErrorsTotal.WithLabelValues(string(errClass)).Inc()
			healthieRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			return errClass, &TransportError{
				Method:     req.Method,
				URL:        req.URL.String(),
				ErrorClass: errClass,
				Err:        reqErr,
			}
		}

		if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.StatusCode, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}

		healthieRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := c.classifyError(resp, nil)
			healthieErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Healthie request error")

			if shouldRetry(errClass) {
				// A GraphQL errors array in the body is kept as the cause.
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return errClass, &TransportError{
					Method:     req.Method,
					URL:        req.URL.String(),
					StatusCode: resp.StatusCode,
					ErrorClass: errClass,
					Message:    resp.Status,
					Err:        graphQLErrors(body, resp.StatusCode),
				}
			}

			// Client errors are not retried; the body may carry GraphQL errors
			return "", nil
		}

		return "", nil
	})

	if retryErr != nil {
		return nil, asTransportError(req, retryErr)
	}

	return resp, nil
}

// setHeaders applies the fixed header set. Caller-supplied values are overwritten.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Basic "+c.config.APIKey)
	req.Header.Set("AuthorizationSource", "API")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
}

func (c *Client) retryOverrides() RetryConfig {
	return RetryConfig{
		MaxAttempts:    c.config.MaxRetries,
		InitialBackoff: c.config.InitialBackoff,
	}
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}
	return classifyStatus(resp.StatusCode)
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// asTransportError makes sure a failed exchange surfaces as a TransportError.
func asTransportError(req *http.Request, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{
		Method: req.Method,
		URL:    req.URL.String(),
		Err:    err,
	}
}

// Close closes the client and releases resources.
// The Redis client belongs to the caller and is left open.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}

// RateLimiter returns the rate limit tracker.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}
