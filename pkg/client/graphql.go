package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Sternrassler/healthie-source/pkg/cache"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	healthieGraphQLErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthie_graphql_errors_total",
		Help: "Total responses rejected because of a GraphQL errors array or an undecodable body",
	})
)

// Request is the body of a GraphQL POST.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Location points into the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of a response's errors array.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (e GraphQLError) Error() string {
	if e.Message == "" {
		return "unknown graphql error"
	}
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return fmt.Sprintf("%s (path %s)", e.Message, strings.Join(parts, "."))
}

// Response is a decoded GraphQL response page. Data maps each top-level field to its
// undecoded value.
type Response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []GraphQLError             `json:"errors,omitempty"`
}

// Fetch sends document with variables as one logical POST and returns the decoded body.
// Nil variables are sent as {}.
//
// A body that does not decode, or that carries an errors array, is returned as
// *APIResponseError. Failures of the HTTP exchange itself are *TransportError.
func (c *Client) Fetch(ctx context.Context, document string, variables map[string]any) (*Response, error) {
	return c.fetch(ctx, document, variables, c.cache != nil)
}

func (c *Client) fetch(ctx context.Context, document string, variables map[string]any, useCache bool) (*Response, error) {
	if variables == nil {
		variables = map[string]any{}
	}

	key := cache.CacheKey{Tenant: c.tenant, Query: document, Variables: variables}
	if useCache {
		if page, ok := c.cached(ctx, key); ok {
			return page, nil
		}
	}

	body, err := json.Marshal(Request{Query: document, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	page, err := decodeResponse(raw, resp.StatusCode, req)
	if err != nil {
		if errors.Is(err, ErrAPIResponse) {
			healthieGraphQLErrorsTotal.Inc()
		}
		return nil, err
	}

	if useCache && resp.StatusCode == http.StatusOK {
		if err := c.cache.Set(ctx, key, cache.NewEntry(raw, c.config.CacheTTL)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return page, nil
}

// cached returns a page from the cache. Cache failures are logged and treated as misses.
func (c *Client) cached(ctx context.Context, key cache.CacheKey) (*Response, bool) {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Msg("Cache get error")
		}
		return nil, false
	}

	page, err := decodeResponse(entry.Data, entry.StatusCode, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Discarding undecodable cache entry")
		_ = c.cache.Delete(ctx, key)
		return nil, false
	}

	c.logger.Debug().
		Str("key", key.String()).
		Msg("Serving page from cache")
	return page, true
}

// decodeResponse turns a response body into a Response or the matching error.
// req, when set, names the exchange in transport errors.
func decodeResponse(raw []byte, status int, req *http.Request) (*Response, error) {
	var page Response
	if err := json.Unmarshal(raw, &page); err != nil {
		if status >= 300 {
			return nil, statusError(status, req)
		}
		return nil, &APIResponseError{StatusCode: status, Raw: raw, Err: err}
	}

	if len(page.Errors) > 0 {
		return nil, &APIResponseError{StatusCode: status, Errors: page.Errors, Raw: raw}
	}

	if status >= 300 {
		return nil, statusError(status, req)
	}

	return &page, nil
}

func statusError(status int, req *http.Request) *TransportError {
	te := &TransportError{
		StatusCode: status,
		ErrorClass: classifyStatus(status),
		Message:    http.StatusText(status),
	}
	if req != nil {
		te.Method = req.Method
		te.URL = req.URL.String()
	}
	return te
}

// maxErrorBody bounds how much of a retryable error response is inspected.
const maxErrorBody = 64 << 10

// graphQLErrors returns the errors array of a failed response body as an
// *APIResponseError, or nil when the body carries none.
func graphQLErrors(body []byte, status int) error {
	var page Response
	if err := json.Unmarshal(body, &page); err != nil || len(page.Errors) == 0 {
		return nil
	}
	return &APIResponseError{StatusCode: status, Errors: page.Errors, Raw: body}
}
