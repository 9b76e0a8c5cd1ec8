// Package testutil provides a mock Healthie GraphQL server for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// MockResponse defines a canned response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// ReceivedRequest is one request as seen by the mock.
type ReceivedRequest struct {
	Method    string
	Header    http.Header
	Query     string
	Variables map[string]any
	Fields    []string
}

// Offset returns the offset variable, or -1 when it was not sent.
func (r ReceivedRequest) Offset() int {
	v, ok := r.Variables["offset"]
	if !ok {
		return -1
	}
	f, ok := v.(float64)
	if !ok {
		return -1
	}
	return int(f)
}

// Responder builds the response for a request.
type Responder func(r ReceivedRequest) MockResponse

// MockAPI is a configurable mock Healthie GraphQL server.
type MockAPI struct {
	server *httptest.Server

	mu         sync.RWMutex
	responders map[string]Responder
	failures   []MockResponse
	requests   []ReceivedRequest
}

var topLevelField = regexp.MustCompile(`(?m)^  ([A-Za-z_][A-Za-z0-9_]*)`)

// TopLevelFields lists the root selections of a query document.
func TopLevelFields(document string) []string {
	var fields []string
	for _, m := range topLevelField.FindAllStringSubmatch(document, -1) {
		fields = append(fields, m[1])
	}
	return fields
}

// NewMockAPI creates a mock server. currentUser answers with a user by default;
// any other unrouted field answers with an empty list.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		responders: make(map[string]Responder),
	}
	mock.ServeData("currentUser", map[string]any{"currentUser": map[string]any{"id": "1"}})

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

func (m *MockAPI) handle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf(`{"errors":[{"message":%q}]}`, err.Error()), http.StatusBadRequest)
		return
	}

	req := ReceivedRequest{
		Method:    r.Method,
		Header:    r.Header.Clone(),
		Query:     body.Query,
		Variables: body.Variables,
		Fields:    TopLevelFields(body.Query),
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var resp MockResponse
	if len(m.failures) > 0 {
		resp = m.failures[0]
		m.failures = m.failures[1:]
		m.mu.Unlock()
	} else {
		responder := m.route(req.Fields)
		m.mu.Unlock()
		resp = responder(req)
	}

	write(w, resp)
}

func (m *MockAPI) route(fields []string) Responder {
	for _, f := range fields {
		if r, ok := m.responders[f]; ok {
			return r
		}
	}
	return func(req ReceivedRequest) MockResponse {
		data := make(map[string]any, len(req.Fields))
		for _, f := range req.Fields {
			data[f] = []any{}
		}
		return JSONResponse(map[string]any{"data": data})
	}
}

func write(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded requests and pending failures.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.failures = nil
}

// Handle routes every request that selects field to responder.
func (m *MockAPI) Handle(field string, responder Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders[field] = responder
}

// ServeData answers requests selecting field with a fixed data object.
func (m *MockAPI) ServeData(field string, data map[string]any) {
	m.Handle(field, func(ReceivedRequest) MockResponse {
		return JSONResponse(map[string]any{"data": data})
	})
}

// ServeList pages records for field by the offset variable, pageSize at a time.
// A request without offset gets every record.
func (m *MockAPI) ServeList(field string, records []map[string]any, pageSize int) {
	m.Handle(field, func(req ReceivedRequest) MockResponse {
		page := records
		if off := req.Offset(); off >= 0 {
			page = window(records, off, pageSize)
		}
		if page == nil {
			page = []map[string]any{}
		}
		return JSONResponse(map[string]any{"data": map[string]any{field: page}})
	})
}

// ServeErrors answers requests selecting field with a GraphQL errors array.
func (m *MockAPI) ServeErrors(field string, messages ...string) {
	m.Handle(field, func(ReceivedRequest) MockResponse {
		return ErrorsResponse(messages...)
	})
}

// FailNext makes the next requests, whatever they select, answer with resps in order.
func (m *MockAPI) FailNext(resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, resps...)
}

// Requests returns a copy of the recorded requests.
func (m *MockAPI) Requests() []ReceivedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ReceivedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// RequestsFor returns the recorded requests that selected field.
func (m *MockAPI) RequestsFor(field string) []ReceivedRequest {
	var out []ReceivedRequest
	for _, r := range m.Requests() {
		for _, f := range r.Fields {
			if f == field {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func window(records []map[string]any, offset, size int) []map[string]any {
	if offset >= len(records) {
		return nil
	}
	end := offset + size
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end]
}

// Records builds n records with ids "1".."n".
func Records(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": fmt.Sprint(i + 1)}
	}
	return out
}

// JSONResponse creates a 200 OK response with v as the body.
func JSONResponse(v any) MockResponse {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"RateLimit-Remaining": "100",
			"RateLimit-Reset":     "60",
		},
	}
}

// ErrorsResponse creates a 200 OK response carrying a GraphQL errors array.
func ErrorsResponse(messages ...string) MockResponse {
	errs := make([]map[string]any, len(messages))
	for i, msg := range messages {
		errs[i] = map[string]any{"message": msg}
	}
	return JSONResponse(map[string]any{"data": nil, "errors": errs})
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Retry-After":         retryAfter,
			"RateLimit-Remaining": "0",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `<html>Internal server error</html>`,
		Headers:    map[string]string{"Content-Type": "text/html"},
	}
}
