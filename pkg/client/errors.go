package client

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport error")

	// ErrAPIResponse matches every *APIResponseError.
	ErrAPIResponse = errors.New("api response error")
)

// TransportError is a failure to complete the HTTP exchange: network, DNS or timeout
// errors, or a non-2xx status whose body carries no GraphQL errors.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	class := string(e.ErrorClass)
	if class == "" {
		class = "transport"
	}

	if e.StatusCode > 0 {
		msg := e.Message
		if e.URL != "" {
			msg = fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
		}
		if e.Err != nil {
			return fmt.Sprintf("healthie %s error (status %d): %s: %v",
				class, e.StatusCode, msg, e.Err)
		}
		return fmt.Sprintf("healthie %s error (status %d): %s",
			class, e.StatusCode, msg)
	}
	return fmt.Sprintf("healthie %s error: %s %s: %v", class, e.Method, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// APIResponseError is a response the API did send but that cannot be used: a body
// that does not decode, or a decoded body with a non-empty errors array.
type APIResponseError struct {
	StatusCode int

	// Errors is the GraphQL errors payload, empty when the body did not decode.
	Errors []GraphQLError

	// Raw is the undecoded response body.
	Raw []byte

	// Err is the decode error, nil when Errors is set.
	Err error
}

// Error implements the error interface.
func (e *APIResponseError) Error() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, 0, len(e.Errors))
		for _, ge := range e.Errors {
			msgs = append(msgs, ge.Error())
		}
		return "healthie api error: " + strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("healthie api error: decode response (status %d): %v", e.StatusCode, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIResponseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAPIResponse.
func (e *APIResponseError) Is(target error) bool {
	return target == ErrAPIResponse
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassClient:
		// 4xx errors are not retried; the same request will fail again
		return false
	case ErrorClassServer:
		return true
	case ErrorClassRateLimit:
		// 429 is retried after the Retry-After window
		return true
	case ErrorClassNetwork:
		return true
	default:
		return false
	}
}
