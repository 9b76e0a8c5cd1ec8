package client

import (
	"context"
	"errors"

	"github.com/Sternrassler/healthie-source/pkg/catalog"
)

// CheckStatus is the outcome of a connectivity check.
type CheckStatus string

const (
	CheckSucceeded CheckStatus = "SUCCEEDED"
	CheckFailed    CheckStatus = "FAILED"
)

// ConnectFailureMessage is reported when the check request could not be completed.
const ConnectFailureMessage = "Unable to connect to the API with the provided credentials"

// CheckResult reports whether the configured credentials reach the API.
type CheckResult struct {
	Status  CheckStatus
	Message string

	// Errors is the API's errors payload when the check query was rejected.
	Errors []GraphQLError
}

// OK reports whether the check succeeded.
func (r CheckResult) OK() bool {
	return r.Status == CheckSucceeded
}

// Check sends the currentUser query once with empty variables, bypassing the cache.
// Failures are reported in the result, never as a Go error.
func (c *Client) Check(ctx context.Context) CheckResult {
	_, err := c.fetch(ctx, catalog.CurrentUser.Document, map[string]any{}, false)
	if err == nil {
		c.logger.Info().Msg("Connectivity check succeeded")
		return CheckResult{Status: CheckSucceeded}
	}

	var apiErr *APIResponseError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		c.logger.Error().Err(err).Msg("Connectivity check rejected by the API")
		return CheckResult{
			Status:  CheckFailed,
			Message: apiErr.Error(),
			Errors:  apiErr.Errors,
		}
	}

	c.logger.Error().Err(err).Msg("Connectivity check failed")
	return CheckResult{
		Status:  CheckFailed,
		Message: ConnectFailureMessage + ": " + err.Error(),
	}
}
