// Package ratelimit tracks Healthie API rate-limit signals and gates requests.
// It reads the RateLimit-Remaining / RateLimit-Reset headers (and their X- prefixed
// variants) and honours Retry-After on 429 responses, so that every connector
// process sharing an API key and endpoint backs off together. Processes with other
// credentials keep their own state.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage. A RedisStore stores each field under
// RedisKeyPrefix:<namespace>:<field>.
const (
	RedisKeyPrefix = "healthie:rate_limit"

	RedisKeyRemaining    = "remaining"
	RedisKeyResetAt      = "reset_at"
	RedisKeyBlockedUntil = "blocked_until"
	RedisKeyLastUpdate   = "last_update"
)

// Thresholds for rate limit decisions.
const (
	// RemainingUnknown marks state that has not seen a RateLimit-Remaining header.
	RemainingUnknown = -1

	// ThresholdWarning applies throttling when remaining requests fall below this value.
	ThresholdWarning = 10
)

// RateLimitState represents the last rate limit signals seen from the API.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window,
	// or RemainingUnknown.
	Remaining int `json:"remaining"`

	// ResetAt is when the current window resets.
	ResetAt time.Time `json:"reset_at"`

	// BlockedUntil is set from Retry-After on a 429 response.
	// No request should be sent before it.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`
}

// NewState returns a state with no rate limit information.
func NewState() *RateLimitState {
	return &RateLimitState{Remaining: RemainingUnknown}
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsBlock returns true while a Retry-After window is still open.
func (s *RateLimitState) NeedsBlock() bool {
	return time.Now().Before(s.BlockedUntil)
}

// NeedsThrottling returns true when the window is nearly used up and has not reset yet.
func (s *RateLimitState) NeedsThrottling() bool {
	if s.Remaining == RemainingUnknown || s.NeedsBlock() {
		return false
	}
	return s.Remaining < ThresholdWarning && time.Now().Before(s.ResetAt)
}

// TimeUntilUnblocked returns the duration until BlockedUntil.
// Returns 0 if it has already passed.
func (s *RateLimitState) TimeUntilUnblocked() time.Duration {
	d := time.Until(s.BlockedUntil)
	if d < 0 {
		return 0
	}
	return d
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
