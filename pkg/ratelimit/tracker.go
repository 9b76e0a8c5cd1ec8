package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "healthie_rate_limit_remaining",
		Help: "Requests remaining in the current Healthie rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthie_rate_limit_blocks_total",
		Help: "Total number of requests delayed by a Retry-After window",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthie_rate_limit_throttles_total",
		Help: "Total number of requests throttled because the window was nearly used up",
	})
)

// DefaultThrottle is the delay applied to a request while throttling.
const DefaultThrottle = 1 * time.Second

// Tracker monitors rate limit headers and gates requests.
type Tracker struct {
	store    Store
	logger   zerolog.Logger
	throttle time.Duration
}

// NewTracker creates a new rate limit tracker.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:    store,
		logger:   logger,
		throttle: DefaultThrottle,
	}
}

// SetThrottle overrides the throttling delay.
func (t *Tracker) SetThrottle(d time.Duration) {
	t.throttle = d
}

// GetState returns the current rate limit state.
func (t *Tracker) GetState(ctx context.Context) (*RateLimitState, error) {
	return t.store.Load(ctx)
}

// UpdateFromHeaders records the rate limit signals of a response.
// Responses without rate limit headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, statusCode int, headers http.Header) error {
	remainStr := firstHeader(headers, "RateLimit-Remaining", "X-RateLimit-Remaining")
	resetStr := firstHeader(headers, "RateLimit-Reset", "X-RateLimit-Reset")
	retryAfterStr := headers.Get("Retry-After")

	if remainStr == "" && statusCode != http.StatusTooManyRequests {
		return nil
	}

	state, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rate limit state: %w", err)
	}

	now := time.Now()
	state.LastUpdate = now

	if remainStr != "" {
		remain, err := parseIntHeader(remainStr)
		if err != nil {
			return fmt.Errorf("parse RateLimit-Remaining header: %w", err)
		}
		state.Remaining = remain
		rateLimitRemaining.Set(float64(remain))
	}

	if resetStr != "" {
		resetSeconds, err := parseIntHeader(resetStr)
		if err != nil {
			return fmt.Errorf("parse RateLimit-Reset header: %w", err)
		}
		state.ResetAt = now.Add(time.Duration(resetSeconds) * time.Second)
	}

	if statusCode == http.StatusTooManyRequests {
		state.BlockedUntil = now.Add(parseRetryAfter(retryAfterStr, now))
	}

	if err := t.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save rate limit state: %w", err)
	}

	switch {
	case state.NeedsBlock():
		t.logger.Warn().
			Time("blocked_until", state.BlockedUntil).
			Msg("Healthie rate limit hit - requests paused")
	case state.NeedsThrottling():
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Healthie rate limit nearly exhausted - requests will be throttled")
	default:
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Msg("Rate limit state updated")
	}

	return nil
}

// Wait blocks until a request may be sent.
// It sleeps through an open Retry-After window and applies a short throttle when the
// window is nearly used up. Returns the context error if ctx ends first.
func (t *Tracker) Wait(ctx context.Context) error {
	state, err := t.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("get rate limit state: %w", err)
	}

	var delay time.Duration
	switch {
	case state.NeedsBlock():
		delay = state.TimeUntilUnblocked()
		rateLimitBlocksTotal.Inc()
		t.logger.Warn().
			Dur("wait_duration", delay).
			Msg("Waiting for Retry-After window")
	case state.NeedsThrottling():
		delay = t.throttle
		rateLimitThrottlesTotal.Inc()
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Dur("wait_duration", delay).
			Msg("Throttling request")
	default:
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultRetryAfter is used when a 429 carries no usable Retry-After header.
const DefaultRetryAfter = 5 * time.Second

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultRetryAfter
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}

func parseIntHeader(v string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(v))
}

func firstHeader(headers http.Header, keys ...string) string {
	for _, k := range keys {
		if v := headers.Get(k); v != "" {
			return v
		}
	}
	return ""
}
