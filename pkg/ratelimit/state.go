// Package ratelimit follows the hotel API's rate limit headers and gates
// requests before the API starts rejecting them.
//
// The API may send X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset (seconds until the window resets), and Retry-After on
// 429 responses. When none are present the tracker stays permissive.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names read from API responses.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// WarnThreshold is the remaining budget below which requests are throttled.
const WarnThreshold = 5

// State is the last known rate limit window.
type State struct {
	// Limit is the window size, 0 when the API does not report it.
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the window, -1 when unknown.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// RetryAfter is set from a 429 Retry-After header.
	RetryAfter time.Time `json:"retry_after"`

	// UpdatedAt is when the state was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Unknown returns the permissive state used before any header is seen.
func Unknown() State {
	return State{Remaining: -1}
}

// Blocked reports whether no request should be sent at now.
func (s State) Blocked(now time.Time) bool {
	if now.Before(s.RetryAfter) {
		return true
	}
	return s.Remaining == 0 && now.Before(s.ResetAt)
}

// Throttled reports whether the budget is low but not exhausted.
func (s State) Throttled(now time.Time) bool {
	return s.Remaining > 0 && s.Remaining < WarnThreshold && now.Before(s.ResetAt)
}

// Wait returns how long to wait until requests may resume.
func (s State) Wait(now time.Time) time.Duration {
	until := s.ResetAt
	if s.RetryAfter.After(until) {
		until = s.RetryAfter
	}
	if d := until.Sub(now); d > 0 {
		return d
	}
	return 0
}

// FromResponse extracts the window from response headers. ok is false when
// the response carries no rate limit information.
func FromResponse(status int, h http.Header, now time.Time) (s State, ok bool, err error) {
	s = Unknown()
	s.UpdatedAt = now

	if v := h.Get(HeaderRemaining); v != "" {
		n, err := parseNonNegative(v)
		if err != nil {
			return s, false, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
		}
		s.Remaining = n
		ok = true

		reset := h.Get(HeaderReset)
		if reset == "" {
			return s, false, fmt.Errorf("%s header missing", HeaderReset)
		}
		secs, err := parseNonNegative(reset)
		if err != nil {
			return s, false, fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
		s.ResetAt = now.Add(time.Duration(secs) * time.Second)
	}

	if v := h.Get(HeaderLimit); v != "" {
		if n, err := parseNonNegative(v); err == nil {
			s.Limit = n
		}
	}

	if status == http.StatusTooManyRequests {
		s.RetryAfter = now.Add(retryAfter(h.Get(HeaderRetryAfter), now))
		ok = true
	}

	return s, ok, nil
}

// retryAfter accepts delta-seconds or an HTTP date, defaulting to one second.
func retryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Second
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return time.Second
}

func parseNonNegative(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
