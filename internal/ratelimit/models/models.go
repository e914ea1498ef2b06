package models

import (
	"time"
)

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// NewDenied builds a rejection result. RetryAfter is rounded up to whole
// seconds and never drops below one.
func NewDenied(limit int, resetAt, now time.Time) *RateLimitResult {
	return &RateLimitResult{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: RetryAfterSeconds(resetAt, now),
	}
}

// RetryAfterSeconds is the Retry-After header value for a window resetting at resetAt.
func RetryAfterSeconds(resetAt, now time.Time) int {
	d := resetAt.Sub(now)
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		return 1
	}
	return secs
}

// Key builds the bucket key for a client on a route class.
func Key(class, clientIP string) string {
	return "potterdex:ratelimit:" + class + ":" + clientIP
}
