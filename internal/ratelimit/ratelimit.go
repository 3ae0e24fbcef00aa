// Package ratelimit provides the token-bucket limiter behind the HTTP
// API's request throttle.
package ratelimit

import (
	"golang.org/x/time/rate"
)

// Limiter admits a fixed number of requests per minute.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter admitting requestsPerMinute, refilled continuously,
// with a burst of one tenth of the per-minute budget (at least 1).
func New(requestsPerMinute int) *Limiter {
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Allow reports whether a request may proceed now. It never blocks; callers
// reject over-budget requests instead of queueing them.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
