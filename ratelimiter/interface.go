// Package ratelimiter provides client-side throttling for calls to an image
// model, so a burst of user actions fails fast instead of burning quota.
package ratelimiter

import (
	"time"
)

// Limit dimensions reported by Limiter.Exhausted.
const (
	LimitTokens   = "tokens"
	LimitRequests = "requests"
)

// Limiter defines the interface for rate limiters.
// Implementations can be local (in-memory) or distributed.
type Limiter interface {
	// TryConsume atomically checks capacity and consumes tokens if available.
	// Returns true if tokens were consumed, false if insufficient capacity.
	TryConsume(numTokens int) bool

	// TimeUntilAvailable returns how long until tokens would be available (read-only).
	TimeUntilAvailable(tokens int) time.Duration

	// Exhausted reports which limit would reject a request of numTokens,
	// LimitRequests or LimitTokens, or "" if both have room.
	Exhausted(numTokens int) string
}
