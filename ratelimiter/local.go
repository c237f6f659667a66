package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter limits both tokens and requests per minute.
type RateLimiter struct {
	TokensBucket   *TokenBucket
	RequestsBucket *TokenBucket
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// RateLimits mirrors magicpix.RateLimits to avoid an import cycle.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// New creates a RateLimiter that refills every minute.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	return NewFromLimits(&RateLimits{
		TokensPerMinute:   tokensPerMinute,
		RequestsPerMinute: requestsPerMinute,
	})
}

// NewFromLimits creates a RateLimiter from a RateLimits configuration.
// A zero limit disables that dimension.
func NewFromLimits(limits *RateLimits) *RateLimiter {
	refillInterval := time.Minute
	rl := &RateLimiter{}
	if limits.TokensPerMinute > 0 {
		rl.TokensBucket = NewTokenBucket(limits.TokensPerMinute, limits.TokensPerMinute, refillInterval)
	}
	if limits.RequestsPerMinute > 0 {
		rl.RequestsBucket = NewTokenBucket(limits.RequestsPerMinute, limits.RequestsPerMinute, refillInterval)
	}
	return rl
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (rl *RateLimiter) HasCapacity(numTokens int) bool {
	return rl.TokensBucket.HasCapacity(numTokens) && rl.RequestsBucket.HasCapacity(1)
}

// TryConsume atomically checks capacity and consumes tokens if available.
// Nothing is consumed from either bucket unless both have room.
func (rl *RateLimiter) TryConsume(numTokens int) bool {
	if !rl.HasCapacity(numTokens) {
		return false
	}
	return rl.TokensBucket.TryConsume(numTokens) && rl.RequestsBucket.TryConsume(1)
}

// Exhausted reports which bucket lacks room for numTokens. The requests
// bucket is checked first.
func (rl *RateLimiter) Exhausted(numTokens int) string {
	switch {
	case !rl.RequestsBucket.HasCapacity(1):
		return LimitRequests
	case !rl.TokensBucket.HasCapacity(numTokens):
		return LimitTokens
	default:
		return ""
	}
}

// TimeUntilAvailable returns how long until the specified tokens would be available.
// This does not modify state - use for informational purposes.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	tokenWait := rl.TokensBucket.TimeUntilAvailable(tokens)
	requestWait := rl.RequestsBucket.TimeUntilAvailable(1)
	return max(tokenWait, requestWait)
}

// TokenBucket implements a token bucket rate limit algorithm. A nil bucket
// is unlimited.
type TokenBucket struct {
	mu             sync.Mutex
	capacity       int
	remaining      int
	refillInterval time.Duration
	lastRefill     time.Time
	now            func() time.Time
}

// NewTokenBucket creates a new token bucket.
func NewTokenBucket(capacity int, initialTokens int, refillInterval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:       capacity,
		remaining:      initialTokens,
		refillInterval: refillInterval,
		lastRefill:     time.Now(),
		now:            time.Now,
	}
}

// HasCapacity checks if tokens are available WITHOUT consuming them.
func (tb *TokenBucket) HasCapacity(tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	remaining := tb.remaining
	if tb.now().Sub(tb.lastRefill) >= tb.refillInterval {
		remaining = tb.capacity
	}
	return tokens <= remaining
}

// TryConsume consumes tokens if the bucket holds enough of them.
func (tb *TokenBucket) TryConsume(tokens int) bool {
	if tb == nil {
		return true
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if now.Sub(tb.lastRefill) >= tb.refillInterval {
		tb.remaining = tb.capacity
		tb.lastRefill = now
	}
	if tokens <= tb.remaining {
		tb.remaining -= tokens
		return true
	}
	return false
}

// TimeUntilAvailable returns how long until tokens would be available (read-only).
func (tb *TokenBucket) TimeUntilAvailable(tokens int) time.Duration {
	if tb == nil {
		return 0
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := tb.now().Sub(tb.lastRefill)

	// Current effective remaining, counting a partial refill
	effectiveRemaining := tb.remaining
	if elapsed >= tb.refillInterval {
		effectiveRemaining = tb.capacity
	} else if elapsed > 0 {
		replenished := int(float64(tb.capacity) * (float64(elapsed) / float64(tb.refillInterval)))
		effectiveRemaining = min(tb.capacity, tb.remaining+replenished)
	}

	if tokens <= effectiveRemaining {
		return 0
	}

	tokensNeeded := tokens - effectiveRemaining
	refillRate := float64(tb.capacity) / float64(tb.refillInterval)
	wait := time.Duration(float64(tokensNeeded) / refillRate)

	// 10% buffer so the caller does not come back a hair too early
	return wait + (wait / 10)
}
