package magicpix

import (
	"log/slog"

	"github.com/mhpenta/magicpix/ratelimiter"
)

// OrchestratorOption configures the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets a structured logger for the orchestrator.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithSession uses an existing session instead of a fresh one.
func WithSession(session *Session) OrchestratorOption {
	return func(o *Orchestrator) {
		o.session = session
	}
}

// WithRateLimiter overrides the limiter derived from the gateway's model info.
// Passing nil disables client-side rate limiting.
func WithRateLimiter(limiter ratelimiter.Limiter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.limiter = limiter
	}
}

// WithTokenEstimator sets the estimator used for rate limit accounting.
func WithTokenEstimator(estimator TokenEstimator) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tokenEstimator = estimator
	}
}
