package magicpix

import (
	"math"
)

// TokenEstimator approximates the input tokens a request will consume.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// SimpleTokenEstimator - fast approximation of prompt token usage
type SimpleTokenEstimator struct {
	SafetyMargin float64
}

func NewSimpleTokenEstimator() *SimpleTokenEstimator {
	return &SimpleTokenEstimator{
		SafetyMargin: 1.2,
	}
}

func (e *SimpleTokenEstimator) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	// ~4 characters per token for English prompts
	tokenEstimate := float64(len([]rune(text))) / 4.0 * e.SafetyMargin

	return int(math.Ceil(tokenEstimate)) + 3
}
