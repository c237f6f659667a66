package magicpix

import (
	"errors"
	"fmt"
	"time"
)

// User-facing failure messages.
const (
	MessageEmptyResponse    = "No magic happened this time. Try again!"
	MessageFizzle           = "The magic wand fizzled out. No image was created."
	MessageGenerateFallback = "Something went wrong! Try again."
	MessageEditFallback     = "Oops! Couldn't change the picture. Try a different magic spell!"
)

var (
	// ErrBlankInput is returned when a prompt or instruction is empty or whitespace.
	ErrBlankInput = errors.New("input is blank")

	// ErrActionPending is returned when the same action is already in flight.
	ErrActionPending = errors.New("action already in progress")

	// ErrWrongMode is returned when an action does not fit the session mode.
	ErrWrongMode = errors.New("action not allowed in current mode")

	// ErrNoCurrentImage is returned when an edit is requested before any image exists.
	ErrNoCurrentImage = errors.New("no current image")

	// ErrInvalidTransition is returned by Session for a transition its mode forbids.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrRecordNotFound is returned when a history record id is unknown.
	ErrRecordNotFound = errors.New("image record not found")
)

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
