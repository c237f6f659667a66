package magicpix

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mhpenta/magicpix/ratelimiter"
)

// Action identifies one of the user-facing request slots.
type Action int

const (
	ActionGenerate Action = iota
	ActionEdit
)

func (a Action) String() string {
	switch a {
	case ActionGenerate:
		return "generate"
	case ActionEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// ActionState is the per-action state a front-end renders: a spinner while
// Pending, the last failure message, and the text in the input box.
type ActionState struct {
	Pending   bool
	LastError string
	Input     string
}

const (
	// tokenBuffer covers the request framing around the prompt
	tokenBuffer = 100

	// imageInputTokens is what one input image costs on the flash image model
	imageInputTokens = 258
)

// Orchestrator sits between user actions and the Gateway. It owns the pending
// and error state of each action and drives Session transitions on success.
type Orchestrator struct {
	gateway Gateway
	session *Session

	logger *slog.Logger

	limiter        ratelimiter.Limiter
	tokenEstimator TokenEstimator

	slots [2]ActionState

	mu sync.Mutex
}

// NewOrchestrator creates an Orchestrator over the given gateway.
//
// Example:
//
//	gw, err := gemini.New(ctx, apiKey)
//	if err != nil {
//	    return err
//	}
//	o := magicpix.NewOrchestrator(gw, magicpix.WithLogger(slog.Default()))
//	result, err := o.RequestGeneration(ctx, "A flying cat in space")
func NewOrchestrator(gateway Gateway, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		gateway:        gateway,
		logger:         slog.Default(),
		tokenEstimator: NewSimpleTokenEstimator(),
	}

	limits := gateway.Model().RateLimits
	if limits.TokensPerMinute > 0 || limits.RequestsPerMinute > 0 {
		o.limiter = ratelimiter.New(limits.TokensPerMinute, limits.RequestsPerMinute)
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.session == nil {
		o.session = NewSession()
	}
	return o
}

// Session returns the session driven by this orchestrator.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// State returns a copy of the state of one action slot.
func (o *Orchestrator) State(action Action) ActionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.slots[action]
}

// Close releases the gateway.
func (o *Orchestrator) Close() error {
	return o.gateway.Close()
}

// RequestGeneration asks the gateway for a new image from prompt. On success
// the image is recorded, becomes current and the session switches to editing,
// even if the session was navigated while the call was in flight. The prompt
// stays in the input slot either way.
//
// The returned error is non-nil only when the request was rejected before
// reaching the gateway. Model failures are reported in the Result and in
// State(ActionGenerate).LastError.
func (o *Orchestrator) RequestGeneration(ctx context.Context, prompt string) (Result, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return Result{}, err
	}

	o.mu.Lock()
	if err := o.beginLocked(ActionGenerate); err != nil {
		o.mu.Unlock()
		return Result{}, err
	}
	if mode := o.session.Mode(); mode != ModeCreating {
		o.mu.Unlock()
		return Result{}, fmt.Errorf("%w: cannot generate while %s", ErrWrongMode, mode)
	}
	o.startLocked(ActionGenerate, prompt)
	o.mu.Unlock()

	result := o.call(ctx, ActionGenerate, prompt, func(ctx context.Context) Result {
		return o.gateway.Generate(ctx, prompt)
	})

	o.mu.Lock()
	defer o.mu.Unlock()

	slot := &o.slots[ActionGenerate]
	slot.Pending = false
	if !result.OK() {
		slot.LastError = result.Message
		return result, nil
	}

	if _, err := o.session.recordGenerated(result.Image, prompt); err != nil {
		o.logger.Error("generated image not recorded", "error", err.Error())
		slot.LastError = err.Error()
		return result, err
	}
	return result, nil
}

// RequestEdit asks the gateway to remix the current image with instruction.
// On success the new image is recorded and becomes current, whatever screen
// the session moved to meanwhile, and the input slot is cleared. On failure
// the input is kept.
func (o *Orchestrator) RequestEdit(ctx context.Context, instruction string) (Result, error) {
	if err := ValidatePrompt(instruction); err != nil {
		return Result{}, err
	}

	o.mu.Lock()
	if err := o.beginLocked(ActionEdit); err != nil {
		o.mu.Unlock()
		return Result{}, err
	}
	snap := o.session.Snapshot()
	if snap.Current == nil {
		o.mu.Unlock()
		return Result{}, ErrNoCurrentImage
	}
	if snap.Mode != ModeEditing {
		o.mu.Unlock()
		return Result{}, fmt.Errorf("%w: cannot edit while %s", ErrWrongMode, snap.Mode)
	}
	o.startLocked(ActionEdit, instruction)
	o.mu.Unlock()

	payload := snap.Current.Data
	result := o.call(ctx, ActionEdit, instruction, func(ctx context.Context) Result {
		return o.gateway.Edit(ctx, payload, instruction)
	})

	o.mu.Lock()
	defer o.mu.Unlock()

	slot := &o.slots[ActionEdit]
	slot.Pending = false
	if !result.OK() {
		slot.LastError = result.Message
		return result, nil
	}

	if _, err := o.session.recordEdited(result.Image, instruction); err != nil {
		o.logger.Error("edited image not recorded", "error", err.Error())
		slot.LastError = err.Error()
		return result, err
	}
	slot.Input = ""
	return result, nil
}

// beginLocked must be called with mu held.
func (o *Orchestrator) beginLocked(action Action) error {
	if o.slots[action].Pending {
		return fmt.Errorf("%w: %s", ErrActionPending, action)
	}
	return nil
}

// startLocked must be called with mu held.
func (o *Orchestrator) startLocked(action Action, input string) {
	slot := &o.slots[action]
	slot.Input = input
	slot.Pending = true
	slot.LastError = ""
}

// call runs one gateway exchange with rate limiting and logging around it.
func (o *Orchestrator) call(ctx context.Context, action Action, text string, fn func(context.Context) Result) Result {
	model := o.gateway.Model().APIModelName
	start := time.Now()

	o.logger.Debug("starting image request",
		"action", action.String(),
		"model", model,
		"prompt_length", len(text),
	)

	if err := o.checkRateLimit(action, text, model); err != nil {
		o.logger.Warn("rate limit hit",
			"action", action.String(),
			"model", model,
			"error", err.Error(),
		)
		return FailureResult(OutcomeRateLimited, err.Error())
	}

	result := fn(ctx)
	duration := time.Since(start)

	if !result.OK() {
		o.logger.Warn("image request failed",
			"action", action.String(),
			"model", model,
			"duration_ms", duration.Milliseconds(),
			"outcome", result.Outcome.String(),
			"message", result.Message,
		)
		return result
	}

	logAttrs := []any{
		"action", action.String(),
		"model", model,
		"duration_ms", duration.Milliseconds(),
	}
	if result.UsageMetadata != nil {
		logAttrs = append(logAttrs,
			"prompt_tokens", result.UsageMetadata.PromptTokens,
			"response_tokens", result.UsageMetadata.CandidatesTokens,
			"total_tokens", result.UsageMetadata.TotalTokens,
		)
	}
	o.logger.Info("image request completed", logAttrs...)

	return result
}

// checkRateLimit consumes budget for one request. It never waits: an
// exhausted budget fails the action and the user tries again later.
func (o *Orchestrator) checkRateLimit(action Action, text string, model string) error {
	if o.limiter == nil {
		return nil
	}

	estimatedTokens := o.tokenEstimator.EstimateTokens(text) + tokenBuffer
	if action == ActionEdit {
		estimatedTokens += imageInputTokens
	}

	if !o.limiter.TryConsume(estimatedTokens) {
		limitType := o.limiter.Exhausted(estimatedTokens)
		if limitType == "" {
			// refilled between the two calls
			limitType = ratelimiter.LimitRequests
		}
		return &RateLimitError{
			RetryAfter: o.limiter.TimeUntilAvailable(estimatedTokens),
			LimitType:  limitType,
			Model:      model,
		}
	}
	return nil
}
