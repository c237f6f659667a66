package magicpix

import "time"

// Outcome classifies a single exchange with the image model.
type Outcome int

const (
	// OutcomeImage means the model returned an image.
	OutcomeImage Outcome = iota

	// OutcomeEmpty means the response carried no candidates.
	OutcomeEmpty

	// OutcomeRefusal means the model replied with text only, e.g. a safety refusal.
	OutcomeRefusal

	// OutcomeFizzle means the first candidate had neither image nor text.
	OutcomeFizzle

	// OutcomeTransportError means the call itself failed (network, auth, quota).
	OutcomeTransportError

	// OutcomeRateLimited means the request was throttled, locally or by the API.
	OutcomeRateLimited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeImage:
		return "image"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRefusal:
		return "refusal"
	case OutcomeFizzle:
		return "fizzle"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Result is the uniform outcome of one gateway call. A successful result
// carries Image (a data URL) and optional Text; every failure carries Message.
type Result struct {
	Outcome Outcome

	// Image is a self-contained data URL, set only for OutcomeImage
	Image string

	// Text is any auxiliary text the model returned alongside the image
	Text string

	// Message is the user-facing failure message
	Message string

	// UsageMetadata contains token information when the model reports it
	UsageMetadata *UsageMetadata
}

// UsageMetadata contains usage information for billing and monitoring.
type UsageMetadata struct {
	PromptTokens     int
	CandidatesTokens int
	TotalTokens      int
}

// ImageResult builds a successful result.
func ImageResult(image, text string) Result {
	return Result{Outcome: OutcomeImage, Image: image, Text: text}
}

// FailureResult builds a failed result. An empty message falls back to
// MessageGenerateFallback so a failure is never silent.
func FailureResult(outcome Outcome, message string) Result {
	if message == "" {
		message = MessageGenerateFallback
	}
	return Result{Outcome: outcome, Message: message}
}

// OK reports whether the result carries a usable image.
func (r Result) OK() bool {
	return r.Outcome == OutcomeImage && r.Image != ""
}

// ImageRecord is one produced image. Records are never mutated; an edit
// always produces a new record.
type ImageRecord struct {
	ID        string
	Data      string
	Prompt    string
	Timestamp time.Time
}
