package gemini

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mhpenta/magicpix"
	"google.golang.org/genai"
)

// classifyResponse turns a model response into one of the Result outcomes.
//
// Only the first candidate is read. Its parts are scanned in order and the
// last image part wins, as does the last text part; a reply with text but no
// image is a refusal and its text becomes the failure message.
func classifyResponse(resp *genai.GenerateContentResponse) magicpix.Result {
	if resp == nil || len(resp.Candidates) == 0 {
		return magicpix.FailureResult(magicpix.OutcomeEmpty, magicpix.MessageEmptyResponse)
	}

	var (
		image []byte
		text  string
	)

	if candidate := resp.Candidates[0]; candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			switch {
			case part.InlineData != nil && len(part.InlineData.Data) > 0:
				image = part.InlineData.Data
			case part.Thought:
				// reasoning, not a reply to the user
			case part.Text != "":
				text = part.Text
			}
		}
	}

	var result magicpix.Result
	switch {
	case image != nil:
		result = magicpix.ImageResult(magicpix.EncodeDataURL(image), text)
	case text != "":
		result = magicpix.FailureResult(magicpix.OutcomeRefusal, text)
	default:
		result = magicpix.FailureResult(magicpix.OutcomeFizzle, magicpix.MessageFizzle)
	}

	if resp.UsageMetadata != nil {
		result.UsageMetadata = &magicpix.UsageMetadata{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CandidatesTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result
}

// failureFromError converts a failed call into a Result. The user sees the
// API's own message when there is one, quota errors included, otherwise
// fallback.
func failureFromError(err error, model string, fallback string) magicpix.Result {
	if err == nil {
		return magicpix.FailureResult(magicpix.OutcomeTransportError, fallback)
	}

	apiErr, isAPIErr := asAPIError(err)
	if isAPIErr && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		rlErr := &magicpix.RateLimitError{
			RetryAfter: 60 * time.Second, // API doesn't reliably provide Retry-After
			LimitType:  "requests",
			Model:      model,
			Err:        err,
		}
		msg := apiErr.Message
		if strings.TrimSpace(msg) == "" {
			msg = rlErr.Error()
		}
		return magicpix.FailureResult(magicpix.OutcomeRateLimited, msg)
	}

	msg := err.Error()
	if isAPIErr && apiErr.Message != "" {
		msg = apiErr.Message
	}
	if strings.TrimSpace(msg) == "" {
		msg = fallback
	}
	return magicpix.FailureResult(magicpix.OutcomeTransportError, msg)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}
