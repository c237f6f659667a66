package magicpix

import "context"

// Gateway performs exactly one exchange with an image model per call and
// normalizes the reply into a Result. Implementations never return an error:
// transport and protocol failures are reported as failed Results.
type Gateway interface {
	// Generate creates a new square image from a text prompt.
	Generate(ctx context.Context, prompt string) Result

	// Edit remixes an existing image, given as a base64 payload with or
	// without a data URL prefix, according to a text instruction.
	Edit(ctx context.Context, payload string, instruction string) Result

	// Model describes the model behind the gateway.
	Model() ModelInfo

	// Close releases any resources held by the gateway.
	Close() error
}
