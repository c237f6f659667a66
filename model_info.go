package magicpix

// Provider represents a model provider/backend.
type Provider string

const (
	ProviderGeminiAPI Provider = "gemini"
)

// ModelCapabilities describes what features a model supports.
type ModelCapabilities struct {
	SupportsTextToImage  bool
	SupportsImageEditing bool
}

// RateLimits defines rate limiting parameters for a model.
type RateLimits struct {
	TokensPerMinute   int
	RequestsPerMinute int
}

// Pricing defines cost information for a model.
type Pricing struct {
	InputTokensPerMillion  float64
	OutputTokensPerMillion float64
	ImageGenerationCost    float64 // Per image (if applicable)
}

// ModelInfo contains complete metadata for a model.
type ModelInfo struct {
	// Identity
	Name         string   // Public model name (e.g., "nano-banana-1")
	Provider     Provider // Which provider serves this model
	APIModelName string   // Actual API name (e.g., "gemini-2.5-flash-image")

	Capabilities ModelCapabilities

	SupportedAspectRatios []AspectRatio

	RateLimits RateLimits

	Pricing Pricing
}

// SupportsAspectRatio reports whether the model accepts the given ratio.
func (m ModelInfo) SupportsAspectRatio(ratio AspectRatio) bool {
	for _, r := range m.SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
