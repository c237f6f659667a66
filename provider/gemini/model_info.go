package gemini

import "github.com/mhpenta/magicpix"

// APIModelFlashImage is the API name for Gemini 2.5 Flash Image.
const APIModelFlashImage = "gemini-2.5-flash-image"

// FlashImageInfo is the model info for Gemini 2.5 Flash Image (nano-banana).
var FlashImageInfo = magicpix.ModelInfo{
	Name:         "nano-banana-1",
	Provider:     magicpix.ProviderGeminiAPI,
	APIModelName: APIModelFlashImage,

	Capabilities: magicpix.ModelCapabilities{
		SupportsTextToImage:  true,
		SupportsImageEditing: true,
	},

	SupportedAspectRatios: []magicpix.AspectRatio{
		magicpix.AspectRatio1x1,
		magicpix.AspectRatio16x9,
		magicpix.AspectRatio9x16,
		magicpix.AspectRatio4x3,
		magicpix.AspectRatio3x4,
	},

	RateLimits: magicpix.RateLimits{
		TokensPerMinute:   4000000,
		RequestsPerMinute: 500, // ~500 RPM for Tier 1
	},

	// Image output is priced per image at ~1024px
	Pricing: magicpix.Pricing{
		InputTokensPerMillion:  0.30,
		OutputTokensPerMillion: 2.50,
		ImageGenerationCost:    0.039,
	},
}
