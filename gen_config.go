package magicpix

// AspectRatio represents the aspect ratio for generated images.
type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio3x4  AspectRatio = "3:4"
)

// CreationAspectRatio is used for every new image. Square output suits
// avatars and sharing.
const CreationAspectRatio = AspectRatio1x1

// EditMIMEType is the media type sent with every edit payload, whatever the
// payload's original encoding.
const EditMIMEType = "image/png"

// String returns the string representation for API calls.
func (a AspectRatio) String() string {
	return string(a)
}

// SafetyCategory represents a content safety category.
type SafetyCategory string

const (
	SafetyCategoryHarassment       SafetyCategory = "HARM_CATEGORY_HARASSMENT"
	SafetyCategoryHateSpeech       SafetyCategory = "HARM_CATEGORY_HATE_SPEECH"
	SafetyCategorySexuallyExplicit SafetyCategory = "HARM_CATEGORY_SEXUALLY_EXPLICIT"
	SafetyCategoryDangerousContent SafetyCategory = "HARM_CATEGORY_DANGEROUS_CONTENT"
)

// SafetyThreshold represents the blocking threshold for safety filters.
type SafetyThreshold string

const (
	SafetyThresholdBlockLowAndUp  SafetyThreshold = "BLOCK_LOW_AND_ABOVE"
	SafetyThresholdBlockMedAndUp  SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	SafetyThresholdBlockHighAndUp SafetyThreshold = "BLOCK_ONLY_HIGH"
)

// SafetySetting configures content filtering for a specific category.
type SafetySetting struct {
	Category  SafetyCategory
	Threshold SafetyThreshold
}

// KidSafeSettings blocks everything from low probability upward in every
// category.
func KidSafeSettings() []SafetySetting {
	categories := []SafetyCategory{
		SafetyCategoryHarassment,
		SafetyCategoryHateSpeech,
		SafetyCategorySexuallyExplicit,
		SafetyCategoryDangerousContent,
	}
	settings := make([]SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, SafetySetting{Category: c, Threshold: SafetyThresholdBlockLowAndUp})
	}
	return settings
}

// Suggestions returns starter prompts offered on the create screen.
func Suggestions() []string {
	return []string{
		"A cute robot eating pizza",
		"A dinosaur playing soccer",
		"A flying cat in space",
		"A puppy with sunglasses",
	}
}

// PresetEdits returns one-tap edit instructions offered on the edit screen.
func PresetEdits() []string {
	return []string{
		"Make it cartoon style",
		"Add sparkles everywhere",
		"Turn it purple",
		"Make it pixel art",
	}
}
