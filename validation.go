package magicpix

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyImageData = errors.New("image data cannot be empty")
	ErrInvalidDataURL = errors.New("invalid image data URL")
	ErrImageTooLarge  = errors.New("image data exceeds maximum size")
)

// MaxImageSize is the maximum allowed decoded image size in bytes (20MB)
const MaxImageSize = 20 * 1024 * 1024

var dataURLPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,`)

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidatePrompt rejects blank prompts and instructions.
func ValidatePrompt(prompt string) error {
	if IsBlank(prompt) {
		return ErrBlankInput
	}
	return nil
}

// StripDataURLPrefix removes a leading png/jpeg/jpg base64 data URL prefix.
// Payloads without such a prefix are returned unchanged.
func StripDataURLPrefix(payload string) string {
	return dataURLPrefix.ReplaceAllString(payload, "")
}

// EncodeDataURL wraps raw image bytes in a PNG data URL.
func EncodeDataURL(data []byte) string {
	return "data:" + EditMIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeImagePayload strips any data URL prefix from payload and decodes the
// remaining base64 into raw bytes.
func DecodeImagePayload(payload string) ([]byte, error) {
	raw := StripDataURLPrefix(strings.TrimSpace(payload))
	if raw == "" {
		return nil, ErrEmptyImageData
	}

	if base64.StdEncoding.DecodedLen(len(raw)) > MaxImageSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrImageTooLarge, MaxImageSize)
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImageData
	}
	return data, nil
}
