// Package gemini provides a magicpix.Gateway backed by Google's Gemini API.
//
// This provider uses the Gemini API backend via the official Go SDK:
// https://github.com/googleapis/go-genai
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mhpenta/magicpix"
	"google.golang.org/genai"
)

// contentGenerator is the slice of the genai client the gateway uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gateway implements magicpix.Gateway using Google's Gemini API. Each call
// makes exactly one GenerateContent request.
type Gateway struct {
	models         contentGenerator
	info           magicpix.ModelInfo
	safetySettings []*genai.SafetySetting
	logger         *slog.Logger
}

// Ensure Gateway implements the interface.
var _ magicpix.Gateway = (*Gateway)(nil)

// Option configures a Gateway.
type Option func(*Gateway)

// WithModel overrides the API model name. The rest of the model info is
// kept from FlashImageInfo.
func WithModel(apiModelName string) Option {
	return func(g *Gateway) {
		if apiModelName != "" {
			g.info.APIModelName = apiModelName
		}
	}
}

// WithLogger sets the logger used for failed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithSafetySettings configures safety settings for all requests.
func WithSafetySettings(settings []magicpix.SafetySetting) Option {
	return func(g *Gateway) {
		g.safetySettings = convertSafetySettings(settings)
	}
}

// New creates a Gateway for the Gemini API. If apiKey is empty, the SDK
// falls back to the GOOGLE_API_KEY or GEMINI_API_KEY env vars.
func New(ctx context.Context, apiKey string, opts ...Option) (*Gateway, error) {
	clientCfg := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
	}
	if apiKey != "" {
		clientCfg.APIKey = apiKey
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewWithClient(client, opts...), nil
}

// NewWithClient creates a Gateway from an existing genai client.
func NewWithClient(client *genai.Client, opts ...Option) *Gateway {
	return newGateway(client.Models, opts...)
}

func newGateway(models contentGenerator, opts ...Option) *Gateway {
	g := &Gateway{
		models: models,
		info:   FlashImageInfo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate creates a square image from a text prompt.
func (g *Gateway) Generate(ctx context.Context, prompt string) magicpix.Result {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	genConfig := g.buildGenerateContentConfig(&genai.ImageConfig{
		AspectRatio: magicpix.CreationAspectRatio.String(),
	})

	resp, err := g.models.GenerateContent(ctx, g.info.APIModelName, contents, genConfig)
	if err != nil {
		g.logger.Error("generation error",
			"model", g.info.APIModelName,
			"error", err.Error(),
		)
		return failureFromError(err, g.info.APIModelName, magicpix.MessageGenerateFallback)
	}

	return classifyResponse(resp)
}

// Edit remixes an image according to instruction. A png/jpeg/jpg data URL
// prefix on payload is stripped; the bytes are always sent as image/png.
func (g *Gateway) Edit(ctx context.Context, payload string, instruction string) magicpix.Result {
	data, err := magicpix.DecodeImagePayload(payload)
	if err != nil {
		g.logger.Error("editing error",
			"model", g.info.APIModelName,
			"error", err.Error(),
		)
		return failureFromError(err, g.info.APIModelName, magicpix.MessageEditFallback)
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						Data:     data,
						MIMEType: magicpix.EditMIMEType,
					},
				},
				{Text: instruction},
			},
		},
	}

	resp, err := g.models.GenerateContent(ctx, g.info.APIModelName, contents, g.buildGenerateContentConfig(nil))
	if err != nil {
		g.logger.Error("editing error",
			"model", g.info.APIModelName,
			"error", err.Error(),
		)
		return failureFromError(err, g.info.APIModelName, magicpix.MessageEditFallback)
	}

	return classifyResponse(resp)
}

// Model returns the model info for the configured model.
func (g *Gateway) Model() magicpix.ModelInfo {
	return g.info
}

// Close releases any resources held by the gateway.
func (g *Gateway) Close() error {
	// The genai.Client doesn't require explicit closing in the current SDK
	return nil
}

// buildGenerateContentConfig builds the request config. imageConfig is only
// set for new images; edits keep the input's framing.
func (g *Gateway) buildGenerateContentConfig(imageConfig *genai.ImageConfig) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        imageConfig,
	}

	if len(g.safetySettings) > 0 {
		genConfig.SafetySettings = g.safetySettings
	}

	return genConfig
}

// convertSafetySettings converts our SafetySettings to Gemini's format.
func convertSafetySettings(settings []magicpix.SafetySetting) []*genai.SafetySetting {
	result := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		result = append(result, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return result
}
