// Package enhance produces the improved version of an uploaded photo using
// a generative image model.
package enhance

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photoglow/internal/common"
	sc "github.com/dmitrijs2005/photoglow/internal/server/config"
	"google.golang.org/genai"
)

// DefaultPrompt is applied when the caller does not supply one.
const DefaultPrompt = `Enhance the uploaded photo while keeping the person’s identity completely unchanged. Make only subtle, natural improvements: gently brighten the face, improve lighting and clarity, smooth small imperfections without removing unique features, slightly enhance skin tone, whiten teeth very lightly if appropriate, and make the expression look a bit happier by softening facial tension and improving the overall mood of the image. Do NOT alter facial structure, hairstyle, body shape, age, or any defining physical traits. The result should look like the same real person on their best day—natural, authentic, and not edited in an obvious or unrealistic way.`

var (
	newGenAIClient = func(ctx context.Context, cc *genai.ClientConfig) (*genai.Client, error) {
		return genai.NewClient(ctx, cc)
	}
	generateContent = func(c *genai.Client, ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return c.Models.GenerateContent(ctx, model, contents, cfg)
	}
)

// Result is the enhanced image returned by the model.
type Result struct {
	Data     []byte
	MIMEType string
}

// Enhancer turns an uploaded image into its enhanced version.
type Enhancer interface {
	Enhance(ctx context.Context, image []byte, mimeType string, prompt string) (*Result, error)
}

type GeminiEnhancer struct {
	config *sc.Config
}

func NewGeminiEnhancer(config *sc.Config) *GeminiEnhancer {
	return &GeminiEnhancer{config: config}
}

// Enhance sends the image and prompt to the model and returns the first
// image part of the response. The call is bounded by the configured
// timeout; exceeding it maps to common.ErrorUpstreamTimeout and any other
// upstream problem to common.ErrorUpstreamFailure.
func (g *GeminiEnhancer) Enhance(ctx context.Context, image []byte, mimeType string, prompt string) (*Result, error) {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.EnhanceTimeout)
	defer cancel()

	client, err := newGenAIClient(ctx, &genai.ClientConfig{
		APIKey:  g.config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstreamFailure, err)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}

	resp, err := generateContent(client, ctx, g.config.GeminiModel, contents, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.ErrorUpstreamTimeout
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstreamFailure, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty response", common.ErrorUpstreamFailure)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &Result{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
		}
	}

	return nil, fmt.Errorf("%w: no image in response", common.ErrorUpstreamFailure)
}
