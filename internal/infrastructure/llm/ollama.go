package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"

	"ContentActivation/internal/config"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const ollamaName = "ollama"

// OllamaClient implements ports.Provider against a local Ollama server through langchaingo.
type OllamaClient struct {
	textModel   string
	visionModel string
	text        llms.Model
	vision      llms.Model
}

var _ ports.Provider = (*OllamaClient)(nil)

// NewOllamaClient prepares text and optional vision models. No request is made until first use.
func NewOllamaClient(cfg config.OllamaConfig) (*OllamaClient, error) {
	if cfg.URL == "" || cfg.TextModel == "" {
		return nil, errors.New("ollama url and text model are required")
	}
	text, err := ollama.New(ollama.WithServerURL(cfg.URL), ollama.WithModel(cfg.TextModel))
	if err != nil {
		return nil, fmt.Errorf("create ollama text model: %w", err)
	}
	client := &OllamaClient{textModel: cfg.TextModel, text: text}

	if cfg.VisionModel != "" {
		vision, err := ollama.New(ollama.WithServerURL(cfg.URL), ollama.WithModel(cfg.VisionModel))
		if err != nil {
			return nil, fmt.Errorf("create ollama vision model: %w", err)
		}
		client.visionModel = cfg.VisionModel
		client.vision = vision
	}
	return client, nil
}

func (c *OllamaClient) Name() string              { return ollamaName }
func (c *OllamaClient) Model() string             { return c.textModel }
func (c *OllamaClient) Tier() domain.ProviderTier { return domain.TierLocal }
func (c *OllamaClient) SupportsVision() bool      { return c.vision != nil }

// GenerateText runs a single-turn completion on the text model.
func (c *OllamaClient) GenerateText(ctx context.Context, prompt string, _ ports.GenerationContext) (string, error) {
	msgs := []llms.MessageContent{llms.TextParts(schema.ChatMessageTypeHuman, prompt)}
	return c.generate(ctx, c.text, msgs, 0.5)
}

// DescribeImage sends the image bytes alongside the prompt to the vision model.
func (c *OllamaClient) DescribeImage(ctx context.Context, img domain.Image, prompt string, _ ports.GenerationContext) (string, error) {
	if c.vision == nil {
		return "", domain.NewProviderError(ollamaName, domain.ProviderUnavailable, errors.New("no vision model configured"))
	}
	msgs := []llms.MessageContent{{
		Role: schema.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.BinaryPart(img.MIMEType, img.Data),
			llms.TextContent{Text: prompt},
		},
	}}
	return c.generate(ctx, c.vision, msgs, 0.3)
}

func (c *OllamaClient) generate(ctx context.Context, model llms.Model, msgs []llms.MessageContent, temperature float64) (string, error) {
	resp, err := model.GenerateContent(ctx, msgs, llms.WithTemperature(temperature))
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return "", domain.NewProviderError(ollamaName, domain.ProviderTimeout, err)
		}
		return "", domain.NewProviderError(ollamaName, domain.ProviderUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", domain.NewProviderError(ollamaName, domain.ProviderInvalidResponse, errors.New("no choices in response"))
	}
	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", domain.NewProviderError(ollamaName, domain.ProviderInvalidResponse, errors.New("empty completion"))
	}
	return text, nil
}
