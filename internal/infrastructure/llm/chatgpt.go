package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ContentActivation/internal/config"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const chatGPTName = "openai"

// ChatGPTClient implements ports.Provider backed by OpenAI-compatible chat completion APIs.
type ChatGPTClient struct {
	endpoint    string
	textModel   string
	visionModel string
	apiKey      string
	maxTokens   int
	httpClient  *http.Client
}

var _ ports.Provider = (*ChatGPTClient)(nil)

// NewChatGPTClient builds a client from configuration. Call deadlines come from the context.
func NewChatGPTClient(cfg config.OpenAIConfig) *ChatGPTClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &ChatGPTClient{
		endpoint:    cfg.Endpoint,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		apiKey:      cfg.APIKey,
		maxTokens:   maxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *ChatGPTClient) Name() string              { return chatGPTName }
func (c *ChatGPTClient) Model() string             { return c.textModel }
func (c *ChatGPTClient) Tier() domain.ProviderTier { return domain.TierPrimary }
func (c *ChatGPTClient) SupportsVision() bool      { return c.visionModel != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GenerateText sends the prompt as a single user message.
func (c *ChatGPTClient) GenerateText(ctx context.Context, prompt string, _ ports.GenerationContext) (string, error) {
	return c.complete(ctx, chatRequest{
		Model: c.textModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You write concise, professional marketing copy."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.5,
	})
}

// DescribeImage sends the image inline as a data URL next to the prompt.
func (c *ChatGPTClient) DescribeImage(ctx context.Context, img domain.Image, prompt string, _ ports.GenerationContext) (string, error) {
	if !c.SupportsVision() {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderUnavailable, errors.New("no vision model configured"))
	}
	dataURL := "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	return c.complete(ctx, chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL, Detail: "low"}},
			},
		}},
		MaxTokens:   c.maxTokens,
		Temperature: 0.3,
	})
}

func (c *ChatGPTClient) complete(ctx context.Context, payload chatRequest) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || payload.Model == "" {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderAuth, errors.New("chatgpt client misconfigured"))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return "", domain.NewProviderError(chatGPTName, domain.ProviderTimeout, err)
		}
		return "", domain.NewProviderError(chatGPTName, domain.ProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", statusError(resp.StatusCode, raw)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderInvalidResponse, fmt.Errorf("decode response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderInvalidResponse, errors.New("no choices in response"))
	}
	choice := decoded.Choices[0]
	if choice.FinishReason == "content_filter" {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderContentFilter, errors.New("completion blocked by content filter"))
	}
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return "", domain.NewProviderError(chatGPTName, domain.ProviderInvalidResponse, errors.New("empty completion"))
	}
	return text, nil
}

func statusError(status int, raw []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(raw, &apiErr)
	msg := strings.TrimSpace(apiErr.Error.Message)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	err := fmt.Errorf("chatgpt error %d: %s", status, msg)

	code := apiErr.Error.Code
	switch {
	case code == "content_filter" || code == "content_policy_violation":
		return domain.NewProviderError(chatGPTName, domain.ProviderContentFilter, err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewProviderError(chatGPTName, domain.ProviderAuth, err)
	case status == http.StatusTooManyRequests:
		return domain.NewProviderError(chatGPTName, domain.ProviderRateLimited, err)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.NewProviderError(chatGPTName, domain.ProviderTimeout, err)
	case status >= http.StatusInternalServerError:
		return domain.NewProviderError(chatGPTName, domain.ProviderUnavailable, err)
	default:
		return domain.NewProviderError(chatGPTName, domain.ProviderInvalidResponse, err)
	}
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}
