package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig holds the settings shared by all OpenRouter clients.
type OpenRouterConfig struct {
	// BaseURL of the chat-completions endpoint. Defaults to the public
	// OpenRouter API.
	BaseURL string
	// SiteURL and AppName are the informational headers OpenRouter uses to
	// attribute traffic (HTTP-Referer and X-Title).
	SiteURL string
	AppName string
	// DefaultAPIKey is used for requests that do not carry a user key.
	DefaultAPIKey string
	// Timeout bounds a single completion call.
	Timeout time.Duration
}

// OpenRouterFactory creates OpenRouter clients bound to a credential.
type OpenRouterFactory struct {
	cfg OpenRouterConfig
}

// NewOpenRouterFactory creates a factory for OpenRouter clients.
func NewOpenRouterFactory(cfg OpenRouterConfig) *OpenRouterFactory {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &OpenRouterFactory{cfg: cfg}
}

// Client returns a client bound to apiKey, falling back to the configured
// default key.
func (f *OpenRouterFactory) Client(apiKey string) (Client, error) {
	if apiKey == "" {
		apiKey = f.cfg.DefaultAPIKey
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = f.cfg.BaseURL
	config.HTTPClient = &http.Client{
		Timeout: f.cfg.Timeout,
		Transport: &attributionTransport{
			siteURL: f.cfg.SiteURL,
			appName: f.cfg.AppName,
			base:    http.DefaultTransport,
		},
	}

	return &OpenRouterClient{client: openai.NewClientWithConfig(config)}, nil
}

// attributionTransport adds the OpenRouter attribution headers to every
// request.
type attributionTransport struct {
	siteURL string
	appName string
	base    http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return t.base.RoundTrip(req)
}

// OpenRouterClient speaks the chat-completions protocol against an
// OpenRouter-compatible endpoint.
type OpenRouterClient struct {
	client *openai.Client
}

// Name returns the provider name.
func (c *OpenRouterClient) Name() string {
	return "openrouter"
}

// TestKey verifies the credential with a model listing, the cheapest
// authenticated call the endpoint offers.
func (c *OpenRouterClient) TestKey(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return categorize(err)
	}
	return nil
}

// Complete sends a completion request.
func (c *OpenRouterClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, buildChatRequest(req, false))
	if err != nil {
		return nil, categorize(err)
	}

	var content, stopReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		stopReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:    content,
		Model:      resp.Model,
		TokensIn:   resp.Usage.PromptTokens,
		TokensOut:  resp.Usage.CompletionTokens,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// CompleteStream sends a streaming completion request.
func (c *OpenRouterClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	start := time.Now()

	stream, err := c.client.CreateChatCompletionStream(ctx, buildChatRequest(req, true))
	if err != nil {
		return nil, categorize(err)
	}
	defer stream.Close()

	var content, stopReason string
	index := 0

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, categorize(err)
		}

		if len(response.Choices) > 0 {
			delta := response.Choices[0].Delta.Content
			if delta != "" {
				content += delta
				if err := callback(delta, index); err != nil {
					return nil, err
				}
				index++
			}
			if response.Choices[0].FinishReason != "" {
				stopReason = string(response.Choices[0].FinishReason)
			}
		}
	}

	// Streaming responses carry no usage block; estimate from length.
	tokensOut := len(content) / 4

	return &CompletionResponse{
		Content:    content,
		Model:      req.Model,
		TokensOut:  tokensOut,
		StopReason: stopReason,
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

func buildChatRequest(req *CompletionRequest, stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		if msg.ImageURL == "" {
			messages[i] = openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Content,
			}
			continue
		}

		messages[i] = openai.ChatCompletionMessage{
			Role: msg.Role,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: msg.Content,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: msg.ImageURL,
					},
				},
			},
		}
	}

	return openai.ChatCompletionRequest{
		Model:            req.Model,
		Messages:         messages,
		MaxTokens:        req.MaxTokens,
		Temperature:      float32(req.Temperature),
		TopP:             float32(req.TopP),
		FrequencyPenalty: float32(req.FrequencyPenalty),
		PresencePenalty:  float32(req.PresencePenalty),
		Stream:           stream,
	}
}

// categorize maps go-openai errors onto boundary categories by HTTP status.
func categorize(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, err)
	}
	return &Error{Category: CategoryUnknown, Err: err}
}
