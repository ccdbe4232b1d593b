// Package llm provides clients for the remote completion service.
package llm

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned when no completion credential is available.
var ErrMissingAPIKey = errors.New("API key is required")

// StreamCallback is called for each token during streaming.
type StreamCallback func(token string, index int) error

// ChatMessage is one message on the boundary call. When ImageURL is set the
// content travels as text and image_url parts.
type ChatMessage struct {
	Role     string
	Content  string
	ImageURL string
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model            string
	Messages         []ChatMessage
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for completion providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// CompleteStream sends a streaming completion request, invoking callback
	// per token.
	CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error)

	// TestKey verifies the client's credential against the provider.
	TestKey(ctx context.Context) error

	// Name returns the provider name.
	Name() string
}

// Factory creates clients bound to a credential. The essay endpoints accept a
// per-request user key; requests without one fall back to the configured
// server key.
type Factory interface {
	Client(apiKey string) (Client, error)
}
