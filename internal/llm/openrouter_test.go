package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const completionBody = `{
	"id": "gen-1",
	"model": "anthropic/claude-3.5-sonnet",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "The essay text."},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 120, "completion_tokens": 480, "total_tokens": 600}
}`

func newTestFactory(serverURL string) *OpenRouterFactory {
	return NewOpenRouterFactory(OpenRouterConfig{
		BaseURL: serverURL,
		SiteURL: "https://essays.example.com",
		AppName: "EssayPlatform",
	})
}

func completionReq() *CompletionRequest {
	return &CompletionRequest{
		Model: "anthropic/claude-3.5-sonnet",
		Messages: []ChatMessage{
			{Role: "system", Content: "You write essays."},
			{Role: "user", Content: "Write one."},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

func TestCompleteSuccess(t *testing.T) {
	var gotReferer, gotTitle, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionBody)
	}))
	defer server.Close()

	client, err := newTestFactory(server.URL).Client("sk-or-test")
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}

	resp, err := client.Complete(context.Background(), completionReq())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "The essay text." {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Model != "anthropic/claude-3.5-sonnet" {
		t.Errorf("Model = %q", resp.Model)
	}
	if resp.TokensIn != 120 || resp.TokensOut != 480 {
		t.Errorf("tokens = %d/%d, want 120/480", resp.TokensIn, resp.TokensOut)
	}
	if resp.StopReason != "stop" {
		t.Errorf("StopReason = %q", resp.StopReason)
	}

	if gotReferer != "https://essays.example.com" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotTitle != "EssayPlatform" {
		t.Errorf("X-Title = %q", gotTitle)
	}
	if gotAuth != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestCompleteErrorCategories(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{http.StatusUnauthorized, CategoryInvalidKey},
		{http.StatusForbidden, CategoryAccessDenied},
		{http.StatusRequestEntityTooLarge, CategoryTooLarge},
		{http.StatusTooManyRequests, CategoryRateLimited},
		{http.StatusInternalServerError, CategoryUnknown},
		{http.StatusBadGateway, CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprintf(w, `{"error": {"message": "upstream says no", "type": "api_error", "code": %d}}`, tt.status)
			}))
			defer server.Close()

			client, err := newTestFactory(server.URL).Client("sk-or-test")
			if err != nil {
				t.Fatalf("Client failed: %v", err)
			}

			_, err = client.Complete(context.Background(), completionReq())
			if err == nil {
				t.Fatal("expected an error")
			}

			var berr *Error
			if !errors.As(err, &berr) {
				t.Fatalf("error %T is not a boundary error", err)
			}
			if berr.Category != tt.want {
				t.Errorf("Category = %q, want %q", berr.Category, tt.want)
			}
			if berr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", berr.StatusCode, tt.status)
			}
			if got := CategoryOf(err); got != tt.want {
				t.Errorf("CategoryOf = %q, want %q", got, tt.want)
			}
			if berr.Message() == "" {
				t.Error("categorized error must carry a user-facing notice")
			}
		})
	}
}

func TestCompleteStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"id":"gen-1","choices":[{"index":0,"delta":{"content":"Hello"}}]}`,
			`{"id":"gen-1","choices":[{"index":0,"delta":{"content":" world"}}]}`,
			`{"id":"gen-1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
		}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := newTestFactory(server.URL).Client("sk-or-test")
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}

	var tokens []string
	resp, err := client.CompleteStream(context.Background(), completionReq(), func(token string, index int) error {
		if index != len(tokens) {
			t.Errorf("token index = %d, want %d", index, len(tokens))
		}
		tokens = append(tokens, token)
		return nil
	})
	if err != nil {
		t.Fatalf("CompleteStream failed: %v", err)
	}

	if resp.Content != "Hello world" {
		t.Errorf("Content = %q", resp.Content)
	}
	if len(tokens) != 2 {
		t.Errorf("expected 2 token callbacks, got %d", len(tokens))
	}
	if resp.StopReason != "stop" {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
}

func TestTestKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-or-good" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error": {"message": "bad key", "type": "auth_error"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "data": [{"id": "anthropic/claude-3.5-sonnet", "object": "model"}]}`)
	}))
	defer server.Close()

	factory := newTestFactory(server.URL)

	good, _ := factory.Client("sk-or-good")
	if err := good.TestKey(context.Background()); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}

	bad, _ := factory.Client("sk-or-bad")
	err := bad.TestKey(context.Background())
	if err == nil {
		t.Fatal("invalid key accepted")
	}
	if got := CategoryOf(err); got != CategoryInvalidKey {
		t.Errorf("CategoryOf = %q, want %q", got, CategoryInvalidKey)
	}
}

func TestFactoryKeyFallback(t *testing.T) {
	factory := NewOpenRouterFactory(OpenRouterConfig{DefaultAPIKey: "sk-or-server"})
	if _, err := factory.Client(""); err != nil {
		t.Errorf("factory with a default key must accept an empty user key: %v", err)
	}

	bare := NewOpenRouterFactory(OpenRouterConfig{})
	if _, err := bare.Client(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}
