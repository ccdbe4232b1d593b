package model

// GenerateEssayRequest is the request body for essay generation.
type GenerateEssayRequest struct {
	ThreadID  string `json:"thread_id"`
	Prompt    string `json:"prompt"`
	WordCount int    `json:"word_count,omitempty"`
	Tone      string `json:"tone,omitempty"`
	Style     string `json:"style,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// EditEssayRequest is the request body for essay editing.
type EditEssayRequest struct {
	ThreadID     string `json:"thread_id"`
	Essay        string `json:"essay"`
	Instructions string `json:"instructions"`
	Model        string `json:"model,omitempty"`
	MaxTokens    int    `json:"max_tokens,omitempty"`
}

// AnalyzeEssayRequest is the request body for essay analysis.
type AnalyzeEssayRequest struct {
	ThreadID  string `json:"thread_id"`
	Essay     string `json:"essay"`
	Prompt    string `json:"prompt,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// AnalyzeImageRequest is the request body for image-grounded generation.
type AnalyzeImageRequest struct {
	ThreadID  string `json:"thread_id"`
	ImageURL  string `json:"image_url"`
	Prompt    string `json:"prompt,omitempty"`
	WordCount int    `json:"word_count,omitempty"`
	Tone      string `json:"tone,omitempty"`
	Style     string `json:"style,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// ChatRequest is the request body for the free-text chat endpoint. The
// message is classified into one of the essay operations before dispatch.
type ChatRequest struct {
	ThreadID  string `json:"thread_id"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// EssayResponse is the response for generate, edit, analyze, and chat.
type EssayResponse struct {
	ThreadID string  `json:"thread_id"`
	Message  Message `json:"message"`
	Intent   string  `json:"intent,omitempty"`
}

// TestKeyResponse reports whether the supplied completion credential works.
type TestKeyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
