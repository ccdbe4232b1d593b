package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/college-essay-ai/essay-platform/internal/composer"
	"github.com/college-essay-ai/essay-platform/internal/events"
	"github.com/college-essay-ai/essay-platform/internal/llm"
	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/internal/store"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
	"github.com/college-essay-ai/essay-platform/pkg/metrics"
)

var (
	// ErrThreadBusy is returned when an action is already in flight for the
	// thread. Actions are rejected, not queued.
	ErrThreadBusy = errors.New("another request is in flight for this thread")

	// ErrNoEssay is returned when a chat message asks for an edit or
	// analysis but the thread holds no essay yet.
	ErrNoEssay = errors.New("no essay in this thread to work on")
)

// Options configure defaults for boundary calls.
type Options struct {
	DefaultModel     string
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// TokenCallback is called for each token during streaming.
type TokenCallback func(token string, index int) error

// EssayService orchestrates essay operations: validate, compose the prompt,
// make the boundary call, and append the resulting messages. A failed call
// appends nothing; the thread is left exactly as it was.
type EssayService struct {
	store     *store.Store
	clients   llm.Factory
	publisher *events.Publisher
	opts      Options
	logger    *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewEssayService creates a new essay service. publisher may be nil.
func NewEssayService(st *store.Store, clients llm.Factory, publisher *events.Publisher, opts Options, log *logger.Logger) *EssayService {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 4096
	}
	return &EssayService{
		store:     st,
		clients:   clients,
		publisher: publisher,
		opts:      opts,
		logger:    log,
		inFlight:  make(map[string]struct{}),
	}
}

// Generate produces a new essay and appends the user input and the generated
// essay to the thread.
func (s *EssayService) Generate(ctx context.Context, userID, apiKey string, req *model.GenerateEssayRequest) (*model.Message, error) {
	return s.GenerateStream(ctx, userID, apiKey, req, nil)
}

// GenerateStream is Generate with optional per-token streaming.
func (s *EssayService) GenerateStream(ctx context.Context, userID, apiKey string, req *model.GenerateEssayRequest, onToken TokenCallback) (*model.Message, error) {
	thread, release, err := s.acquire(userID, req.ThreadID)
	if err != nil {
		return nil, err
	}
	defer release()

	systemPrompt, userPrompt, err := composer.ComposeGenerationPrompt(composer.GenerationParams{
		TopicPrompt:     req.Prompt,
		WordCount:       req.WordCount,
		Tone:            req.Tone,
		Style:           req.Style,
		PersonalDetails: thread.PersonalDetails,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, userID, apiKey, "generate", &llm.CompletionRequest{
		Model: s.resolveModel(req.Model),
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:        s.resolveMaxTokens(req.MaxTokens),
		Temperature:      0.7,
		TopP:             s.opts.TopP,
		FrequencyPenalty: s.opts.FrequencyPenalty,
		PresencePenalty:  s.opts.PresencePenalty,
	}, &thread, onToken)
	if err != nil {
		return nil, err
	}

	return s.appendExchange(ctx, userID, thread.ID,
		model.Message{
			Type:    model.MessageUserInput,
			Content: req.Prompt,
		},
		model.Message{
			Type:    model.MessageGenerated,
			Content: resp.Content,
			Model:   resp.Model,
			Generation: &model.GenerationMetadata{
				WordCount: req.WordCount,
				Tone:      req.Tone,
				Style:     req.Style,
			},
		},
	)
}

// Edit revises the essay per the instructions and appends the edited essay.
func (s *EssayService) Edit(ctx context.Context, userID, apiKey string, req *model.EditEssayRequest) (*model.Message, error) {
	thread, release, err := s.acquire(userID, req.ThreadID)
	if err != nil {
		return nil, err
	}
	defer release()

	systemPrompt, userPrompt, err := composer.ComposeEditPrompt(composer.EditParams{
		EssayText:       req.Essay,
		Instructions:    req.Instructions,
		PersonalDetails: thread.PersonalDetails,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, userID, apiKey, "edit", &llm.CompletionRequest{
		Model: s.resolveModel(req.Model),
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:        s.resolveMaxTokens(req.MaxTokens),
		Temperature:      0.7,
		TopP:             s.opts.TopP,
		FrequencyPenalty: s.opts.FrequencyPenalty,
		PresencePenalty:  s.opts.PresencePenalty,
	}, &thread, nil)
	if err != nil {
		return nil, err
	}

	return s.appendExchange(ctx, userID, thread.ID,
		model.Message{
			Type:    model.MessageUserInput,
			Content: req.Instructions,
		},
		model.Message{
			Type:    model.MessageEdited,
			Content: resp.Content,
			Model:   resp.Model,
			Edit: &model.EditMetadata{
				Instructions: req.Instructions,
			},
		},
	)
}

// Analyze critiques the essay and appends the structured analysis.
func (s *EssayService) Analyze(ctx context.Context, userID, apiKey string, req *model.AnalyzeEssayRequest) (*model.Message, error) {
	thread, release, err := s.acquire(userID, req.ThreadID)
	if err != nil {
		return nil, err
	}
	defer release()

	systemPrompt, userPrompt, err := composer.ComposeAnalysisPrompt(composer.AnalysisParams{
		EssayText:       req.Essay,
		OriginalPrompt:  req.Prompt,
		PersonalDetails: thread.PersonalDetails,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, userID, apiKey, "analyze", &llm.CompletionRequest{
		Model: s.resolveModel(req.Model),
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:        s.resolveMaxTokens(req.MaxTokens),
		Temperature:      0.3,
		TopP:             s.opts.TopP,
		FrequencyPenalty: s.opts.FrequencyPenalty,
		PresencePenalty:  s.opts.PresencePenalty,
	}, &thread, nil)
	if err != nil {
		return nil, err
	}

	return s.appendExchange(ctx, userID, thread.ID,
		model.Message{
			Type:    model.MessageUserInput,
			Content: "Analyze my essay",
		},
		model.Message{
			Type:     model.MessageAnalyzed,
			Content:  resp.Content,
			Model:    resp.Model,
			Analysis: composer.ParseAnalysis(resp.Content),
		},
	)
}

// AnalyzeImage generates an essay grounded in an image.
func (s *EssayService) AnalyzeImage(ctx context.Context, userID, apiKey string, req *model.AnalyzeImageRequest) (*model.Message, error) {
	thread, release, err := s.acquire(userID, req.ThreadID)
	if err != nil {
		return nil, err
	}
	defer release()

	systemPrompt, userPrompt, err := composer.ComposeImageAnalysisPrompt(composer.ImageParams{
		ImageURL:        req.ImageURL,
		Context:         req.Prompt,
		WordCount:       req.WordCount,
		Tone:            req.Tone,
		Style:           req.Style,
		PersonalDetails: thread.PersonalDetails,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.complete(ctx, userID, apiKey, "analyze_image", &llm.CompletionRequest{
		Model: s.resolveModel(req.Model),
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt, ImageURL: req.ImageURL},
		},
		MaxTokens:        s.resolveMaxTokens(req.MaxTokens),
		Temperature:      0.7,
		TopP:             s.opts.TopP,
		FrequencyPenalty: s.opts.FrequencyPenalty,
		PresencePenalty:  s.opts.PresencePenalty,
	}, &thread, nil)
	if err != nil {
		return nil, err
	}

	return s.appendExchange(ctx, userID, thread.ID,
		model.Message{
			Type:    model.MessageUserInput,
			Content: req.Prompt,
		},
		model.Message{
			Type:    model.MessageGenerated,
			Content: resp.Content,
			Model:   resp.Model,
			Generation: &model.GenerationMetadata{
				WordCount: req.WordCount,
				Tone:      req.Tone,
				Style:     req.Style,
				ImageURL:  req.ImageURL,
			},
		},
	)
}

// Chat routes a free-text message through the intent classifier to one of the
// essay operations. Edits and analyses work on the latest essay in the
// thread.
func (s *EssayService) Chat(ctx context.Context, userID, apiKey string, req *model.ChatRequest) (*model.Message, composer.Intent, error) {
	intent := composer.ClassifyIntent(req.Message)

	switch intent {
	case composer.IntentEdit:
		essay, ok := s.latestEssay(userID, req.ThreadID)
		if !ok {
			return nil, intent, ErrNoEssay
		}
		msg, err := s.Edit(ctx, userID, apiKey, &model.EditEssayRequest{
			ThreadID:     req.ThreadID,
			Essay:        essay,
			Instructions: req.Message,
			Model:        req.Model,
			MaxTokens:    req.MaxTokens,
		})
		return msg, intent, err

	case composer.IntentAnalyze:
		essay, ok := s.latestEssay(userID, req.ThreadID)
		if !ok {
			return nil, intent, ErrNoEssay
		}
		msg, err := s.Analyze(ctx, userID, apiKey, &model.AnalyzeEssayRequest{
			ThreadID:  req.ThreadID,
			Essay:     essay,
			Model:     req.Model,
			MaxTokens: req.MaxTokens,
		})
		return msg, intent, err

	default:
		msg, err := s.Generate(ctx, userID, apiKey, &model.GenerateEssayRequest{
			ThreadID:  req.ThreadID,
			Prompt:    req.Message,
			Model:     req.Model,
			MaxTokens: req.MaxTokens,
		})
		return msg, intent, err
	}
}

// TestKey verifies a completion credential without touching any thread.
func (s *EssayService) TestKey(ctx context.Context, apiKey string) error {
	client, err := s.clients.Client(apiKey)
	if err != nil {
		return err
	}
	return client.TestKey(ctx)
}

// acquire looks up the thread and claims its busy flag.
func (s *EssayService) acquire(userID, threadID string) (model.Thread, func(), error) {
	thread, ok := s.store.Thread(userID, threadID)
	if !ok {
		return model.Thread{}, nil, ErrThreadNotFound
	}

	key := userID + "/" + threadID
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return model.Thread{}, nil, ErrThreadBusy
	}
	s.inFlight[key] = struct{}{}

	release := func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}
	return thread, release, nil
}

// complete makes the boundary call and records its outcome. On failure the
// thread's message sequence is untouched.
func (s *EssayService) complete(ctx context.Context, userID, apiKey, operation string, req *llm.CompletionRequest, thread *model.Thread, onToken TokenCallback) (*llm.CompletionResponse, error) {
	client, err := s.clients.Client(apiKey)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var resp *llm.CompletionResponse
	if onToken != nil {
		resp, err = client.CompleteStream(ctx, req, llm.StreamCallback(onToken))
	} else {
		resp, err = client.Complete(ctx, req)
	}
	duration := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordCompletion(operation, req.Model, "error", duration, 0, 0)
		s.publisher.Publish(ctx, events.Event{
			UserID:   userID,
			ThreadID: thread.ID,
			Type:     events.TypeCallFailed,
			Model:    req.Model,
			Reason:   string(llm.CategoryOf(err)),
		})
		s.logger.Warn("completion call failed",
			zap.String("operation", operation),
			zap.String("thread_id", thread.ID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RecordCompletion(operation, resp.Model, "success", duration, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

// appendExchange appends the user input and the produced artifact in order.
func (s *EssayService) appendExchange(ctx context.Context, userID, threadID string, userMsg, artifact model.Message) (*model.Message, error) {
	if err := s.store.AppendMessage(ctx, userID, threadID, userMsg); err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(ctx, userID, threadID, artifact); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.Event{
		UserID:   userID,
		ThreadID: threadID,
		Type:     events.TypeMessageAppended,
		Model:    artifact.Model,
	})

	// Read back the stored artifact so the caller sees the assigned ID and
	// timestamp.
	thread, ok := s.store.Thread(userID, threadID)
	if !ok || len(thread.Messages) == 0 {
		return &artifact, nil
	}
	stored := thread.Messages[len(thread.Messages)-1]
	return &stored, nil
}

// latestEssay returns the content of the most recent generated or edited
// message in the thread.
func (s *EssayService) latestEssay(userID, threadID string) (string, bool) {
	thread, ok := s.store.Thread(userID, threadID)
	if !ok {
		return "", false
	}
	for i := len(thread.Messages) - 1; i >= 0; i-- {
		switch thread.Messages[i].Type {
		case model.MessageGenerated, model.MessageEdited:
			return thread.Messages[i].Content, true
		}
	}
	return "", false
}

func (s *EssayService) resolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	return s.opts.DefaultModel
}

func (s *EssayService) resolveMaxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.opts.MaxTokens
}
