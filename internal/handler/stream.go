package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/college-essay-ai/essay-platform/internal/middleware"
	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/internal/service"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
	"github.com/college-essay-ai/essay-platform/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	essayService  *service.EssayService
	threadService *service.ThreadService
	logger        *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(essaySvc *service.EssayService, threadSvc *service.ThreadService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		essayService:  essaySvc,
		threadService: threadSvc,
		logger:        log,
	}
}

// tokenEvent is a streaming token event.
type tokenEvent struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// errorEvent is a streaming error event.
type errorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// heartbeatEvent keeps idle connections alive.
type heartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// replayCompleteEvent marks the end of message replay.
type replayCompleteEvent struct {
	MessageCount int `json:"message_count"`
}

// Stream handles GET /api/v1/threads/:id/stream
// Replays the thread's messages as SSE events, then holds the connection open
// with heartbeats.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	thread, err := h.threadService.Get(ctx, userID, threadID)
	if err != nil {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}

	flusher, ok := setupSSE(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sendSSEEvent(w, flusher, "connected", map[string]string{
		"thread_id": threadID,
	})

	for _, msg := range thread.Messages {
		select {
		case <-ctx.Done():
			return
		default:
		}
		sendSSEEvent(w, flusher, "message", msg)
	}

	sendSSEEvent(w, flusher, "replay_complete", &replayCompleteEvent{
		MessageCount: len(thread.Messages),
	})

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE client disconnected", zap.String("thread_id", threadID))
			return
		case <-heartbeat.C:
			sendSSEEvent(w, flusher, "heartbeat", &heartbeatEvent{
				Timestamp: time.Now().UTC(),
			})
		}
	}
}

// Generate handles POST /api/v1/threads/:id/stream
// Runs a generation and streams tokens as they arrive.
func (h *StreamHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.GenerateEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ThreadID = threadID

	if err := middleware.ValidatePrompt(req.Prompt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateWordCount(req.WordCount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := setupSSE(w)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	msg, err := h.essayService.GenerateStream(ctx, userID, middleware.GetCompletionKey(ctx), &req,
		func(token string, index int) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return sendSSEEvent(w, flusher, "token", &tokenEvent{
				Token: token,
				Index: index,
			})
		},
	)
	if err != nil {
		sendSSEEvent(w, flusher, "error", &errorEvent{
			Code:    "stream_error",
			Message: err.Error(),
		})
		return
	}

	sendSSEEvent(w, flusher, "message_complete", msg)
	sendSSEEvent(w, flusher, "done", map[string]bool{"success": true})
}

func setupSSE(w http.ResponseWriter) (http.Flusher, bool) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	return flusher, ok
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
