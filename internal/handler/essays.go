package handler

import (
	"encoding/json"
	"net/http"

	"github.com/college-essay-ai/essay-platform/internal/middleware"
	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/internal/service"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
)

// EssayHandler handles essay operation endpoints.
type EssayHandler struct {
	service *service.EssayService
	logger  *logger.Logger
}

// NewEssayHandler creates a new essay handler.
func NewEssayHandler(svc *service.EssayService, log *logger.Logger) *EssayHandler {
	return &EssayHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /api/v1/essays/generate
func (h *EssayHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.GenerateEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidatePrompt(req.Prompt); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateWordCount(req.WordCount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Generate(ctx, userID, middleware.GetCompletionKey(ctx), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.EssayResponse{
		ThreadID: req.ThreadID,
		Message:  *msg,
	})
}

// Edit handles POST /api/v1/essays/edit
func (h *EssayHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.EditEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateEssayText(req.Essay); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateInstructions(req.Instructions); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Edit(ctx, userID, middleware.GetCompletionKey(ctx), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.EssayResponse{
		ThreadID: req.ThreadID,
		Message:  *msg,
	})
}

// Analyze handles POST /api/v1/essays/analyze
func (h *EssayHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.AnalyzeEssayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateEssayText(req.Essay); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.Analyze(ctx, userID, middleware.GetCompletionKey(ctx), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.EssayResponse{
		ThreadID: req.ThreadID,
		Message:  *msg,
	})
}

// AnalyzeImage handles POST /api/v1/essays/analyze-image
func (h *EssayHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.AnalyzeImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateImageURL(req.ImageURL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateWordCount(req.WordCount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, err := h.service.AnalyzeImage(ctx, userID, middleware.GetCompletionKey(ctx), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.EssayResponse{
		ThreadID: req.ThreadID,
		Message:  *msg,
	})
}

// Chat handles POST /api/v1/chat
func (h *EssayHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidatePrompt(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, intent, err := h.service.Chat(ctx, userID, middleware.GetCompletionKey(ctx), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.EssayResponse{
		ThreadID: req.ThreadID,
		Message:  *msg,
		Intent:   string(intent),
	})
}

// TestKey handles POST /api/v1/keys/test
func (h *EssayHandler) TestKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key := middleware.GetCompletionKey(ctx)
	if err := h.service.TestKey(ctx, key); err != nil {
		writeJSON(w, http.StatusOK, &model.TestKeyResponse{
			Valid:  false,
			Reason: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, &model.TestKeyResponse{Valid: true})
}
