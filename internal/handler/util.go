package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/college-essay-ai/essay-platform/internal/composer"
	"github.com/college-essay-ai/essay-platform/internal/llm"
	"github.com/college-essay-ai/essay-platform/internal/service"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeServiceError maps service and boundary errors onto HTTP responses.
// Boundary failures surface as their short category notice; everything the
// caller can fix is a 4xx.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrThreadNotFound):
		writeError(w, http.StatusNotFound, "thread not found")
	case errors.Is(err, service.ErrThreadBusy):
		writeError(w, http.StatusConflict, "another request is in flight for this thread")
	case errors.Is(err, service.ErrNoEssay):
		writeError(w, http.StatusBadRequest, "no essay in this thread to work on")
	case errors.Is(err, llm.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, "API key is required")
	case errors.Is(err, composer.ErrMissingPrompt),
		errors.Is(err, composer.ErrMissingEssay),
		errors.Is(err, composer.ErrMissingInstructions),
		errors.Is(err, composer.ErrMissingImageURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		var berr *llm.Error
		if errors.As(err, &berr) {
			writeError(w, boundaryStatus(berr.Category), berr.Message())
			return
		}
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func boundaryStatus(category llm.Category) int {
	switch category {
	case llm.CategoryInvalidKey:
		return http.StatusUnauthorized
	case llm.CategoryAccessDenied:
		return http.StatusForbidden
	case llm.CategoryTooLarge:
		return http.StatusRequestEntityTooLarge
	case llm.CategoryRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}
