package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/college-essay-ai/essay-platform/internal/composer"
	"github.com/college-essay-ai/essay-platform/internal/llm"
	"github.com/college-essay-ai/essay-platform/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"thread not found", service.ErrThreadNotFound, http.StatusNotFound},
		{"thread busy", service.ErrThreadBusy, http.StatusConflict},
		{"no essay", service.ErrNoEssay, http.StatusBadRequest},
		{"missing api key", llm.ErrMissingAPIKey, http.StatusBadRequest},
		{"missing prompt", composer.ErrMissingPrompt, http.StatusBadRequest},
		{"missing essay", composer.ErrMissingEssay, http.StatusBadRequest},
		{"boundary invalid key", &llm.Error{Category: llm.CategoryInvalidKey, StatusCode: 401, Err: errors.New("nope")}, http.StatusUnauthorized},
		{"boundary access denied", &llm.Error{Category: llm.CategoryAccessDenied, StatusCode: 403, Err: errors.New("nope")}, http.StatusForbidden},
		{"boundary too large", &llm.Error{Category: llm.CategoryTooLarge, StatusCode: 413, Err: errors.New("nope")}, http.StatusRequestEntityTooLarge},
		{"boundary rate limited", &llm.Error{Category: llm.CategoryRateLimited, StatusCode: 429, Err: errors.New("nope")}, http.StatusTooManyRequests},
		{"boundary unknown", &llm.Error{Category: llm.CategoryUnknown, StatusCode: 500, Err: errors.New("nope")}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body missing message")
			}
		})
	}
}

func TestBoundaryErrorNoticeHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, &llm.Error{
		Category:   llm.CategoryRateLimited,
		StatusCode: 429,
		Err:        errors.New("upstream trace id 123 secret detail"),
	})

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["error"] != "Rate limit exceeded. Please try again in a few minutes." {
		t.Errorf("notice = %q", body["error"])
	}
}
