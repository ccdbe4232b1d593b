package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/college-essay-ai/essay-platform/internal/middleware"
	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/internal/service"
	"github.com/college-essay-ai/essay-platform/internal/store"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
)

type nullBackend struct{}

func (nullBackend) Load(ctx context.Context) ([]model.Thread, error)       { return nil, nil }
func (nullBackend) Save(ctx context.Context, threads []model.Thread) error { return nil }

// withUser stands in for the auth middleware in tests.
func withUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newThreadRouter(t *testing.T) (chi.Router, *store.Store) {
	t.Helper()
	st := store.New(nullBackend{}, logger.NewNop())
	st.Load(context.Background())

	svc := service.NewThreadService(st, nil, logger.NewNop())
	h := NewThreadHandler(svc, logger.NewNop())

	r := chi.NewRouter()
	r.Use(withUser("user-1"))
	r.Route("/threads", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/activate", h.Activate)
			r.Put("/personal-details", h.SetPersonalDetails)
			r.Get("/messages", h.Messages)
		})
	})
	return r, st
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestThreadCRUD(t *testing.T) {
	r, _ := newThreadRouter(t)

	// Create with a title.
	rec := doJSON(t, r, http.MethodPost, "/threads", `{"title":"My Essay"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created model.Thread
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created thread: %v", err)
	}
	if created.Title != "My Essay" || !created.IsActive {
		t.Errorf("created thread = %+v", created)
	}

	// Create with an empty body is allowed.
	rec = doJSON(t, r, http.MethodPost, "/threads", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("empty-body create status = %d", rec.Code)
	}

	// List shows both, newest activity first.
	rec = doJSON(t, r, http.MethodGet, "/threads", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list model.ListThreadsResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 2 {
		t.Fatalf("list total = %d, want 2", list.Total)
	}

	// Get the first thread back.
	rec = doJSON(t, r, http.MethodGet, "/threads/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Rename it.
	rec = doJSON(t, r, http.MethodPut, "/threads/"+created.ID, `{"title":"Renamed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d", rec.Code)
	}
	var renamed model.Thread
	json.Unmarshal(rec.Body.Bytes(), &renamed)
	if renamed.Title != "Renamed" {
		t.Errorf("renamed title = %q", renamed.Title)
	}

	// Activate it again.
	rec = doJSON(t, r, http.MethodPost, "/threads/"+created.ID+"/activate", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("activate status = %d", rec.Code)
	}

	// Set personal details.
	rec = doJSON(t, r, http.MethodPut, "/threads/"+created.ID+"/personal-details", `{"personal_details":"debate team captain"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("personal details status = %d", rec.Code)
	}

	// Messages listing starts empty.
	rec = doJSON(t, r, http.MethodGet, "/threads/"+created.ID+"/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("messages status = %d", rec.Code)
	}
	var messages model.ListMessagesResponse
	json.Unmarshal(rec.Body.Bytes(), &messages)
	if messages.Total != 0 {
		t.Errorf("messages total = %d, want 0", messages.Total)
	}

	// Delete it.
	rec = doJSON(t, r, http.MethodDelete, "/threads/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/threads/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestThreadHandlerRejectsBadIDs(t *testing.T) {
	r, _ := newThreadRouter(t)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/threads/not-a-uuid"},
		{http.MethodDelete, "/threads/not-a-uuid"},
		{http.MethodPost, "/threads/not-a-uuid/activate"},
		{http.MethodGet, "/threads/not-a-uuid/messages"},
	} {
		rec := doJSON(t, r, tt.method, tt.path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s status = %d, want 400", tt.method, tt.path, rec.Code)
		}
	}
}

func TestThreadHandlerNotFound(t *testing.T) {
	r, _ := newThreadRouter(t)

	const missing = "/threads/0191f2a0-0000-7000-8000-000000000000"
	rec := doJSON(t, r, http.MethodGet, missing, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, r, http.MethodDelete, missing, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, r, http.MethodPut, missing+"/personal-details", `{"personal_details":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("personal details status = %d, want 404", rec.Code)
	}
	// Activating a vanished thread is tolerated.
	rec = doJSON(t, r, http.MethodPost, missing+"/activate", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("activate status = %d, want 204", rec.Code)
	}
}

func TestThreadHandlerScopesToUser(t *testing.T) {
	r, st := newThreadRouter(t)

	other, err := st.CreateThread(context.Background(), "user-2", "not yours")
	if err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	rec := doJSON(t, r, http.MethodGet, "/threads/"+other.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/threads", "")
	var list model.ListThreadsResponse
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 0 {
		t.Errorf("cross-user list total = %d, want 0", list.Total)
	}
}
