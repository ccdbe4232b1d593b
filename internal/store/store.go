// Package store owns the durable thread collection. It is the sole writer of
// thread state: handlers and services read copies and issue mutations here.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
	"github.com/college-essay-ai/essay-platform/pkg/metrics"
)

// maxTitleRunes bounds the default title derived from the first user input.
const maxTitleRunes = 48

// Backend persists the serialized thread collection as a single durable
// record. The collection is small and bounded by user activity, so the whole
// record is rewritten after every mutation.
type Backend interface {
	Load(ctx context.Context) ([]model.Thread, error)
	Save(ctx context.Context, threads []model.Thread) error
}

// Store maintains the authoritative thread collection. The active-thread flag
// is exclusive per user: switching activates exactly one thread and
// deactivates all others belonging to that user.
type Store struct {
	backend Backend
	logger  *logger.Logger

	mu      sync.RWMutex
	threads []*model.Thread
}

// New creates a store over the given backend. Call Load before first use.
func New(backend Backend, log *logger.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  log,
	}
}

// Load restores the collection from durable storage. Missing or unreadable
// state is recovered locally by starting with an empty collection; load never
// fails the caller.
func (s *Store) Load(ctx context.Context) error {
	threads, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("discarding unreadable thread state", zap.Error(err))
		threads = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threads = make([]*model.Thread, 0, len(threads))
	for i := range threads {
		t := threads[i]
		s.threads = append(s.threads, &t)
	}
	return nil
}

// CreateThread inserts a new empty thread for the user, marks it active, and
// deactivates the user's other threads.
func (s *Store) CreateThread(ctx context.Context, userID, title string) (model.Thread, error) {
	now := time.Now().UTC()
	thread := &model.Thread{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
		Messages:  []model.Message{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deactivateAllLocked(userID)
	s.threads = append(s.threads, thread)
	metrics.ThreadsTotal.Inc()

	// Creation always succeeds: the thread lives in memory even when the
	// persist fails, and persistLocked already logs and counts the failure.
	_ = s.persistLocked(ctx)

	return cloneThread(thread), nil
}

// SwitchThread marks the referenced thread active and deactivates the user's
// others. A missing id is a tolerated no-op: the caller may race a deletion.
func (s *Store) SwitchThread(ctx context.Context, userID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := s.findLocked(userID, threadID)
	if thread == nil {
		return nil
	}

	s.deactivateAllLocked(userID)
	thread.IsActive = true

	return s.persistLocked(ctx)
}

// DeleteThread removes the thread. If it was active, activation transfers to
// the user's most recently updated remaining thread, or to none.
func (s *Store) DeleteThread(ctx context.Context, userID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.threads {
		if t.UserID == userID && t.ID == threadID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	wasActive := s.threads[idx].IsActive
	s.threads = append(s.threads[:idx], s.threads[idx+1:]...)

	if wasActive {
		var next *model.Thread
		for _, t := range s.threads {
			if t.UserID != userID {
				continue
			}
			if next == nil || t.UpdatedAt.After(next.UpdatedAt) {
				next = t
			}
		}
		if next != nil {
			next.IsActive = true
		}
	}

	return s.persistLocked(ctx)
}

// RenameThread sets the thread title. A missing id is a tolerated no-op.
func (s *Store) RenameThread(ctx context.Context, userID, threadID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := s.findLocked(userID, threadID)
	if thread == nil {
		return nil
	}

	thread.Title = title
	thread.UpdatedAt = time.Now().UTC()

	return s.persistLocked(ctx)
}

// AppendMessage appends msg to the thread's sequence and refreshes its
// UpdatedAt. Messages are append-only; no reordering or in-place edits. A
// missing thread is a tolerated no-op.
func (s *Store) AppendMessage(ctx context.Context, userID, threadID string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := s.findLocked(userID, threadID)
	if thread == nil {
		return nil
	}

	if msg.ID == "" {
		msg.ID = uuid.Must(uuid.NewV7()).String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	thread.Messages = append(thread.Messages, msg)
	thread.UpdatedAt = time.Now().UTC()
	if thread.Title == "" && msg.Type == model.MessageUserInput {
		thread.Title = defaultTitle(msg.Content)
	}
	metrics.MessagesTotal.WithLabelValues(string(msg.Type)).Inc()

	return s.persistLocked(ctx)
}

// SetPersonalDetails updates the thread-scoped free-text field used to enrich
// future prompts. A missing thread is a tolerated no-op.
func (s *Store) SetPersonalDetails(ctx context.Context, userID, threadID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := s.findLocked(userID, threadID)
	if thread == nil {
		return nil
	}

	thread.PersonalDetails = text
	thread.UpdatedAt = time.Now().UTC()

	return s.persistLocked(ctx)
}

// Thread returns a copy of the named thread.
func (s *Store) Thread(userID, threadID string) (model.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread := s.findLocked(userID, threadID)
	if thread == nil {
		return model.Thread{}, false
	}
	return cloneThread(thread), true
}

// Threads returns copies of the user's threads, most recently updated first.
func (s *Store) Threads(userID string) []model.Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Thread
	for _, t := range s.threads {
		if t.UserID == userID {
			out = append(out, cloneThread(t))
		}
	}
	sortByUpdatedDesc(out)
	return out
}

// ActiveThread returns a copy of the user's active thread, if any.
func (s *Store) ActiveThread(userID string) (model.Thread, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.threads {
		if t.UserID == userID && t.IsActive {
			return cloneThread(t), true
		}
	}
	return model.Thread{}, false
}

func (s *Store) findLocked(userID, threadID string) *model.Thread {
	for _, t := range s.threads {
		if t.UserID == userID && t.ID == threadID {
			return t
		}
	}
	return nil
}

func (s *Store) deactivateAllLocked(userID string) {
	for _, t := range s.threads {
		if t.UserID == userID {
			t.IsActive = false
		}
	}
}

// persistLocked rewrites the whole collection. The in-memory mutation stands
// even when the write fails; the next successful persist carries it.
func (s *Store) persistLocked(ctx context.Context) error {
	snapshot := make([]model.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		snapshot = append(snapshot, cloneThread(t))
	}

	if err := s.backend.Save(ctx, snapshot); err != nil {
		metrics.StorePersistFailures.Inc()
		s.logger.Error("failed to persist thread state", zap.Error(err))
		return err
	}
	return nil
}

func cloneThread(t *model.Thread) model.Thread {
	out := *t
	out.Messages = make([]model.Message, len(t.Messages))
	copy(out.Messages, t.Messages)
	return out
}

func sortByUpdatedDesc(threads []model.Thread) {
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
}

// defaultTitle truncates the first user input to a short label, breaking on a
// word boundary when one is close enough.
func defaultTitle(content string) string {
	title := strings.TrimSpace(content)
	if title == "" {
		return "New Essay"
	}

	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}

	cut := maxTitleRunes
	for i := maxTitleRunes; i > maxTitleRunes/2; i-- {
		if unicode.IsSpace(runes[i-1]) {
			cut = i - 1
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}
