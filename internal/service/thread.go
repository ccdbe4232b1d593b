// Package service provides business logic for the essay platform.
package service

import (
	"context"
	"errors"

	"github.com/college-essay-ai/essay-platform/internal/events"
	"github.com/college-essay-ai/essay-platform/internal/model"
	"github.com/college-essay-ai/essay-platform/internal/store"
	"github.com/college-essay-ai/essay-platform/pkg/logger"
)

// ErrThreadNotFound is returned when the named thread does not exist for the
// user.
var ErrThreadNotFound = errors.New("thread not found")

// ThreadService handles thread operations.
type ThreadService struct {
	store     *store.Store
	publisher *events.Publisher
	logger    *logger.Logger
}

// NewThreadService creates a new thread service. publisher may be nil.
func NewThreadService(st *store.Store, publisher *events.Publisher, log *logger.Logger) *ThreadService {
	return &ThreadService{
		store:     st,
		publisher: publisher,
		logger:    log,
	}
}

// Create creates a new thread and makes it the user's active thread.
func (s *ThreadService) Create(ctx context.Context, userID string, req *model.CreateThreadRequest) (model.Thread, error) {
	thread, err := s.store.CreateThread(ctx, userID, req.Title)
	if err != nil {
		return thread, err
	}

	s.publisher.Publish(ctx, events.Event{
		UserID:   userID,
		ThreadID: thread.ID,
		Type:     events.TypeThreadCreated,
	})
	return thread, nil
}

// List returns the user's threads, most recently updated first.
func (s *ThreadService) List(ctx context.Context, userID string) *model.ListThreadsResponse {
	threads := s.store.Threads(userID)

	summaries := make([]model.ThreadSummary, 0, len(threads))
	for i := range threads {
		summaries = append(summaries, threads[i].Summary())
	}
	return &model.ListThreadsResponse{
		Threads: summaries,
		Total:   len(summaries),
	}
}

// Get returns the full thread.
func (s *ThreadService) Get(ctx context.Context, userID, threadID string) (model.Thread, error) {
	thread, ok := s.store.Thread(userID, threadID)
	if !ok {
		return model.Thread{}, ErrThreadNotFound
	}
	return thread, nil
}

// Messages returns the thread's ordered message sequence.
func (s *ThreadService) Messages(ctx context.Context, userID, threadID string) (*model.ListMessagesResponse, error) {
	thread, ok := s.store.Thread(userID, threadID)
	if !ok {
		return nil, ErrThreadNotFound
	}
	return &model.ListMessagesResponse{
		Messages: thread.Messages,
		Total:    len(thread.Messages),
	}, nil
}

// Rename retitles the thread.
func (s *ThreadService) Rename(ctx context.Context, userID, threadID, title string) (model.Thread, error) {
	if _, ok := s.store.Thread(userID, threadID); !ok {
		return model.Thread{}, ErrThreadNotFound
	}
	if err := s.store.RenameThread(ctx, userID, threadID, title); err != nil {
		return model.Thread{}, err
	}

	thread, _ := s.store.Thread(userID, threadID)
	return thread, nil
}

// Switch makes the thread the user's active one. Switching to a thread that
// was deleted underneath the caller is a no-op, matching the store contract.
func (s *ThreadService) Switch(ctx context.Context, userID, threadID string) error {
	if err := s.store.SwitchThread(ctx, userID, threadID); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		UserID:   userID,
		ThreadID: threadID,
		Type:     events.TypeThreadSwitched,
	})
	return nil
}

// Delete removes the thread. Activation transfers to the most recently
// updated remaining thread.
func (s *ThreadService) Delete(ctx context.Context, userID, threadID string) error {
	if _, ok := s.store.Thread(userID, threadID); !ok {
		return ErrThreadNotFound
	}
	if err := s.store.DeleteThread(ctx, userID, threadID); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.Event{
		UserID:   userID,
		ThreadID: threadID,
		Type:     events.TypeThreadDeleted,
	})
	return nil
}

// SetPersonalDetails updates the thread-scoped personal details text.
func (s *ThreadService) SetPersonalDetails(ctx context.Context, userID, threadID, text string) error {
	if _, ok := s.store.Thread(userID, threadID); !ok {
		return ErrThreadNotFound
	}
	return s.store.SetPersonalDetails(ctx, userID, threadID, text)
}
