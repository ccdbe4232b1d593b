// Package model defines data structures for the essay platform.
package model

import (
	"time"
)

// Thread represents one essay-drafting session: an ordered sequence of
// messages plus the personal details used to enrich future prompts.
type Thread struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	IsActive        bool      `json:"is_active"`
	PersonalDetails string    `json:"personal_details,omitempty"`
	Messages        []Message `json:"messages"`
}

// CreateThreadRequest is the request to create a new thread.
type CreateThreadRequest struct {
	Title string `json:"title,omitempty"`
}

// UpdateThreadRequest is the request to rename a thread.
type UpdateThreadRequest struct {
	Title string `json:"title"`
}

// PersonalDetailsRequest updates the thread-scoped personal details text.
type PersonalDetailsRequest struct {
	PersonalDetails string `json:"personal_details"`
}

// ThreadSummary is the list projection of a thread, without messages.
type ThreadSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsActive     bool      `json:"is_active"`
	MessageCount int       `json:"message_count"`
}

// Summary returns the list projection of t.
func (t *Thread) Summary() ThreadSummary {
	return ThreadSummary{
		ID:           t.ID,
		Title:        t.Title,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		IsActive:     t.IsActive,
		MessageCount: len(t.Messages),
	}
}

// ListThreadsResponse is the response for listing threads.
type ListThreadsResponse struct {
	Threads []ThreadSummary `json:"threads"`
	Total   int             `json:"total"`
}

// ListMessagesResponse is the response for listing a thread's messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}
