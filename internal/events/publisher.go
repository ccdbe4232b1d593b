package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/college-essay-ai/essay-platform/pkg/logger"
)

const (
	// StreamName is the name of the thread events stream.
	StreamName = "ESSAY_THREADS"

	// SubjectPrefix is the prefix for all thread event subjects.
	SubjectPrefix = "essay"
)

// Type identifies a thread event.
type Type string

const (
	TypeThreadCreated   Type = "thread_created"
	TypeThreadSwitched  Type = "thread_switched"
	TypeThreadDeleted   Type = "thread_deleted"
	TypeMessageAppended Type = "message_appended"
	TypeCallFailed      Type = "call_failed"
)

// Event is one thread lifecycle event.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ThreadID  string    `json:"thread_id"`
	Type      Type      `json:"type"`
	Model     string    `json:"model,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher publishes thread events. A nil Publisher is a no-op, so callers
// never branch on whether eventing is enabled.
type Publisher struct {
	client *Client
	logger *logger.Logger
}

// NewPublisher creates a publisher and ensures the stream exists.
func NewPublisher(ctx context.Context, client *Client) (*Publisher, error) {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      90 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Description: "Thread lifecycle and message events",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &Publisher{client: client, logger: client.logger}, nil
}

// Subject returns the subject for an event.
func Subject(userID, threadID string, eventType Type) string {
	return fmt.Sprintf("%s.%s.%s.%s", SubjectPrefix, userID, threadID, eventType)
}

// Publish emits the event. Failures are logged, not propagated: eventing is
// best-effort and must never fail a store mutation.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	if p == nil {
		return
	}

	if ev.ID == "" {
		ev.ID = uuid.Must(uuid.NewV7()).String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("failed to marshal thread event", zap.Error(err))
		return
	}

	if _, err := p.client.JetStream().Publish(ctx, Subject(ev.UserID, ev.ThreadID, ev.Type), data); err != nil {
		p.logger.Warn("failed to publish thread event", zap.Error(err), zap.String("type", string(ev.Type)))
	}
}
