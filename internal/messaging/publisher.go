package messaging

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/feral-file/ff-ugc/internal/domain"
)

// Publisher defines the interface for publishing ugc events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// Publish publishes an event. Delivery is best effort, callers never roll back on failure.
	Publish(ctx context.Context, event *domain.Event) error
	// Close closes the connection
	Close()
}

// NewEvent builds an event with a fresh ULID id
func NewEvent(eventType domain.EventType, userID string, occurredAt time.Time) *domain.Event {
	return &domain.Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: occurredAt.UTC(),
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *domain.Event) error {
	return nil
}

func (noopPublisher) Close() {}
