package messaging

import (
	"context"

	"github.com/feral-file/ff-ugc/internal/domain"
)

// EventHandler is called for every received ugc event
type EventHandler func(ctx context.Context, event *domain.Event) error

// Subscriber defines the interface for receiving ugc events published by any API instance
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// Subscribe delivers events to handler until ctx is cancelled
	Subscribe(ctx context.Context, handler EventHandler) error
	// Close closes the connection
	Close()
}
