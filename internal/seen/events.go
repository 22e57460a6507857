package seen

import (
	"context"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/messaging"
)

// InvalidateOnEvent returns an event handler that drops the unseen counts affected by changes
// committed on any API instance
func InvalidateOnEvent(tracker Tracker) messaging.EventHandler {
	return func(_ context.Context, event *domain.Event) error {
		switch event.Type {
		case domain.EventTypeContentSeen:
			tracker.Invalidate(event.UserID)
		case domain.EventTypeIdentityMerged:
			tracker.Invalidate(event.UserID, event.SourceID)
		}
		return nil
	}
}
