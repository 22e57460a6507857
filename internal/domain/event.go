package domain

import "time"

// EventType represents the type of a user facing change notification
type EventType string

const (
	EventTypeBookmarksUpdated EventType = "bookmarks.updated"
	EventTypeContentSeen      EventType = "content.seen"
	EventTypeIdentityMerged   EventType = "identity.merged"
)

// Event is the notification published after a committed change, replacing
// the browser-wide events the web client used to broadcast between tabs
type Event struct {
	ID         string    `json:"id"`                  // ULID, also used as the message de-duplication id
	Type       EventType `json:"type"`                // bookmarks.updated, content.seen, identity.merged
	UserID     string    `json:"user_id"`             // identity the change belongs to (the survivor for merges)
	SourceID   string    `json:"source_id,omitempty"` // merged-away identity, identity.merged only
	OccurredAt time.Time `json:"occurred_at"`         // commit time of the change
}
