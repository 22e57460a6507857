package dto

import (
	"time"

	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// LinkWalletResponse represents the outcome of a wallet link
type LinkWalletResponse struct {
	Merged      bool   `json:"merged"`
	Status      string `json:"status"`
	SurvivingID string `json:"survivingId,omitempty"`
}

// BookmarkResponse represents a bookmarked artist
type BookmarkResponse struct {
	ArtistID   string    `json:"artistId"`
	OrderIndex int64     `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookmarkListResponse represents a user's bookmarks in display order
type BookmarkListResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
}

// AddBookmarkResponse reports whether a new bookmark was created
type AddBookmarkResponse struct {
	Created bool `json:"created"`
}

// RemoveBookmarkResponse reports whether a bookmark was deleted
type RemoveBookmarkResponse struct {
	Removed bool `json:"removed"`
}

// SeenResponse represents the user's seen watermark after marking content seen
type SeenResponse struct {
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// UnseenCountResponse represents the number of approved submissions the user has not seen
type UnseenCountResponse struct {
	Count      int64      `json:"count"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

// MapBookmarksToDTO maps bookmark rows to their response form, keeping the order
func MapBookmarksToDTO(bookmarks []schema.Bookmark) *BookmarkListResponse {
	items := make([]BookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		items = append(items, BookmarkResponse{
			ArtistID:   b.ArtistID,
			OrderIndex: b.OrderIndex,
			CreatedAt:  b.CreatedAt.UTC(),
		})
	}
	return &BookmarkListResponse{Bookmarks: items}
}
