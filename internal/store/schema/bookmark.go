package schema

import "time"

// Bookmark represents the bookmarks table - a user's saved artists in a user-defined order
type Bookmark struct {
	// UserID references the owning identity
	UserID string `gorm:"column:user_id;primaryKey;type:text;index:idx_bookmarks_user_order,priority:1"`
	// ArtistID references the bookmarked artist
	ArtistID string `gorm:"column:artist_id;primaryKey;type:text"`
	// OrderIndex is the per-user display order key. Only relative order matters, values need not be contiguous.
	OrderIndex int64 `gorm:"column:order_index;not null;default:0;index:idx_bookmarks_user_order,priority:2"`
	// CreatedAt breaks ties between equal order indexes (newest first)
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the Bookmark model
func (Bookmark) TableName() string {
	return "bookmarks"
}
