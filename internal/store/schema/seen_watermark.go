package schema

import "time"

// SeenWatermark represents the seen_watermarks table - at most one row per identity holding
// the instant the user last viewed approved community content
type SeenWatermark struct {
	// UserID references the identity the watermark belongs to
	UserID string `gorm:"column:user_id;primaryKey;type:text"`
	// LastSeenAt is the watermark; approved content processed after it is unseen
	LastSeenAt time.Time `gorm:"column:last_seen_at;not null"`
	// UpdatedAt is when the watermark row was last written
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for the SeenWatermark model
func (SeenWatermark) TableName() string {
	return "seen_watermarks"
}
