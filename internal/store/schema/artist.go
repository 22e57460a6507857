package schema

import "time"

// Artist represents the artists table
type Artist struct {
	ID   string `gorm:"column:id;primaryKey;type:text"`
	Name string `gorm:"column:name;not null;type:text"`
	// AddedBy references the identity that added the artist to the catalog
	AddedBy   *string   `gorm:"column:added_by;type:text;index:idx_artists_added_by"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

// TableName specifies the table name for the Artist model
func (Artist) TableName() string {
	return "artists"
}
