package schema

import "time"

// LegacySeenSentinelSiteName marks ugc_submissions rows that older deployments used to persist
// a user's "last seen approved" watermark in created_at. Such rows are never counted as content.
const LegacySeenSentinelSiteName = "user_last_seen_approved"

// UGCSubmission represents the ugc_submissions table - community submitted content about an artist
type UGCSubmission struct {
	// ID is the submission identifier (uuid)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// UserID references the submitting identity
	UserID string `gorm:"column:user_id;not null;type:text;index:idx_ugc_submissions_user_id"`
	// ArtistID references the artist the submission is about
	ArtistID *string `gorm:"column:artist_id;type:text"`
	// SiteName is the source site of the submitted link
	SiteName string `gorm:"column:site_name;not null;type:text"`
	// URL is the submitted link
	URL string `gorm:"column:url;not null;type:text"`
	// Accepted is true once moderation approved the submission
	Accepted bool `gorm:"column:accepted;not null;default:false;index:idx_ugc_submissions_accepted_processed,priority:1"`
	// DateProcessed is when moderation processed the submission
	DateProcessed *time.Time `gorm:"column:date_processed;index:idx_ugc_submissions_accepted_processed,priority:2"`
	// CreatedAt is when the submission was made
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the UGCSubmission model
func (UGCSubmission) TableName() string {
	return "ugc_submissions"
}

// IsLegacySeenSentinel reports whether the row is a legacy watermark row rather than content
func (s *UGCSubmission) IsLegacySeenSentinel() bool {
	return s.SiteName == LegacySeenSentinelSiteName
}
