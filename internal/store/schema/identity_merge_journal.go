package schema

import (
	"time"

	"gorm.io/datatypes"
)

// IdentityMergeJournal represents the identity_merge_journal table - an audit row for every
// completed identity merge
type IdentityMergeJournal struct {
	// ID is the journal entry identifier (uuid)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// SourceID is the tombstoned identity
	SourceID string `gorm:"column:source_id;not null;type:text;index:idx_identity_merge_journal_source_id"`
	// DestinationID is the surviving identity
	DestinationID string `gorm:"column:destination_id;not null;type:text;index:idx_identity_merge_journal_destination_id"`
	// WalletAddress is the wallet whose claim triggered the merge
	WalletAddress string `gorm:"column:wallet_address;not null;type:text"`
	// Meta holds the reassignment counts, see MergeJournalMeta
	Meta datatypes.JSON `gorm:"column:meta;not null"`
	// MergedAt is when the merge committed
	MergedAt time.Time `gorm:"column:merged_at;not null"`
}

// TableName specifies the table name for the IdentityMergeJournal model
func (IdentityMergeJournal) TableName() string {
	return "identity_merge_journal"
}

// MergeJournalMeta is the JSON payload stored in IdentityMergeJournal.Meta
type MergeJournalMeta struct {
	UGCSubmissionsMoved int64  `json:"ugc_submissions_moved"`
	ArtistsMoved        int64  `json:"artists_moved"`
	BookmarksMoved      int64  `json:"bookmarks_moved"`
	BookmarksDiscarded  int64  `json:"bookmarks_discarded"`
	WatermarkKept       string `json:"watermark_kept"`
}
