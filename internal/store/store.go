package store

import (
	"context"
	"time"

	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// OwnedTable names a table whose rows belong to an identity through an owner column
type OwnedTable string

const (
	// OwnedTableUGCSubmissions re-points ugc_submissions.user_id. Legacy seen sentinel rows are left alone.
	OwnedTableUGCSubmissions OwnedTable = "ugc_submissions"
	// OwnedTableArtists re-points artists.added_by
	OwnedTableArtists OwnedTable = "artists"
	// OwnedTableBookmarks re-points bookmarks.user_id. Callers must discard conflicting rows first.
	OwnedTableBookmarks OwnedTable = "bookmarks"
)

// ownerColumn returns the column holding the owning identity id
func (t OwnedTable) ownerColumn() (string, bool) {
	switch t {
	case OwnedTableUGCSubmissions, OwnedTableBookmarks:
		return "user_id", true
	case OwnedTableArtists:
		return "added_by", true
	default:
		return "", false
	}
}

// CreateIdentityInput represents the input for creating an identity
type CreateIdentityInput struct {
	// ID is optional, a uuid is generated when empty
	ID               string
	ExternalAuthID   *string
	WalletAddress    *string
	Email            *string
	IsAdmin          bool
	IsWhiteListed    bool
	IsSuperAdmin     bool
	IsHidden         bool
	AcceptedUGCCount int64
}

// UpdateIdentityProfileInput carries the merge-affected columns of an identity. All fields are written.
type UpdateIdentityProfileInput struct {
	Email               *string
	IsAdmin             bool
	IsWhiteListed       bool
	IsSuperAdmin        bool
	IsHidden            bool
	AcceptedUGCCount    int64
	LegacyLinkDismissed bool
}

// CreateBookmarkInput represents the input for creating a bookmark
type CreateBookmarkInput struct {
	UserID     string
	ArtistID   string
	OrderIndex int64
	CreatedAt  time.Time
}

// CreateUGCSubmissionInput represents the input for creating a UGC submission
type CreateUGCSubmissionInput struct {
	// ID is optional, a uuid is generated when empty
	ID            string
	UserID        string
	ArtistID      *string
	SiteName      string
	URL           string
	Accepted      bool
	DateProcessed *time.Time
	CreatedAt     time.Time
}

// CreateArtistInput represents the input for creating an artist
type CreateArtistInput struct {
	// ID is optional, a uuid is generated when empty
	ID      string
	Name    string
	AddedBy *string
}

// CreateMergeJournalInput represents the input for recording a completed merge
type CreateMergeJournalInput struct {
	SourceID      string
	DestinationID string
	WalletAddress string
	Meta          schema.MergeJournalMeta
	MergedAt      time.Time
}

// Store defines the interface for database operations
type Store interface {
	// WithTx runs fn inside a database transaction. The Store passed to fn is bound to the
	// transaction; fn's error (or a panic) rolls everything back. Nested calls use savepoints.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// =============================================================================
	// Identities
	// =============================================================================

	// CreateIdentity creates a new identity
	CreateIdentity(ctx context.Context, input CreateIdentityInput) (*schema.Identity, error)
	// FindIdentity retrieves an identity by id, nil when missing
	FindIdentity(ctx context.Context, id string) (*schema.Identity, error)
	// FindIdentityForUpdate retrieves an identity by id and locks its row until the transaction ends
	FindIdentityForUpdate(ctx context.Context, id string) (*schema.Identity, error)
	// FindIdentityByWallet retrieves the identity holding a wallet address. Live identities win over tombstones.
	FindIdentityByWallet(ctx context.Context, address string) (*schema.Identity, error)
	// FindIdentityByExternalAuthID retrieves an identity by its external auth principal, nil when missing
	FindIdentityByExternalAuthID(ctx context.Context, externalAuthID string) (*schema.Identity, error)
	// FindOrCreateIdentityByExternalAuthID returns the identity for an external auth principal, creating it on first login
	FindOrCreateIdentityByExternalAuthID(ctx context.Context, externalAuthID string) (*schema.Identity, bool, error)
	// EnsureWalletIdentity returns the live identity holding a wallet, creating a wallet-only identity when none does
	EnsureWalletIdentity(ctx context.Context, address string) (*schema.Identity, bool, error)
	// UpsertWalletOnIdentity sets the wallet address of an identity
	UpsertWalletOnIdentity(ctx context.Context, id string, address string) error
	// TombstoneIdentity marks an identity as merged into another one
	TombstoneIdentity(ctx context.Context, id string, mergedIntoID string) error
	// UpdateIdentityProfile overwrites the role flags, counters and email of an identity
	UpdateIdentityProfile(ctx context.Context, id string, input UpdateIdentityProfileInput) error
	// DismissLegacyLink records that the identity dismissed the legacy wallet link prompt
	DismissLegacyLink(ctx context.Context, id string) error
	// ReassignOwnership re-points every row of table owned by fromID to toID and returns the number of rows moved
	ReassignOwnership(ctx context.Context, table OwnedTable, fromID string, toID string) (int64, error)
	// CreateMergeJournal records a completed merge
	CreateMergeJournal(ctx context.Context, input CreateMergeJournalInput) (*schema.IdentityMergeJournal, error)
	// ListMergeJournal lists merge journal rows where the identity was the destination, oldest first
	ListMergeJournal(ctx context.Context, destinationID string) ([]schema.IdentityMergeJournal, error)

	// =============================================================================
	// Bookmarks
	// =============================================================================

	// CreateBookmark inserts a bookmark, returning false when the (user, artist) pair already exists
	CreateBookmark(ctx context.Context, input CreateBookmarkInput) (bool, error)
	// FindBookmark retrieves a bookmark, nil when missing
	FindBookmark(ctx context.Context, userID string, artistID string) (*schema.Bookmark, error)
	// MinOrderIndex returns the smallest order index of a user's bookmarks, nil when the user has none
	MinOrderIndex(ctx context.Context, userID string) (*int64, error)
	// SetBookmarkOrder sets the order index of each listed bookmark of a user
	SetBookmarkOrder(ctx context.Context, userID string, order map[string]int64) error
	// DeleteBookmark deletes a bookmark, returning false when it did not exist
	DeleteBookmark(ctx context.Context, userID string, artistID string) (bool, error)
	// DeleteBookmarks deletes the listed bookmarks of a user and returns the number deleted
	DeleteBookmarks(ctx context.Context, userID string, artistIDs []string) (int64, error)
	// ListBookmarks lists a user's bookmarks by order index ascending, newest first on ties
	ListBookmarks(ctx context.Context, userID string) ([]schema.Bookmark, error)
	// ListBookmarkOwners lists the distinct ids of identities owning at least one bookmark
	ListBookmarkOwners(ctx context.Context) ([]string, error)

	// =============================================================================
	// Seen watermarks
	// =============================================================================

	// FindSentinel retrieves the seen watermark of a user, nil when none was recorded
	FindSentinel(ctx context.Context, userID string) (*schema.SeenWatermark, error)
	// UpsertSentinel writes the seen watermark of a user
	UpsertSentinel(ctx context.Context, userID string, at time.Time) error
	// DeleteSentinel deletes the seen watermark of a user
	DeleteSentinel(ctx context.Context, userID string) error
	// ListLegacySentinels lists ugc_submissions rows that carry a legacy seen watermark
	ListLegacySentinels(ctx context.Context) ([]schema.UGCSubmission, error)
	// FindLatestLegacySentinel returns the latest legacy seen watermark of a user, nil when the user has none
	FindLatestLegacySentinel(ctx context.Context, userID string) (*time.Time, error)
	// DeleteLegacySentinels deletes a user's legacy seen watermark rows and returns the number deleted
	DeleteLegacySentinels(ctx context.Context, userID string) (int64, error)

	// =============================================================================
	// UGC submissions and artists
	// =============================================================================

	// CreateUGCSubmission creates a UGC submission
	CreateUGCSubmission(ctx context.Context, input CreateUGCSubmissionInput) (*schema.UGCSubmission, error)
	// DeleteUGCSubmission deletes a UGC submission by id
	DeleteUGCSubmission(ctx context.Context, id string) error
	// CountAccepted counts a user's accepted submissions. With since set, only rows processed strictly after it count.
	CountAccepted(ctx context.Context, userID string, since *time.Time) (int64, error)
	// ListUGCSubmissionsByUser lists a user's submissions (legacy sentinel rows excluded), oldest first
	ListUGCSubmissionsByUser(ctx context.Context, userID string) ([]schema.UGCSubmission, error)
	// CreateArtist creates an artist
	CreateArtist(ctx context.Context, input CreateArtistInput) (*schema.Artist, error)
	// GetArtist retrieves an artist by id, nil when missing
	GetArtist(ctx context.Context, id string) (*schema.Artist, error)
}
