package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a new store instance backed by a gorm connection (PostgreSQL or SQLite)
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// normalizeTime stores every instant in UTC at the precision both backends keep
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// supportsRowLocks reports whether the dialect understands SELECT ... FOR UPDATE
func (s *gormStore) supportsRowLocks() bool {
	return s.db.Dialector.Name() == DriverPostgres
}

// WithTx runs fn inside a transaction bound to a transactional store
func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// CreateIdentity creates a new identity
func (s *gormStore) CreateIdentity(ctx context.Context, input CreateIdentityInput) (*schema.Identity, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	identity := &schema.Identity{
		ID:               id,
		ExternalAuthID:   input.ExternalAuthID,
		WalletAddress:    input.WalletAddress,
		Email:            input.Email,
		IsAdmin:          input.IsAdmin,
		IsWhiteListed:    input.IsWhiteListed,
		IsSuperAdmin:     input.IsSuperAdmin,
		IsHidden:         input.IsHidden,
		AcceptedUGCCount: input.AcceptedUGCCount,
	}

	if err := s.db.WithContext(ctx).Create(identity).Error; err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}

// FindIdentity retrieves an identity by id
func (s *gormStore) FindIdentity(ctx context.Context, id string) (*schema.Identity, error) {
	var identity schema.Identity
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}

	return &identity, nil
}

// FindIdentityForUpdate retrieves an identity by id holding a row lock where the backend supports it
func (s *gormStore) FindIdentityForUpdate(ctx context.Context, id string) (*schema.Identity, error) {
	q := s.db.WithContext(ctx)
	if s.supportsRowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var identity schema.Identity
	err := q.Where("id = ?", id).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find identity for update: %w", err)
	}

	return &identity, nil
}

// FindIdentityByWallet retrieves the identity holding a wallet address
func (s *gormStore) FindIdentityByWallet(ctx context.Context, address string) (*schema.Identity, error) {
	var identity schema.Identity
	err := s.db.WithContext(ctx).
		Where("wallet_address = ?", address).
		Order("tombstoned ASC").
		Order("updated_at DESC").
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find identity by wallet: %w", err)
	}

	return &identity, nil
}

// FindIdentityByExternalAuthID retrieves an identity by its external auth principal
func (s *gormStore) FindIdentityByExternalAuthID(ctx context.Context, externalAuthID string) (*schema.Identity, error) {
	var identity schema.Identity
	err := s.db.WithContext(ctx).Where("external_auth_id = ?", externalAuthID).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find identity by external auth id: %w", err)
	}

	return &identity, nil
}

// FindOrCreateIdentityByExternalAuthID returns the identity for an external auth principal, creating it when missing.
// The boolean result is true when this call created the identity.
func (s *gormStore) FindOrCreateIdentityByExternalAuthID(ctx context.Context, externalAuthID string) (*schema.Identity, bool, error) {
	existing, err := s.FindIdentityByExternalAuthID(ctx, externalAuthID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	identity := schema.Identity{
		ID:             uuid.NewString(),
		ExternalAuthID: &externalAuthID,
	}

	// A concurrent first login may have created the row in between, keep whichever won
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_auth_id"}},
		DoNothing: true,
	}).Create(&identity)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create identity for external auth id: %w", result.Error)
	}

	created, err := s.FindIdentityByExternalAuthID(ctx, externalAuthID)
	if err != nil {
		return nil, false, err
	}
	if created == nil {
		return nil, false, fmt.Errorf("identity for external auth id vanished after insert")
	}

	return created, result.RowsAffected > 0, nil
}

// EnsureWalletIdentity returns the live identity holding a wallet, creating a wallet-only identity when none does
func (s *gormStore) EnsureWalletIdentity(ctx context.Context, address string) (*schema.Identity, bool, error) {
	find := func() (*schema.Identity, error) {
		var identity schema.Identity
		err := s.db.WithContext(ctx).
			Where("wallet_address = ? AND tombstoned = ?", address, false).
			First(&identity).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to find live identity by wallet: %w", err)
		}
		return &identity, nil
	}

	existing, err := find()
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	identity, err := s.CreateIdentity(ctx, CreateIdentityInput{WalletAddress: &address})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, err = find()
			if err != nil {
				return nil, false, err
			}
			if existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	return identity, true, nil
}

// UpsertWalletOnIdentity sets the wallet address of an identity
func (s *gormStore) UpsertWalletOnIdentity(ctx context.Context, id string, address string) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Identity{}).
		Where("id = ?", id).
		Update("wallet_address", address)
	if result.Error != nil {
		return fmt.Errorf("failed to set wallet on identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrIdentityNotFound, id)
	}

	return nil
}

// TombstoneIdentity marks a live identity as merged into another one
func (s *gormStore) TombstoneIdentity(ctx context.Context, id string, mergedIntoID string) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Identity{}).
		Where("id = ? AND tombstoned = ?", id, false).
		Updates(map[string]interface{}{
			"tombstoned":     true,
			"merged_into_id": mergedIntoID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to tombstone identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrIdentityTombstoned, id)
	}

	return nil
}

// UpdateIdentityProfile overwrites the role flags, counters and email of an identity
func (s *gormStore) UpdateIdentityProfile(ctx context.Context, id string, input UpdateIdentityProfileInput) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Identity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email":                 input.Email,
			"is_admin":              input.IsAdmin,
			"is_white_listed":       input.IsWhiteListed,
			"is_super_admin":        input.IsSuperAdmin,
			"is_hidden":             input.IsHidden,
			"accepted_ugc_count":    input.AcceptedUGCCount,
			"legacy_link_dismissed": input.LegacyLinkDismissed,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update identity profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrIdentityNotFound, id)
	}

	return nil
}

// DismissLegacyLink records that the identity dismissed the legacy wallet link prompt
func (s *gormStore) DismissLegacyLink(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Identity{}).
		Where("id = ?", id).
		Update("legacy_link_dismissed", true)
	if result.Error != nil {
		return fmt.Errorf("failed to dismiss legacy link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrIdentityNotFound, id)
	}

	return nil
}

// ReassignOwnership re-points every row of table owned by fromID to toID
func (s *gormStore) ReassignOwnership(ctx context.Context, table OwnedTable, fromID string, toID string) (int64, error) {
	column, ok := table.ownerColumn()
	if !ok {
		return 0, fmt.Errorf("unsupported owned table: %s", table)
	}

	q := s.db.WithContext(ctx).Table(string(table)).Where(column+" = ?", fromID)
	if table == OwnedTableUGCSubmissions {
		q = q.Where("site_name <> ?", schema.LegacySeenSentinelSiteName)
	}

	result := q.Update(column, toID)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reassign %s: %w", table, result.Error)
	}

	return result.RowsAffected, nil
}

// CreateMergeJournal records a completed merge
func (s *gormStore) CreateMergeJournal(ctx context.Context, input CreateMergeJournalInput) (*schema.IdentityMergeJournal, error) {
	metaJSON, err := json.Marshal(input.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merge journal meta: %w", err)
	}

	entry := &schema.IdentityMergeJournal{
		ID:            uuid.NewString(),
		SourceID:      input.SourceID,
		DestinationID: input.DestinationID,
		WalletAddress: input.WalletAddress,
		Meta:          metaJSON,
		MergedAt:      normalizeTime(input.MergedAt),
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create merge journal: %w", err)
	}

	return entry, nil
}

// ListMergeJournal lists merge journal rows where the identity was the destination
func (s *gormStore) ListMergeJournal(ctx context.Context, destinationID string) ([]schema.IdentityMergeJournal, error) {
	var entries []schema.IdentityMergeJournal
	err := s.db.WithContext(ctx).
		Where("destination_id = ?", destinationID).
		Order("merged_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list merge journal: %w", err)
	}

	return entries, nil
}

// CreateBookmark inserts a bookmark unless the (user, artist) pair already exists
func (s *gormStore) CreateBookmark(ctx context.Context, input CreateBookmarkInput) (bool, error) {
	bookmark := schema.Bookmark{
		UserID:     input.UserID,
		ArtistID:   input.ArtistID,
		OrderIndex: input.OrderIndex,
		CreatedAt:  normalizeTime(input.CreatedAt),
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "artist_id"}},
		DoNothing: true,
	}).Create(&bookmark)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create bookmark: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// FindBookmark retrieves a bookmark
func (s *gormStore) FindBookmark(ctx context.Context, userID string, artistID string) (*schema.Bookmark, error) {
	var bookmark schema.Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND artist_id = ?", userID, artistID).
		Take(&bookmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}

	return &bookmark, nil
}

// MinOrderIndex returns the smallest order index of a user's bookmarks
func (s *gormStore) MinOrderIndex(ctx context.Context, userID string) (*int64, error) {
	var row struct {
		MinIndex *int64
	}
	err := s.db.WithContext(ctx).
		Model(&schema.Bookmark{}).
		Select("MIN(order_index) AS min_index").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get min order index: %w", err)
	}

	return row.MinIndex, nil
}

// SetBookmarkOrder sets the order index of each listed bookmark of a user.
// Every listed artist must already be bookmarked by the user, otherwise nothing is written.
func (s *gormStore) SetBookmarkOrder(ctx context.Context, userID string, order map[string]int64) error {
	if len(order) == 0 {
		return nil
	}

	artistIDs := make([]string, 0, len(order))
	for artistID := range order {
		artistIDs = append(artistIDs, artistID)
	}
	sort.Strings(artistIDs)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, artistID := range artistIDs {
			result := tx.Model(&schema.Bookmark{}).
				Where("user_id = ? AND artist_id = ?", userID, artistID).
				Update("order_index", order[artistID])
			if result.Error != nil {
				return fmt.Errorf("failed to set bookmark order: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", domain.ErrUnknownBookmark, artistID)
			}
		}
		return nil
	})
}

// DeleteBookmark deletes a bookmark
func (s *gormStore) DeleteBookmark(ctx context.Context, userID string, artistID string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND artist_id = ?", userID, artistID).
		Delete(&schema.Bookmark{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete bookmark: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// DeleteBookmarks deletes the listed bookmarks of a user
func (s *gormStore) DeleteBookmarks(ctx context.Context, userID string, artistIDs []string) (int64, error) {
	if len(artistIDs) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND artist_id IN ?", userID, artistIDs).
		Delete(&schema.Bookmark{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete bookmarks: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// ListBookmarks lists a user's bookmarks in display order
func (s *gormStore) ListBookmarks(ctx context.Context, userID string) ([]schema.Bookmark, error) {
	var bookmarks []schema.Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_index ASC").
		Order("created_at DESC").
		Order("artist_id ASC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	return bookmarks, nil
}

// ListBookmarkOwners lists the distinct ids of identities owning at least one bookmark
func (s *gormStore) ListBookmarkOwners(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).
		Model(&schema.Bookmark{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark owners: %w", err)
	}

	return userIDs, nil
}

// FindSentinel retrieves the seen watermark of a user
func (s *gormStore) FindSentinel(ctx context.Context, userID string) (*schema.SeenWatermark, error) {
	var watermark schema.SeenWatermark
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&watermark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find seen watermark: %w", err)
	}

	return &watermark, nil
}

// UpsertSentinel writes the seen watermark of a user
func (s *gormStore) UpsertSentinel(ctx context.Context, userID string, at time.Time) error {
	watermark := schema.SeenWatermark{
		UserID:     userID,
		LastSeenAt: normalizeTime(at),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seen_at", "updated_at"}),
	}).Create(&watermark).Error
	if err != nil {
		return fmt.Errorf("failed to upsert seen watermark: %w", err)
	}

	return nil
}

// DeleteSentinel deletes the seen watermark of a user
func (s *gormStore) DeleteSentinel(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&schema.SeenWatermark{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete seen watermark: %w", err)
	}

	return nil
}

// ListLegacySentinels lists ugc_submissions rows that carry a legacy seen watermark
func (s *gormStore) ListLegacySentinels(ctx context.Context) ([]schema.UGCSubmission, error) {
	var rows []schema.UGCSubmission
	err := s.db.WithContext(ctx).
		Where("site_name = ?", schema.LegacySeenSentinelSiteName).
		Order("user_id ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy seen sentinels: %w", err)
	}

	return rows, nil
}

// FindLatestLegacySentinel returns the latest legacy seen watermark of a user
func (s *gormStore) FindLatestLegacySentinel(ctx context.Context, userID string) (*time.Time, error) {
	var row schema.UGCSubmission
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND site_name = ?", userID, schema.LegacySeenSentinelSiteName).
		Order("created_at DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find legacy seen sentinel: %w", err)
	}

	latest := row.CreatedAt
	return &latest, nil
}

// DeleteLegacySentinels deletes a user's legacy seen watermark rows
func (s *gormStore) DeleteLegacySentinels(ctx context.Context, userID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND site_name = ?", userID, schema.LegacySeenSentinelSiteName).
		Delete(&schema.UGCSubmission{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete legacy seen sentinels: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CreateUGCSubmission creates a UGC submission
func (s *gormStore) CreateUGCSubmission(ctx context.Context, input CreateUGCSubmissionInput) (*schema.UGCSubmission, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	var dateProcessed *time.Time
	if input.DateProcessed != nil {
		t := normalizeTime(*input.DateProcessed)
		dateProcessed = &t
	}

	submission := &schema.UGCSubmission{
		ID:            id,
		UserID:        input.UserID,
		ArtistID:      input.ArtistID,
		SiteName:      input.SiteName,
		URL:           input.URL,
		Accepted:      input.Accepted,
		DateProcessed: dateProcessed,
		CreatedAt:     normalizeTime(createdAt),
	}

	if err := s.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to create ugc submission: %w", err)
	}

	return submission, nil
}

// DeleteUGCSubmission deletes a UGC submission by id
func (s *gormStore) DeleteUGCSubmission(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&schema.UGCSubmission{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete ugc submission: %w", err)
	}

	return nil
}

// CountAccepted counts a user's accepted submissions, optionally only those processed strictly after since
func (s *gormStore) CountAccepted(ctx context.Context, userID string, since *time.Time) (int64, error) {
	q := s.db.WithContext(ctx).
		Model(&schema.UGCSubmission{}).
		Where("user_id = ? AND accepted = ?", userID, true).
		Where("site_name <> ?", schema.LegacySeenSentinelSiteName)
	if since != nil {
		q = q.Where("date_processed > ?", normalizeTime(*since))
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count accepted submissions: %w", err)
	}

	return count, nil
}

// ListUGCSubmissionsByUser lists a user's submissions, legacy sentinel rows excluded
func (s *gormStore) ListUGCSubmissionsByUser(ctx context.Context, userID string) ([]schema.UGCSubmission, error) {
	var rows []schema.UGCSubmission
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("site_name <> ?", schema.LegacySeenSentinelSiteName).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ugc submissions: %w", err)
	}

	return rows, nil
}

// CreateArtist creates an artist
func (s *gormStore) CreateArtist(ctx context.Context, input CreateArtistInput) (*schema.Artist, error) {
	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}

	artist := &schema.Artist{
		ID:      id,
		Name:    input.Name,
		AddedBy: input.AddedBy,
	}

	if err := s.db.WithContext(ctx).Create(artist).Error; err != nil {
		return nil, fmt.Errorf("failed to create artist: %w", err)
	}

	return artist, nil
}

// GetArtist retrieves an artist by id
func (s *gormStore) GetArtist(ctx context.Context, id string) (*schema.Artist, error) {
	var artist schema.Artist
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&artist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	return &artist, nil
}
