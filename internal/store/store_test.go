package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// createTestIdentity creates an identity with an external auth principal
func createTestIdentity(t *testing.T, store Store, externalAuthID string) *schema.Identity {
	identity, err := store.CreateIdentity(context.Background(), CreateIdentityInput{
		ExternalAuthID: strPtr(externalAuthID),
	})
	require.NoError(t, err)
	return identity
}

// createTestLegacyIdentity creates a wallet-only identity
func createTestLegacyIdentity(t *testing.T, store Store, wallet string) *schema.Identity {
	identity, err := store.CreateIdentity(context.Background(), CreateIdentityInput{
		WalletAddress: strPtr(wallet),
	})
	require.NoError(t, err)
	return identity
}

func bookmarkArtistIDs(bookmarks []schema.Bookmark) []string {
	ids := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		ids = append(ids, b.ArtistID)
	}
	return ids
}

// =============================================================================
// Identities
// =============================================================================

func testIdentities(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("create and find by id, wallet and external auth id", func(t *testing.T) {
		created, err := store.CreateIdentity(ctx, CreateIdentityInput{
			ExternalAuthID: strPtr("did:privy:create"),
			WalletAddress:  strPtr("0x1111111111111111111111111111111111111111"),
			Email:          strPtr("a@example.com"),
			IsAdmin:        true,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)

		found, err := store.FindIdentity(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "did:privy:create", *found.ExternalAuthID)
		assert.Equal(t, "a@example.com", *found.Email)
		assert.True(t, found.IsAdmin)
		assert.False(t, found.Tombstoned)
		assert.False(t, found.IsLegacy())

		byWallet, err := store.FindIdentityByWallet(ctx, "0x1111111111111111111111111111111111111111")
		require.NoError(t, err)
		require.NotNil(t, byWallet)
		assert.Equal(t, created.ID, byWallet.ID)

		byAuth, err := store.FindIdentityByExternalAuthID(ctx, "did:privy:create")
		require.NoError(t, err)
		require.NotNil(t, byAuth)
		assert.Equal(t, created.ID, byAuth.ID)

		locked, err := store.FindIdentityForUpdate(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		assert.Equal(t, created.ID, locked.ID)
	})

	t.Run("missing identities return nil without error", func(t *testing.T) {
		found, err := store.FindIdentity(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, found)

		byWallet, err := store.FindIdentityByWallet(ctx, "0x9999999999999999999999999999999999999999")
		require.NoError(t, err)
		assert.Nil(t, byWallet)

		byAuth, err := store.FindIdentityByExternalAuthID(ctx, "did:privy:missing")
		require.NoError(t, err)
		assert.Nil(t, byAuth)
	})

	t.Run("find or create by external auth id is idempotent", func(t *testing.T) {
		first, created, err := store.FindOrCreateIdentityByExternalAuthID(ctx, "did:privy:login")
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, first)
		assert.False(t, first.IsLegacy())

		second, created, err := store.FindOrCreateIdentityByExternalAuthID(ctx, "did:privy:login")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("ensure wallet identity creates a legacy identity once", func(t *testing.T) {
		wallet := "0x2222222222222222222222222222222222222222"
		first, created, err := store.EnsureWalletIdentity(ctx, wallet)
		require.NoError(t, err)
		assert.True(t, created)
		assert.True(t, first.IsLegacy())

		second, created, err := store.EnsureWalletIdentity(ctx, wallet)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("upsert wallet on identity", func(t *testing.T) {
		identity := createTestIdentity(t, store, "did:privy:wallet")
		err := store.UpsertWalletOnIdentity(ctx, identity.ID, "0x3333333333333333333333333333333333333333")
		require.NoError(t, err)

		found, err := store.FindIdentityByWallet(ctx, "0x3333333333333333333333333333333333333333")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, identity.ID, found.ID)

		err = store.UpsertWalletOnIdentity(ctx, "missing", "0x3333333333333333333333333333333333333334")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrIdentityNotFound))
	})

	t.Run("live wallet addresses are unique", func(t *testing.T) {
		wallet := "0x4444444444444444444444444444444444444444"
		createTestLegacyIdentity(t, store, wallet)
		other := createTestIdentity(t, store, "did:privy:dup")

		err := store.WithTx(ctx, func(tx Store) error {
			return tx.UpsertWalletOnIdentity(ctx, other.ID, wallet)
		})
		require.Error(t, err)

		found, err := store.FindIdentity(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, found.WalletAddress)
	})

	t.Run("tombstoned identity releases its wallet", func(t *testing.T) {
		wallet := "0x5555555555555555555555555555555555555555"
		legacy := createTestLegacyIdentity(t, store, wallet)
		current := createTestIdentity(t, store, "did:privy:tomb")

		require.NoError(t, store.TombstoneIdentity(ctx, legacy.ID, current.ID))
		require.NoError(t, store.UpsertWalletOnIdentity(ctx, current.ID, wallet))

		owner, err := store.FindIdentityByWallet(ctx, wallet)
		require.NoError(t, err)
		require.NotNil(t, owner)
		assert.Equal(t, current.ID, owner.ID, "live identity wins over tombstone")

		tombstone, err := store.FindIdentity(ctx, legacy.ID)
		require.NoError(t, err)
		assert.True(t, tombstone.Tombstoned)
		require.NotNil(t, tombstone.MergedIntoID)
		assert.Equal(t, current.ID, *tombstone.MergedIntoID)

		err = store.TombstoneIdentity(ctx, legacy.ID, current.ID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("update identity profile and dismiss legacy link", func(t *testing.T) {
		identity := createTestIdentity(t, store, "did:privy:profile")
		err := store.UpdateIdentityProfile(ctx, identity.ID, UpdateIdentityProfileInput{
			Email:            strPtr("p@example.com"),
			IsWhiteListed:    true,
			IsHidden:         true,
			AcceptedUGCCount: 7,
		})
		require.NoError(t, err)
		require.NoError(t, store.DismissLegacyLink(ctx, identity.ID))

		found, err := store.FindIdentity(ctx, identity.ID)
		require.NoError(t, err)
		assert.Equal(t, "p@example.com", *found.Email)
		assert.True(t, found.IsWhiteListed)
		assert.True(t, found.IsHidden)
		assert.False(t, found.IsAdmin)
		assert.Equal(t, int64(7), found.AcceptedUGCCount)
		assert.True(t, found.LegacyLinkDismissed)

		err = store.DismissLegacyLink(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

// =============================================================================
// Ownership reassignment and merge journal
// =============================================================================

func testReassignOwnership(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now().UTC()

	source := createTestLegacyIdentity(t, store, "0x6666666666666666666666666666666666666666")
	destination := createTestIdentity(t, store, "did:privy:dest")

	_, err := store.CreateUGCSubmission(ctx, CreateUGCSubmissionInput{UserID: source.ID, SiteName: "instagram", Accepted: true, DateProcessed: timePtr(now)})
	require.NoError(t, err)
	_, err = store.CreateUGCSubmission(ctx, CreateUGCSubmissionInput{UserID: source.ID, SiteName: "twitter"})
	require.NoError(t, err)
	_, err = store.CreateUGCSubmission(ctx, CreateUGCSubmissionInput{UserID: source.ID, SiteName: schema.LegacySeenSentinelSiteName, Accepted: true, CreatedAt: now})
	require.NoError(t, err)
	_, err = store.CreateArtist(ctx, CreateArtistInput{Name: "Artist", AddedBy: strPtr(source.ID)})
	require.NoError(t, err)

	t.Run("ugc submissions skip legacy sentinels", func(t *testing.T) {
		moved, err := store.ReassignOwnership(ctx, OwnedTableUGCSubmissions, source.ID, destination.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved)

		rows, err := store.ListUGCSubmissionsByUser(ctx, destination.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		sentinels, err := store.ListLegacySentinels(ctx)
		require.NoError(t, err)
		require.Len(t, sentinels, 1)
		assert.Equal(t, source.ID, sentinels[0].UserID)
	})

	t.Run("artists added_by", func(t *testing.T) {
		moved, err := store.ReassignOwnership(ctx, OwnedTableArtists, source.ID, destination.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), moved)
	})

	t.Run("bookmarks", func(t *testing.T) {
		_, err := store.CreateBookmark(ctx, CreateBookmarkInput{UserID: source.ID, ArtistID: "artist-1", OrderIndex: -3, CreatedAt: now})
		require.NoError(t, err)

		moved, err := store.ReassignOwnership(ctx, OwnedTableBookmarks, source.ID, destination.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), moved)

		bookmark, err := store.FindBookmark(ctx, destination.ID, "artist-1")
		require.NoError(t, err)
		require.NotNil(t, bookmark)
		assert.Equal(t, int64(-3), bookmark.OrderIndex)
	})

	t.Run("unsupported table", func(t *testing.T) {
		_, err := store.ReassignOwnership(ctx, OwnedTable("identities"), source.ID, destination.ID)
		require.Error(t, err)
	})

	t.Run("merge journal", func(t *testing.T) {
		entry, err := store.CreateMergeJournal(ctx, CreateMergeJournalInput{
			SourceID:      source.ID,
			DestinationID: destination.ID,
			WalletAddress: "0x6666666666666666666666666666666666666666",
			Meta:          schema.MergeJournalMeta{UGCSubmissionsMoved: 2, ArtistsMoved: 1, BookmarksMoved: 1},
			MergedAt:      now,
		})
		require.NoError(t, err)
		require.NotEmpty(t, entry.ID)

		entries, err := store.ListMergeJournal(ctx, destination.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, source.ID, entries[0].SourceID)

		var meta schema.MergeJournalMeta
		require.NoError(t, json.Unmarshal(entries[0].Meta, &meta))
		assert.Equal(t, int64(2), meta.UGCSubmissionsMoved)
		assert.Equal(t, int64(1), meta.ArtistsMoved)
	})
}

// =============================================================================
// Bookmarks
// =============================================================================

func testBookmarks(t *testing.T, store Store) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	user := "user-bookmarks"

	t.Run("create is idempotent per pair", func(t *testing.T) {
		inserted, err := store.CreateBookmark(ctx, CreateBookmarkInput{UserID: user, ArtistID: "a", OrderIndex: -1, CreatedAt: base})
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = store.CreateBookmark(ctx, CreateBookmarkInput{UserID: user, ArtistID: "a", OrderIndex: -5, CreatedAt: base})
		require.NoError(t, err)
		assert.False(t, inserted)

		bookmark, err := store.FindBookmark(ctx, user, "a")
		require.NoError(t, err)
		require.NotNil(t, bookmark)
		assert.Equal(t, int64(-1), bookmark.OrderIndex)
	})

	t.Run("min order index", func(t *testing.T) {
		empty, err := store.MinOrderIndex(ctx, "user-without-bookmarks")
		require.NoError(t, err)
		assert.Nil(t, empty)

		_, err = store.CreateBookmark(ctx, CreateBookmarkInput{UserID: user, ArtistID: "b", OrderIndex: -2, CreatedAt: base.Add(time.Second)})
		require.NoError(t, err)

		minIndex, err := store.MinOrderIndex(ctx, user)
		require.NoError(t, err)
		require.NotNil(t, minIndex)
		assert.Equal(t, int64(-2), *minIndex)
	})

	t.Run("list orders by index then newest first", func(t *testing.T) {
		_, err := store.CreateBookmark(ctx, CreateBookmarkInput{UserID: user, ArtistID: "c", OrderIndex: -2, CreatedAt: base.Add(2 * time.Second)})
		require.NoError(t, err)

		bookmarks, err := store.ListBookmarks(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, bookmarkArtistIDs(bookmarks))
	})

	t.Run("set order", func(t *testing.T) {
		err := store.SetBookmarkOrder(ctx, user, map[string]int64{"a": 0, "b": 1, "c": 2})
		require.NoError(t, err)

		bookmarks, err := store.ListBookmarks(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, bookmarkArtistIDs(bookmarks))
	})

	t.Run("set order with an unknown artist writes nothing", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			return tx.SetBookmarkOrder(ctx, user, map[string]int64{"c": 0, "zzz-unknown": 1})
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownBookmark))

		bookmarks, err := store.ListBookmarks(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, bookmarkArtistIDs(bookmarks))
	})

	t.Run("owners", func(t *testing.T) {
		_, err := store.CreateBookmark(ctx, CreateBookmarkInput{UserID: "user-other", ArtistID: "a", CreatedAt: base})
		require.NoError(t, err)

		owners, err := store.ListBookmarkOwners(ctx)
		require.NoError(t, err)
		assert.Contains(t, owners, user)
		assert.Contains(t, owners, "user-other")
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := store.DeleteBookmark(ctx, user, "a")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.DeleteBookmark(ctx, user, "a")
		require.NoError(t, err)
		assert.False(t, deleted)

		count, err := store.DeleteBookmarks(ctx, user, []string{"b", "c", "missing"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = store.DeleteBookmarks(ctx, user, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		bookmarks, err := store.ListBookmarks(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, bookmarks)
	})
}

// =============================================================================
// Seen watermarks and accepted counts
// =============================================================================

func testSeenWatermarks(t *testing.T, store Store) {
	ctx := context.Background()
	user := "user-seen"
	t1 := time.Date(2025, 4, 1, 10, 0, 0, 123456000, time.UTC)
	t2 := t1.Add(time.Hour)

	found, err := store.FindSentinel(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, store.UpsertSentinel(ctx, user, t1))
	found, err = store.FindSentinel(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.LastSeenAt.Equal(t1), "got %s", found.LastSeenAt)

	require.NoError(t, store.UpsertSentinel(ctx, user, t2))
	found, err = store.FindSentinel(ctx, user)
	require.NoError(t, err)
	assert.True(t, found.LastSeenAt.Equal(t2), "got %s", found.LastSeenAt)

	require.NoError(t, store.DeleteSentinel(ctx, user))
	found, err = store.FindSentinel(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func testCountAccepted(t *testing.T, store Store) {
	ctx := context.Background()
	user := "user-count"
	watermark := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	inputs := []CreateUGCSubmissionInput{
		{UserID: user, SiteName: "a", Accepted: true, DateProcessed: timePtr(watermark.Add(-time.Hour))},
		{UserID: user, SiteName: "b", Accepted: true, DateProcessed: timePtr(watermark)},
		{UserID: user, SiteName: "c", Accepted: true, DateProcessed: timePtr(watermark.Add(time.Millisecond))},
		{UserID: user, SiteName: "d", Accepted: false, DateProcessed: timePtr(watermark.Add(time.Hour))},
		{UserID: user, SiteName: schema.LegacySeenSentinelSiteName, Accepted: true, DateProcessed: timePtr(watermark.Add(time.Hour))},
		{UserID: "someone-else", SiteName: "e", Accepted: true, DateProcessed: timePtr(watermark.Add(time.Hour))},
	}
	for _, input := range inputs {
		_, err := store.CreateUGCSubmission(ctx, input)
		require.NoError(t, err)
	}

	total, err := store.CountAccepted(ctx, user, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	since, err := store.CountAccepted(ctx, user, &watermark)
	require.NoError(t, err)
	assert.Equal(t, int64(1), since, "only rows processed strictly after the watermark count")
}

func testLegacySentinels(t *testing.T, store Store) {
	ctx := context.Background()
	user := "user-legacy"
	t1 := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(2 * time.Hour)

	latest, err := store.FindLatestLegacySentinel(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, latest)

	inputs := []CreateUGCSubmissionInput{
		{UserID: user, SiteName: schema.LegacySeenSentinelSiteName, Accepted: true, CreatedAt: t2},
		{UserID: user, SiteName: schema.LegacySeenSentinelSiteName, Accepted: true, CreatedAt: t1},
		{UserID: user, SiteName: "instagram", Accepted: true, DateProcessed: timePtr(t2.Add(time.Hour))},
		{UserID: "someone-else", SiteName: schema.LegacySeenSentinelSiteName, Accepted: true, CreatedAt: t2.Add(time.Hour)},
	}
	for _, input := range inputs {
		_, err := store.CreateUGCSubmission(ctx, input)
		require.NoError(t, err)
	}

	latest, err = store.FindLatestLegacySentinel(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Equal(t2), "got %s", latest)

	deleted, err := store.DeleteLegacySentinels(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	latest, err = store.FindLatestLegacySentinel(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, latest)

	// real submissions and other users' rows are untouched
	rows, err := store.ListUGCSubmissionsByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	sentinels, err := store.ListLegacySentinels(ctx)
	require.NoError(t, err)
	require.Len(t, sentinels, 1)
	assert.Equal(t, "someone-else", sentinels[0].UserID)
}

func testUGCSubmissionsAndArtists(t *testing.T, store Store) {
	ctx := context.Background()

	submission, err := store.CreateUGCSubmission(ctx, CreateUGCSubmissionInput{UserID: "user-ugc", ArtistID: strPtr("artist-x"), SiteName: "web", URL: "https://example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
	assert.False(t, submission.CreatedAt.IsZero())

	rows, err := store.ListUGCSubmissionsByUser(ctx, "user-ugc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "https://example.com", rows[0].URL)

	require.NoError(t, store.DeleteUGCSubmission(ctx, submission.ID))
	rows, err = store.ListUGCSubmissionsByUser(ctx, "user-ugc")
	require.NoError(t, err)
	assert.Empty(t, rows)

	artist, err := store.CreateArtist(ctx, CreateArtistInput{ID: "artist-x", Name: "X"})
	require.NoError(t, err)
	found, err := store.GetArtist(ctx, artist.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "X", found.Name)
	assert.Nil(t, found.AddedBy)

	missing, err := store.GetArtist(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// Transactions
// =============================================================================

func testWithTx(t *testing.T, store Store) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	t.Run("error rolls back", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			if _, err := tx.CreateBookmark(ctx, CreateBookmarkInput{UserID: "user-tx", ArtistID: "a", CreatedAt: time.Now()}); err != nil {
				return err
			}
			if err := tx.UpsertSentinel(ctx, "user-tx", time.Now()); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		bookmarks, err := store.ListBookmarks(ctx, "user-tx")
		require.NoError(t, err)
		assert.Empty(t, bookmarks)

		watermark, err := store.FindSentinel(ctx, "user-tx")
		require.NoError(t, err)
		assert.Nil(t, watermark)
	})

	t.Run("nil commits", func(t *testing.T) {
		err := store.WithTx(ctx, func(tx Store) error {
			_, err := tx.CreateBookmark(ctx, CreateBookmarkInput{UserID: "user-tx", ArtistID: "b", CreatedAt: time.Now()})
			return err
		})
		require.NoError(t, err)

		bookmarks, err := store.ListBookmarks(ctx, "user-tx")
		require.NoError(t, err)
		assert.Len(t, bookmarks, 1)
	})
}

// RunStoreTests runs all store tests against a given store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Identities", testIdentities},
		{"ReassignOwnership", testReassignOwnership},
		{"Bookmarks", testBookmarks},
		{"SeenWatermarks", testSeenWatermarks},
		{"CountAccepted", testCountAccepted},
		{"LegacySentinels", testLegacySentinels},
		{"UGCSubmissionsAndArtists", testUGCSubmissionsAndArtists},
		{"WithTx", testWithTx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
