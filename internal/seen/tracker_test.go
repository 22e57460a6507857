package seen_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/metrics"
	"github.com/feral-file/ff-ugc/internal/mocks"
	"github.com/feral-file/ff-ugc/internal/seen"
	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
	"github.com/feral-file/ff-ugc/internal/store/storetest"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

// fixedClock returns a mock clock reading *now on every call
func fixedClock(ctrl *gomock.Controller, now *time.Time) *mocks.MockClock {
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()
	return clock
}

func addApproved(t *testing.T, st store.Store, userID string, processedAt time.Time) {
	t.Helper()
	_, err := st.CreateUGCSubmission(context.Background(), store.CreateUGCSubmissionInput{
		UserID:        userID,
		SiteName:      "instagram",
		URL:           "https://example.com/" + processedAt.Format(time.RFC3339Nano),
		Accepted:      true,
		DateProcessed: &processedAt,
	})
	require.NoError(t, err)
}

func addLegacySentinel(t *testing.T, st store.Store, userID string, at time.Time) {
	t.Helper()
	_, err := st.CreateUGCSubmission(context.Background(), store.CreateUGCSubmissionInput{
		UserID:        userID,
		SiteName:      schema.LegacySeenSentinelSiteName,
		Accepted:      true,
		DateProcessed: &at,
		CreatedAt:     at,
	})
	require.NoError(t, err)
}

func TestMarkSeenAndUnseenCount(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := storetest.NewSQLiteStore(t)
	now := base
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{}, nil)

	addApproved(t, st, "u1", base.Add(-2*time.Hour))
	addApproved(t, st, "u1", base.Add(-time.Hour))
	_, err := st.CreateUGCSubmission(ctx, store.CreateUGCSubmissionInput{
		UserID:   "u1",
		SiteName: "instagram",
		URL:      "https://example.com/pending",
	})
	require.NoError(t, err)
	addLegacySentinel(t, st, "u1", base.Add(-3*time.Hour))

	t.Run("never seen counts every approved submission", func(t *testing.T) {
		lastSeen, err := tracker.GetLastSeen(ctx, "u1")
		require.NoError(t, err)
		assert.Nil(t, lastSeen)

		count, err := tracker.UnseenApprovedCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("mark seen moves the watermark to now", func(t *testing.T) {
		watermark, err := tracker.MarkSeen(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, watermark.Equal(base))

		lastSeen, err := tracker.GetLastSeen(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, lastSeen)
		assert.True(t, lastSeen.Equal(base))

		count, err := tracker.UnseenApprovedCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("only content processed strictly after the watermark is unseen", func(t *testing.T) {
		addApproved(t, st, "u1", base)
		addApproved(t, st, "u1", base.Add(time.Minute))

		count, err := tracker.UnseenApprovedCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("count since an explicit instant", func(t *testing.T) {
		since := base.Add(-90 * time.Minute)
		count, err := tracker.CountApprovedSince(ctx, "u1", &since)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		count, err = tracker.CountApprovedSince(ctx, "u1", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(4), count)
	})

	t.Run("marking again moves the watermark forward", func(t *testing.T) {
		now = base.Add(2 * time.Minute)
		_, err := tracker.MarkSeen(ctx, "u1")
		require.NoError(t, err)

		count, err := tracker.UnseenApprovedCount(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		count, err := tracker.UnseenApprovedCount(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}

func TestUnseenCountCache(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := storetest.NewSQLiteStore(t)
	now := base
	m := metrics.New(nil)
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{CacheSize: 10, CacheTTL: time.Hour}, m)

	addApproved(t, st, "u1", base.Add(-time.Hour))

	count, err := tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// served from cache until invalidated
	addApproved(t, st, "u1", base.Add(-30*time.Minute))
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	tracker.Invalidate("u1")
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = tracker.MarkSeen(ctx, "u1")
	require.NoError(t, err)
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

// pausingStore holds the first CountAccepted call until release is closed
type pausingStore struct {
	store.Store
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (p *pausingStore) CountAccepted(ctx context.Context, userID string, since *time.Time) (int64, error) {
	p.once.Do(func() {
		close(p.started)
		<-p.release
	})
	return p.Store.CountAccepted(ctx, userID, since)
}

func TestUnseenCountReadRacingMarkSeenIsNotCached(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := &pausingStore{
		Store:   storetest.NewSQLiteStore(t),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	now := base
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{CacheSize: 10, CacheTTL: time.Hour}, nil)

	addApproved(t, st, "u1", base.Add(-time.Hour))

	type result struct {
		count int64
		err   error
	}
	done := make(chan result, 1)
	go func() {
		count, err := tracker.UnseenApprovedCount(ctx, "u1")
		done <- result{count: count, err: err}
	}()

	// the read has loaded the old watermark and is counting against it
	<-st.started
	_, err := tracker.MarkSeen(ctx, "u1")
	require.NoError(t, err)
	close(st.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Equal(t, int64(1), stale.count)

	count, err := tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCollapse(t *testing.T) {
	ctx := context.Background()
	t1 := base
	t2 := base.Add(time.Hour)

	tests := []struct {
		name          string
		source        *time.Time
		destination   *time.Time
		expectedKept  seen.Kept
		expectedFinal *time.Time
	}{
		{name: "neither has a watermark", expectedKept: seen.KeptNone},
		{name: "only destination", destination: &t1, expectedKept: seen.KeptDestination, expectedFinal: &t1},
		{name: "only source", source: &t1, expectedKept: seen.KeptSource, expectedFinal: &t1},
		{name: "source is later", source: &t2, destination: &t1, expectedKept: seen.KeptSource, expectedFinal: &t2},
		{name: "destination is later", source: &t1, destination: &t2, expectedKept: seen.KeptDestination, expectedFinal: &t2},
		{name: "equal watermarks", source: &t1, destination: &t1, expectedKept: seen.KeptDestination, expectedFinal: &t1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storetest.NewSQLiteStore(t)
			if tt.source != nil {
				require.NoError(t, st.UpsertSentinel(ctx, "src", *tt.source))
			}
			if tt.destination != nil {
				require.NoError(t, st.UpsertSentinel(ctx, "dst", *tt.destination))
			}

			var kept seen.Kept
			err := st.WithTx(ctx, func(tx store.Store) error {
				var err error
				kept, err = seen.Collapse(ctx, tx, "src", "dst")
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKept, kept)

			source, err := st.FindSentinel(ctx, "src")
			require.NoError(t, err)
			assert.Nil(t, source)

			destination, err := st.FindSentinel(ctx, "dst")
			require.NoError(t, err)
			if tt.expectedFinal == nil {
				assert.Nil(t, destination)
				return
			}
			require.NotNil(t, destination)
			assert.True(t, destination.LastSeenAt.Equal(*tt.expectedFinal))
		})
	}
}

func TestCollapseFoldsLegacySentinels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		sourceLegacy  []time.Time
		source        *time.Time
		destination   *time.Time
		expectedKept  seen.Kept
		expectedFinal time.Time
	}{
		{
			name:          "only a legacy row on the source",
			sourceLegacy:  []time.Time{base.Add(-2 * time.Hour), base.Add(-time.Hour)},
			expectedKept:  seen.KeptSource,
			expectedFinal: base.Add(-time.Hour),
		},
		{
			name:          "legacy row is later than the source watermark",
			sourceLegacy:  []time.Time{base.Add(time.Hour)},
			source:        &base,
			destination:   &base,
			expectedKept:  seen.KeptSource,
			expectedFinal: base.Add(time.Hour),
		},
		{
			name:          "destination is later than the legacy row",
			sourceLegacy:  []time.Time{base.Add(-time.Hour)},
			destination:   &base,
			expectedKept:  seen.KeptDestination,
			expectedFinal: base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := storetest.NewSQLiteStore(t)
			for _, at := range tt.sourceLegacy {
				addLegacySentinel(t, st, "src", at)
			}
			addLegacySentinel(t, st, "dst", base.Add(-24*time.Hour))
			if tt.source != nil {
				require.NoError(t, st.UpsertSentinel(ctx, "src", *tt.source))
			}
			if tt.destination != nil {
				require.NoError(t, st.UpsertSentinel(ctx, "dst", *tt.destination))
			}

			var kept seen.Kept
			err := st.WithTx(ctx, func(tx store.Store) error {
				var err error
				kept, err = seen.Collapse(ctx, tx, "src", "dst")
				return err
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKept, kept)

			destination, err := st.FindSentinel(ctx, "dst")
			require.NoError(t, err)
			require.NotNil(t, destination)
			assert.True(t, destination.LastSeenAt.Equal(tt.expectedFinal))

			// the source keeps nothing, the destination's own legacy row is left for the import
			legacy, err := st.ListLegacySentinels(ctx)
			require.NoError(t, err)
			require.Len(t, legacy, 1)
			assert.Equal(t, "dst", legacy[0].UserID)
		})
	}
}

func TestImportLegacySentinels(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := storetest.NewSQLiteStore(t)
	now := base
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{CacheSize: 10, CacheTTL: time.Hour}, nil)

	// u1 has two legacy rows and no watermark
	addLegacySentinel(t, st, "u1", base.Add(-2*time.Hour))
	addLegacySentinel(t, st, "u1", base.Add(-time.Hour))
	// u2 already has a later watermark
	require.NoError(t, st.UpsertSentinel(ctx, "u2", base))
	addLegacySentinel(t, st, "u2", base.Add(-time.Hour))
	addApproved(t, st, "u1", base.Add(-90*time.Minute))

	count, err := tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	report, err := seen.ImportLegacySentinels(ctx, st, tracker)
	require.NoError(t, err)
	assert.Equal(t, &seen.ImportReport{Users: 2, Rows: 3, Advanced: 1}, report)

	lastSeen, err := tracker.GetLastSeen(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, lastSeen)
	assert.True(t, lastSeen.Equal(base.Add(-time.Hour)))

	lastSeen, err = tracker.GetLastSeen(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, lastSeen)
	assert.True(t, lastSeen.Equal(base))

	// the advanced user's cached count was dropped
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	legacy, err := st.ListLegacySentinels(ctx)
	require.NoError(t, err)
	assert.Empty(t, legacy)

	// re-running is a no-op
	report, err = seen.ImportLegacySentinels(ctx, st, tracker)
	require.NoError(t, err)
	assert.Equal(t, &seen.ImportReport{}, report)
}

func TestImportLegacySentinelsFollowsMerges(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := storetest.NewSQLiteStore(t)
	now := base
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{CacheSize: 10, CacheTTL: time.Hour}, nil)

	wallet := "0x00000000000000000000000000000000000000bb"
	oldest, err := st.CreateIdentity(ctx, store.CreateIdentityInput{WalletAddress: &wallet})
	require.NoError(t, err)
	middle, err := st.CreateIdentity(ctx, store.CreateIdentityInput{ExternalAuthID: strPtr("auth|middle")})
	require.NoError(t, err)
	survivor, err := st.CreateIdentity(ctx, store.CreateIdentityInput{ExternalAuthID: strPtr("auth|survivor")})
	require.NoError(t, err)
	require.NoError(t, st.TombstoneIdentity(ctx, oldest.ID, middle.ID))
	require.NoError(t, st.TombstoneIdentity(ctx, middle.ID, survivor.ID))

	addLegacySentinel(t, st, oldest.ID, base.Add(-time.Hour))
	addLegacySentinel(t, st, middle.ID, base.Add(-2*time.Hour))
	addApproved(t, st, survivor.ID, base.Add(-90*time.Minute))

	count, err := tracker.UnseenApprovedCount(ctx, survivor.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	report, err := seen.ImportLegacySentinels(ctx, st, tracker)
	require.NoError(t, err)
	assert.Equal(t, &seen.ImportReport{Users: 1, Rows: 2, Advanced: 1}, report)

	lastSeen, err := tracker.GetLastSeen(ctx, survivor.ID)
	require.NoError(t, err)
	require.NotNil(t, lastSeen)
	assert.True(t, lastSeen.Equal(base.Add(-time.Hour)))

	for _, id := range []string{oldest.ID, middle.ID} {
		watermark, err := st.FindSentinel(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, watermark)
	}

	count, err = tracker.UnseenApprovedCount(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestInvalidateOnEvent(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	st := storetest.NewSQLiteStore(t)
	now := base
	tracker := seen.NewTracker(st, fixedClock(ctrl, &now), seen.Config{CacheSize: 10, CacheTTL: time.Hour}, nil)
	handler := seen.InvalidateOnEvent(tracker)

	addApproved(t, st, "u1", base.Add(-time.Hour))
	count, err := tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// another instance marked u1 as seen
	require.NoError(t, st.UpsertSentinel(ctx, "u1", base))

	require.NoError(t, handler(ctx, &domain.Event{Type: domain.EventTypeBookmarksUpdated, UserID: "u1"}))
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, handler(ctx, &domain.Event{Type: domain.EventTypeContentSeen, UserID: "u1"}))
	count, err = tracker.UnseenApprovedCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
