// Package storetest provides database fixtures for tests of packages built on the store
package storetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

var counter atomic.Int64

// NewSQLiteStore returns a store over a private, migrated in-memory SQLite database
func NewSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := store.Open(store.OpenConfig{
		Driver:     store.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1)),
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return store.NewStore(db)
}

// FaultyStore wraps a store and fails selected operations, including inside transactions.
// Operation names are the method names; ReassignOwnership is keyed per table,
// e.g. "ReassignOwnership:bookmarks".
type FaultyStore struct {
	store.Store
	Failures map[string]error
}

// NewFaultyStore wraps st
func NewFaultyStore(st store.Store, failures map[string]error) *FaultyStore {
	return &FaultyStore{Store: st, Failures: failures}
}

func (f *FaultyStore) fail(op string) error {
	if f.Failures == nil {
		return nil
	}
	return f.Failures[op]
}

func (f *FaultyStore) WithTx(ctx context.Context, fn func(tx store.Store) error) error {
	return f.Store.WithTx(ctx, func(tx store.Store) error {
		return fn(&FaultyStore{Store: tx, Failures: f.Failures})
	})
}

func (f *FaultyStore) ReassignOwnership(ctx context.Context, table store.OwnedTable, fromID string, toID string) (int64, error) {
	if err := f.fail("ReassignOwnership:" + string(table)); err != nil {
		return 0, err
	}
	return f.Store.ReassignOwnership(ctx, table, fromID, toID)
}

func (f *FaultyStore) DeleteBookmarks(ctx context.Context, userID string, artistIDs []string) (int64, error) {
	if err := f.fail("DeleteBookmarks"); err != nil {
		return 0, err
	}
	return f.Store.DeleteBookmarks(ctx, userID, artistIDs)
}

func (f *FaultyStore) SetBookmarkOrder(ctx context.Context, userID string, order map[string]int64) error {
	if err := f.fail("SetBookmarkOrder"); err != nil {
		return err
	}
	return f.Store.SetBookmarkOrder(ctx, userID, order)
}

func (f *FaultyStore) UpsertSentinel(ctx context.Context, userID string, at time.Time) error {
	if err := f.fail("UpsertSentinel"); err != nil {
		return err
	}
	return f.Store.UpsertSentinel(ctx, userID, at)
}

func (f *FaultyStore) TombstoneIdentity(ctx context.Context, id string, mergedIntoID string) error {
	if err := f.fail("TombstoneIdentity"); err != nil {
		return err
	}
	return f.Store.TombstoneIdentity(ctx, id, mergedIntoID)
}

func (f *FaultyStore) UpsertWalletOnIdentity(ctx context.Context, id string, address string) error {
	if err := f.fail("UpsertWalletOnIdentity"); err != nil {
		return err
	}
	return f.Store.UpsertWalletOnIdentity(ctx, id, address)
}

func (f *FaultyStore) CreateMergeJournal(ctx context.Context, input store.CreateMergeJournalInput) (*schema.IdentityMergeJournal, error) {
	if err := f.fail("CreateMergeJournal"); err != nil {
		return nil, err
	}
	return f.Store.CreateMergeJournal(ctx, input)
}
