package bookmark

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// Service maintains the per-user ordered list of bookmarked artists.
//
// Order is held in a comparison based order index: a head insert takes the current
// minimum minus one, so existing rows are never rewritten. Equal indexes (racing
// inserts from two sessions) fall back to newest first.
type Service interface {
	// InsertAtHead bookmarks an artist at the top of the list. It returns false when the
	// artist was already bookmarked, in which case nothing changes.
	InsertAtHead(ctx context.Context, userID, artistID string) (bool, error)
	// Remove deletes a bookmark. It returns false when there was nothing to delete.
	Remove(ctx context.Context, userID, artistID string) (bool, error)
	// ReorderAll gives each listed bookmark its zero based position as order index, atomically.
	// Every listed artist must be bookmarked by the user and appear once, otherwise nothing changes.
	// A repeated artist fails with domain.ErrDuplicateBookmark and an unbookmarked one with
	// domain.ErrUnknownBookmark, both validation errors.
	ReorderAll(ctx context.Context, userID string, orderedArtistIDs []string) error
	// List returns the bookmarks in display order
	List(ctx context.Context, userID string) ([]schema.Bookmark, error)
	// Renormalize compacts the order indexes of a user to 0..n-1 keeping the display order.
	// It returns the number of rows rewritten.
	Renormalize(ctx context.Context, userID string) (int, error)
}

type service struct {
	store store.Store
	clock adapter.Clock
}

// NewService creates a new bookmark service
func NewService(st store.Store, clock adapter.Clock) Service {
	return &service{
		store: st,
		clock: clock,
	}
}

// InsertAtHead bookmarks an artist at the top of the user's list
func (s *service) InsertAtHead(ctx context.Context, userID, artistID string) (bool, error) {
	existing, err := s.store.FindBookmark(ctx, userID, artistID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	newIndex := int64(-1)
	minIndex, err := s.store.MinOrderIndex(ctx, userID)
	if err != nil {
		return false, err
	}
	if minIndex != nil {
		newIndex = *minIndex - 1
	}

	// A concurrent insert of the same pair makes this a no-op
	inserted, err := s.store.CreateBookmark(ctx, store.CreateBookmarkInput{
		UserID:     userID,
		ArtistID:   artistID,
		OrderIndex: newIndex,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		return false, err
	}

	if inserted {
		logger.DebugCtx(ctx, "Inserted bookmark at head",
			zap.String("userID", userID),
			zap.String("artistID", artistID),
			zap.Int64("orderIndex", newIndex))
	}

	return inserted, nil
}

// Remove deletes a bookmark, absence is not an error
func (s *service) Remove(ctx context.Context, userID, artistID string) (bool, error) {
	return s.store.DeleteBookmark(ctx, userID, artistID)
}

// ReorderAll assigns each listed bookmark its position in orderedArtistIDs
func (s *service) ReorderAll(ctx context.Context, userID string, orderedArtistIDs []string) error {
	if len(orderedArtistIDs) == 0 {
		return nil
	}

	order := make(map[string]int64, len(orderedArtistIDs))
	for i, artistID := range orderedArtistIDs {
		if _, ok := order[artistID]; ok {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateBookmark, artistID)
		}
		order[artistID] = int64(i)
	}

	return s.store.WithTx(ctx, func(tx store.Store) error {
		// Validate everything before the first write so a rejected list leaves no trace
		for _, artistID := range orderedArtistIDs {
			existing, err := tx.FindBookmark(ctx, userID, artistID)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("%w: %s", domain.ErrUnknownBookmark, artistID)
			}
		}

		return tx.SetBookmarkOrder(ctx, userID, order)
	})
}

// List returns the bookmarks of a user in display order
func (s *service) List(ctx context.Context, userID string) ([]schema.Bookmark, error) {
	return s.store.ListBookmarks(ctx, userID)
}

// Renormalize compacts the order indexes of a user
func (s *service) Renormalize(ctx context.Context, userID string) (int, error) {
	var rewritten int

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		bookmarks, err := tx.ListBookmarks(ctx, userID)
		if err != nil {
			return err
		}

		order := make(map[string]int64)
		for i, b := range bookmarks {
			if b.OrderIndex != int64(i) {
				order[b.ArtistID] = int64(i)
			}
		}
		if len(order) == 0 {
			return nil
		}

		if err := tx.SetBookmarkOrder(ctx, userID, order); err != nil {
			return err
		}
		rewritten = len(order)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return rewritten, nil
}
