package bookmark

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-ugc/internal/store"
)

// MoveResult reports what MoveAll did with the source's bookmarks
type MoveResult struct {
	// Moved rows now belong to the destination with their order index unchanged
	Moved int64
	// Discarded rows duplicated an artist the destination had already bookmarked
	Discarded int64
}

// MoveAll hands every bookmark of sourceID over to destinationID on the caller's transaction.
// Where both bookmarked the same artist the destination's row, and its order index, wins.
func MoveAll(ctx context.Context, tx store.Store, sourceID, destinationID string) (*MoveResult, error) {
	sourceBookmarks, err := tx.ListBookmarks(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if len(sourceBookmarks) == 0 {
		return &MoveResult{}, nil
	}

	destinationBookmarks, err := tx.ListBookmarks(ctx, destinationID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]struct{}, len(destinationBookmarks))
	for _, b := range destinationBookmarks {
		owned[b.ArtistID] = struct{}{}
	}

	var duplicates []string
	for _, b := range sourceBookmarks {
		if _, ok := owned[b.ArtistID]; ok {
			duplicates = append(duplicates, b.ArtistID)
		}
	}

	discarded, err := tx.DeleteBookmarks(ctx, sourceID, duplicates)
	if err != nil {
		return nil, fmt.Errorf("failed to discard duplicate bookmarks: %w", err)
	}

	moved, err := tx.ReassignOwnership(ctx, store.OwnedTableBookmarks, sourceID, destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to move bookmarks: %w", err)
	}

	return &MoveResult{Moved: moved, Discarded: discarded}, nil
}
