package seen

import (
	"context"
	"time"

	"github.com/feral-file/ff-ugc/internal/store"
)

// Kept names the side whose watermark survived a collapse
type Kept string

const (
	KeptNone        Kept = "none"
	KeptSource      Kept = "source"
	KeptDestination Kept = "destination"
)

// Collapse folds the source's watermark into the destination's on the caller's transaction.
// The source's legacy sentinel rows count as watermarks too and are deleted with it.
// Afterwards at most one watermark remains, on the destination, holding the latest of them.
func Collapse(ctx context.Context, tx store.Store, sourceID, destinationID string) (Kept, error) {
	source, err := latestWatermark(ctx, tx, sourceID)
	if err != nil {
		return KeptNone, err
	}
	destination, err := tx.FindSentinel(ctx, destinationID)
	if err != nil {
		return KeptNone, err
	}

	switch {
	case source == nil && destination == nil:
		return KeptNone, nil
	case source == nil:
		return KeptDestination, nil
	}

	kept := KeptDestination
	if destination == nil || source.After(destination.LastSeenAt) {
		if err := tx.UpsertSentinel(ctx, destinationID, *source); err != nil {
			return KeptNone, err
		}
		kept = KeptSource
	}

	if err := tx.DeleteSentinel(ctx, sourceID); err != nil {
		return KeptNone, err
	}
	if _, err := tx.DeleteLegacySentinels(ctx, sourceID); err != nil {
		return KeptNone, err
	}

	return kept, nil
}

// latestWatermark returns the later of a user's watermark row and legacy sentinel rows
func latestWatermark(ctx context.Context, tx store.Store, userID string) (*time.Time, error) {
	watermark, err := tx.FindSentinel(ctx, userID)
	if err != nil {
		return nil, err
	}
	legacy, err := tx.FindLatestLegacySentinel(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case watermark == nil:
		return legacy, nil
	case legacy != nil && legacy.After(watermark.LastSeenAt):
		return legacy, nil
	default:
		latest := watermark.LastSeenAt
		return &latest, nil
	}
}
