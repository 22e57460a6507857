package identity

import (
	"context"
	"fmt"

	"github.com/feral-file/ff-ugc/internal/bookmark"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/seen"
	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// ReassignReport counts what a reassignment moved from the source to the destination
type ReassignReport struct {
	UGCSubmissionsMoved int64
	ArtistsMoved        int64
	BookmarksMoved      int64
	BookmarksDiscarded  int64
	WatermarkKept       seen.Kept
}

// JournalMeta converts the report into the merge journal payload
func (r *ReassignReport) JournalMeta() schema.MergeJournalMeta {
	return schema.MergeJournalMeta{
		UGCSubmissionsMoved: r.UGCSubmissionsMoved,
		ArtistsMoved:        r.ArtistsMoved,
		BookmarksMoved:      r.BookmarksMoved,
		BookmarksDiscarded:  r.BookmarksDiscarded,
		WatermarkKept:       string(r.WatermarkKept),
	}
}

// Reassign moves every record owned by sourceID to destinationID and folds the source's
// profile into the destination's. It runs on the caller's transaction and does not tombstone
// the source; any error must abort that transaction.
func Reassign(ctx context.Context, tx store.Store, sourceID, destinationID string) (*ReassignReport, error) {
	if sourceID == destinationID {
		return nil, fmt.Errorf("%w: cannot reassign an identity to itself", domain.ErrValidation)
	}

	source, err := loadLive(ctx, tx, sourceID)
	if err != nil {
		return nil, err
	}
	destination, err := loadLive(ctx, tx, destinationID)
	if err != nil {
		return nil, err
	}

	report := &ReassignReport{}

	report.UGCSubmissionsMoved, err = tx.ReassignOwnership(ctx, store.OwnedTableUGCSubmissions, sourceID, destinationID)
	if err != nil {
		return nil, err
	}

	report.ArtistsMoved, err = tx.ReassignOwnership(ctx, store.OwnedTableArtists, sourceID, destinationID)
	if err != nil {
		return nil, err
	}

	report.WatermarkKept, err = seen.Collapse(ctx, tx, sourceID, destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to collapse seen watermarks: %w", err)
	}

	moved, err := bookmark.MoveAll(ctx, tx, sourceID, destinationID)
	if err != nil {
		return nil, err
	}
	report.BookmarksMoved = moved.Moved
	report.BookmarksDiscarded = moved.Discarded

	if err := tx.UpdateIdentityProfile(ctx, destinationID, mergeProfile(source, destination)); err != nil {
		return nil, err
	}

	return report, nil
}

// mergeProfile computes the destination's profile after absorbing the source
func mergeProfile(source, destination *schema.Identity) store.UpdateIdentityProfileInput {
	email := destination.Email
	if email == nil || *email == "" {
		email = source.Email
	}

	return store.UpdateIdentityProfileInput{
		Email:               email,
		IsAdmin:             source.IsAdmin || destination.IsAdmin,
		IsWhiteListed:       source.IsWhiteListed || destination.IsWhiteListed,
		IsSuperAdmin:        source.IsSuperAdmin || destination.IsSuperAdmin,
		IsHidden:            source.IsHidden || destination.IsHidden,
		AcceptedUGCCount:    source.AcceptedUGCCount + destination.AcceptedUGCCount,
		LegacyLinkDismissed: true,
	}
}

func loadLive(ctx context.Context, tx store.Store, id string) (*schema.Identity, error) {
	identity, err := tx.FindIdentityForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdentityNotFound, id)
	}
	if identity.Tombstoned {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdentityTombstoned, id)
	}
	return identity, nil
}
