package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// LinkStatus is the outcome of a wallet link request
type LinkStatus string

const (
	// LinkStatusAttached means the wallet had no owner and now belongs to the current identity
	LinkStatusAttached LinkStatus = "attached"
	// LinkStatusUnchanged means the current identity already held the wallet
	LinkStatusUnchanged LinkStatus = "unchanged"
	// LinkStatusMerged means a wallet-only legacy identity was merged into the current one
	LinkStatusMerged LinkStatus = "merged"
	// LinkStatusConflict means the wallet belongs to another identity with its own login
	LinkStatusConflict LinkStatus = "conflict"
	// LinkStatusInvalid means the address is malformed or the current identity cannot link
	LinkStatusInvalid LinkStatus = "invalid"
)

// LinkResult describes what LinkWallet did
type LinkResult struct {
	Status        LinkStatus
	Merged        bool
	WalletAddress string
	// SurvivingID is the identity that holds the wallet afterwards, empty on conflict or invalid
	SurvivingID string
	// SourceID is the tombstoned legacy identity, set only on merge
	SourceID string
	// Report is set only on merge
	Report *ReassignReport
}

// Coordinator decides what claiming a wallet means for the current identity and carries it out
type Coordinator interface {
	// LinkWallet claims walletAddress for the current identity, merging a wallet-only legacy
	// identity into it when one holds the address. Every effect happens in one transaction.
	// Malformed input and conflicts are reported as statuses; errors are internal failures.
	LinkWallet(ctx context.Context, currentIdentityID string, walletAddress string) (*LinkResult, error)
	// DismissLegacyLink records that the identity does not want to be offered a legacy link again
	DismissLegacyLink(ctx context.Context, identityID string) error
}

type coordinator struct {
	store store.Store
	clock adapter.Clock
}

// NewCoordinator creates a new identity merge coordinator
func NewCoordinator(st store.Store, clock adapter.Clock) Coordinator {
	return &coordinator{
		store: st,
		clock: clock,
	}
}

// LinkWallet claims a wallet for the current identity
func (c *coordinator) LinkWallet(ctx context.Context, currentIdentityID string, walletAddress string) (*LinkResult, error) {
	address, err := domain.ParseWalletAddress(walletAddress)
	if err != nil {
		return &LinkResult{Status: LinkStatusInvalid}, nil
	}

	var result *LinkResult
	err = c.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		result, err = c.link(ctx, tx, currentIdentityID, address)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Merged {
		logger.InfoCtx(ctx, "Merged legacy identity",
			zap.String("sourceID", result.SourceID),
			zap.String("destinationID", result.SurvivingID),
			zap.String("walletAddress", result.WalletAddress),
			zap.Int64("ugcSubmissionsMoved", result.Report.UGCSubmissionsMoved),
			zap.Int64("bookmarksMoved", result.Report.BookmarksMoved),
			zap.Int64("bookmarksDiscarded", result.Report.BookmarksDiscarded))
	}

	return result, nil
}

func (c *coordinator) link(ctx context.Context, tx store.Store, currentIdentityID string, address domain.WalletAddress) (*LinkResult, error) {
	current, err := tx.FindIdentityForUpdate(ctx, currentIdentityID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Tombstoned {
		return &LinkResult{Status: LinkStatusInvalid, WalletAddress: address.String()}, nil
	}

	owner, err := tx.FindIdentityByWallet(ctx, address.String())
	if err != nil {
		return nil, err
	}

	switch {
	case owner == nil, owner.Tombstoned && owner.IsLegacy():
		// a tombstoned legacy holder was merged away already and no longer owns the wallet
		if err := tx.UpsertWalletOnIdentity(ctx, current.ID, address.String()); err != nil {
			return nil, err
		}
		return &LinkResult{
			Status:        LinkStatusAttached,
			WalletAddress: address.String(),
			SurvivingID:   current.ID,
		}, nil

	case owner.ID == current.ID:
		return &LinkResult{
			Status:        LinkStatusUnchanged,
			WalletAddress: address.String(),
			SurvivingID:   current.ID,
		}, nil

	case !owner.IsLegacy():
		return &LinkResult{Status: LinkStatusConflict, WalletAddress: address.String()}, nil
	}

	return c.merge(ctx, tx, owner, current, address)
}

// merge folds the legacy source into the destination and hands it the wallet
func (c *coordinator) merge(ctx context.Context, tx store.Store, source, destination *schema.Identity, address domain.WalletAddress) (*LinkResult, error) {
	// re-read under lock; another request may have merged the source in the meantime
	locked, err := tx.FindIdentityForUpdate(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil || locked.Tombstoned || !locked.IsLegacy() {
		return nil, fmt.Errorf("%w: wallet owner %s changed", domain.ErrConcurrentUpdate, source.ID)
	}

	report, err := Reassign(ctx, tx, source.ID, destination.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign records: %w", err)
	}

	// the source must leave the live set before the wallet can move
	if err := tx.TombstoneIdentity(ctx, source.ID, destination.ID); err != nil {
		if errors.Is(err, domain.ErrIdentityTombstoned) {
			return nil, fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
		}
		return nil, err
	}

	if err := tx.UpsertWalletOnIdentity(ctx, destination.ID, address.String()); err != nil {
		return nil, err
	}

	_, err = tx.CreateMergeJournal(ctx, store.CreateMergeJournalInput{
		SourceID:      source.ID,
		DestinationID: destination.ID,
		WalletAddress: address.String(),
		Meta:          report.JournalMeta(),
		MergedAt:      c.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &LinkResult{
		Status:        LinkStatusMerged,
		Merged:        true,
		WalletAddress: address.String(),
		SurvivingID:   destination.ID,
		SourceID:      source.ID,
		Report:        report,
	}, nil
}

// DismissLegacyLink records the dismissal on a live identity
func (c *coordinator) DismissLegacyLink(ctx context.Context, identityID string) error {
	identity, err := c.store.FindIdentity(ctx, identityID)
	if err != nil {
		return err
	}
	if identity == nil {
		return fmt.Errorf("%w: %s", domain.ErrIdentityNotFound, identityID)
	}
	if identity.Tombstoned {
		return fmt.Errorf("%w: %s", domain.ErrIdentityTombstoned, identityID)
	}

	return c.store.DismissLegacyLink(ctx, identityID)
}
