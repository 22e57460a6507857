package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/adapter"
	"github.com/feral-file/ff-ugc/internal/api/shared/dto"
	apierrors "github.com/feral-file/ff-ugc/internal/api/shared/errors"
	"github.com/feral-file/ff-ugc/internal/bookmark"
	"github.com/feral-file/ff-ugc/internal/domain"
	"github.com/feral-file/ff-ugc/internal/identity"
	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/messaging"
	"github.com/feral-file/ff-ugc/internal/metrics"
	"github.com/feral-file/ff-ugc/internal/seen"
	"github.com/feral-file/ff-ugc/internal/store"
	"github.com/feral-file/ff-ugc/internal/store/schema"
)

// Executor is the interface for the API executor. Every operation acts on behalf of the
// authenticated principal, identified by the subject of its token.
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// LinkWallet claims a wallet for the caller, merging a wallet-only legacy account when needed
	LinkWallet(ctx context.Context, subject string, walletAddress string) (*dto.LinkWalletResponse, error)

	// DismissLegacyLink stops offering the caller a legacy wallet link
	DismissLegacyLink(ctx context.Context, subject string) error

	// ListBookmarks returns the caller's bookmarks in display order
	ListBookmarks(ctx context.Context, subject string) (*dto.BookmarkListResponse, error)

	// AddBookmark bookmarks an artist at the top of the caller's list
	AddBookmark(ctx context.Context, subject string, artistID string) (*dto.AddBookmarkResponse, error)

	// RemoveBookmark removes a bookmark, absence is not an error
	RemoveBookmark(ctx context.Context, subject string, artistID string) (*dto.RemoveBookmarkResponse, error)

	// ReorderBookmarks applies a full order to the caller's bookmarks and returns the new list
	ReorderBookmarks(ctx context.Context, subject string, artistIDs []string) (*dto.BookmarkListResponse, error)

	// MarkContentSeen moves the caller's seen watermark to now
	MarkContentSeen(ctx context.Context, subject string) (*dto.SeenResponse, error)

	// GetUnseenApprovedCount counts the caller's approved submissions processed after the watermark
	GetUnseenApprovedCount(ctx context.Context, subject string) (*dto.UnseenCountResponse, error)
}

type executor struct {
	store       store.Store
	coordinator identity.Coordinator
	bookmarks   bookmark.Service
	tracker     seen.Tracker
	publisher   messaging.Publisher
	clock       adapter.Clock
	metrics     *metrics.Metrics
	retry       RetryConfig
}

// NewExecutor creates a new executor
func NewExecutor(
	st store.Store,
	coordinator identity.Coordinator,
	bookmarks bookmark.Service,
	tracker seen.Tracker,
	publisher messaging.Publisher,
	clock adapter.Clock,
	m *metrics.Metrics,
	retry RetryConfig,
) Executor {
	return &executor{
		store:       st,
		coordinator: coordinator,
		bookmarks:   bookmarks,
		tracker:     tracker,
		publisher:   publisher,
		clock:       clock,
		metrics:     m,
		retry:       retry,
	}
}

// resolveIdentity returns the live identity of the principal, creating it on first use
func (e *executor) resolveIdentity(ctx context.Context, subject string) (*schema.Identity, context.Context, error) {
	if subject == "" {
		return nil, ctx, apierrors.NewUnauthorizedError("Missing subject")
	}

	var current *schema.Identity
	err := e.withRetry(ctx, "resolve_identity", func() error {
		found, created, err := e.store.FindOrCreateIdentityByExternalAuthID(ctx, subject)
		if err != nil {
			return err
		}
		if created {
			logger.InfoCtx(ctx, "Created identity on first login", zap.String("identityID", found.ID))
		}
		current = found
		return nil
	})
	if err != nil {
		return nil, ctx, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if current.Tombstoned {
		return nil, ctx, apierrors.NewConflictError("Account has been merged into another account")
	}

	return current, logger.WithFields(ctx, zap.String("identityID", current.ID)), nil
}

func (e *executor) LinkWallet(ctx context.Context, subject string, walletAddress string) (*dto.LinkWalletResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	var result *identity.LinkResult
	err = e.withRetry(ctx, "link_wallet", func() error {
		var err error
		result, err = e.coordinator.LinkWallet(ctx, current.ID, walletAddress)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to link wallet: %w", err)
	}

	e.metrics.LinkOutcome(string(result.Status))

	switch result.Status {
	case identity.LinkStatusInvalid:
		return nil, apierrors.NewValidationError(domain.ErrInvalidWalletAddress.Error())
	case identity.LinkStatusConflict:
		return nil, apierrors.NewConflictError("Wallet is already linked to another account", domain.ErrWalletClaimed.Error())
	case identity.LinkStatusMerged:
		e.tracker.Invalidate(result.SurvivingID, result.SourceID)

		event := messaging.NewEvent(domain.EventTypeIdentityMerged, result.SurvivingID, e.clock.Now())
		event.SourceID = result.SourceID
		e.publish(ctx, event)
		if result.Report != nil && (result.Report.BookmarksMoved > 0 || result.Report.BookmarksDiscarded > 0) {
			e.publish(ctx, messaging.NewEvent(domain.EventTypeBookmarksUpdated, result.SurvivingID, e.clock.Now()))
		}
	}

	return &dto.LinkWalletResponse{
		Merged:      result.Merged,
		Status:      string(result.Status),
		SurvivingID: result.SurvivingID,
	}, nil
}

func (e *executor) DismissLegacyLink(ctx context.Context, subject string) error {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return err
	}

	if err := e.coordinator.DismissLegacyLink(ctx, current.ID); err != nil {
		return fmt.Errorf("failed to dismiss legacy link: %w", err)
	}

	return nil
}

func (e *executor) ListBookmarks(ctx context.Context, subject string) (*dto.BookmarkListResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	bookmarks, err := e.bookmarks.List(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	return dto.MapBookmarksToDTO(bookmarks), nil
}

func (e *executor) AddBookmark(ctx context.Context, subject string, artistID string) (*dto.AddBookmarkResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	created, err := e.bookmarks.InsertAtHead(ctx, current.ID, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to add bookmark: %w", err)
	}

	if created {
		e.metrics.BookmarkOperation("add")
		e.publish(ctx, messaging.NewEvent(domain.EventTypeBookmarksUpdated, current.ID, e.clock.Now()))
	}

	return &dto.AddBookmarkResponse{Created: created}, nil
}

func (e *executor) RemoveBookmark(ctx context.Context, subject string, artistID string) (*dto.RemoveBookmarkResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	removed, err := e.bookmarks.Remove(ctx, current.ID, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove bookmark: %w", err)
	}

	if removed {
		e.metrics.BookmarkOperation("remove")
		e.publish(ctx, messaging.NewEvent(domain.EventTypeBookmarksUpdated, current.ID, e.clock.Now()))
	}

	return &dto.RemoveBookmarkResponse{Removed: removed}, nil
}

func (e *executor) ReorderBookmarks(ctx context.Context, subject string, artistIDs []string) (*dto.BookmarkListResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	if err := e.bookmarks.ReorderAll(ctx, current.ID, artistIDs); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return nil, apierrors.NewValidationError(err.Error())
		}
		return nil, fmt.Errorf("failed to reorder bookmarks: %w", err)
	}

	if len(artistIDs) > 0 {
		e.metrics.BookmarkOperation("reorder")
		e.publish(ctx, messaging.NewEvent(domain.EventTypeBookmarksUpdated, current.ID, e.clock.Now()))
	}

	bookmarks, err := e.bookmarks.List(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	return dto.MapBookmarksToDTO(bookmarks), nil
}

func (e *executor) MarkContentSeen(ctx context.Context, subject string) (*dto.SeenResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	var watermark time.Time
	err = e.withRetry(ctx, "mark_seen", func() error {
		var err error
		watermark, err = e.tracker.MarkSeen(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark content seen: %w", err)
	}

	e.metrics.ContentSeen()
	e.publish(ctx, messaging.NewEvent(domain.EventTypeContentSeen, current.ID, watermark))

	return &dto.SeenResponse{LastSeenAt: watermark}, nil
}

func (e *executor) GetUnseenApprovedCount(ctx context.Context, subject string) (*dto.UnseenCountResponse, error) {
	current, ctx, err := e.resolveIdentity(ctx, subject)
	if err != nil {
		return nil, err
	}

	count, err := e.tracker.UnseenApprovedCount(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unseen content: %w", err)
	}

	lastSeen, err := e.tracker.GetLastSeen(ctx, current.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seen watermark: %w", err)
	}

	return &dto.UnseenCountResponse{Count: count, LastSeenAt: lastSeen}, nil
}

// publish sends an event for an already committed change. Failures are logged and counted only.
func (e *executor) publish(ctx context.Context, event *domain.Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.PublishFailure(string(event.Type))
		logger.WarnCtx(ctx, "Failed to publish event",
			zap.Error(err),
			zap.String("eventType", string(event.Type)),
			zap.String("eventID", event.ID))
	}
}
