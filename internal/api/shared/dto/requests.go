package dto

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-ugc/internal/api/shared/constants"
	apierrors "github.com/feral-file/ff-ugc/internal/api/shared/errors"
)

// LinkWalletRequest represents the request body for linking a wallet to the current account
type LinkWalletRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// Validate validates the request body. The address format itself is checked by the link,
// which reports a malformed address as an invalid outcome.
func (r *LinkWalletRequest) Validate() error {
	if strings.TrimSpace(r.WalletAddress) == "" {
		return apierrors.NewValidationError("walletAddress is required")
	}
	return nil
}

// AddBookmarkRequest represents the request body for bookmarking an artist
type AddBookmarkRequest struct {
	ArtistID string `json:"artistId"`
}

// Validate validates the request body
func (r *AddBookmarkRequest) Validate() error {
	return validateArtistID(r.ArtistID)
}

// ReorderBookmarksRequest represents the request body for reordering bookmarks.
// ArtistIDs lists artists from the top of the list down.
type ReorderBookmarksRequest struct {
	ArtistIDs []string `json:"artistIds"`
}

// Validate validates the request body
func (r *ReorderBookmarksRequest) Validate() error {
	if r.ArtistIDs == nil {
		return apierrors.NewValidationError("artistIds is required")
	}

	if len(r.ArtistIDs) > constants.MAX_ARTISTS_PER_REORDER {
		return apierrors.NewValidationError(fmt.Sprintf("maximum %d artists allowed", constants.MAX_ARTISTS_PER_REORDER))
	}

	for _, id := range r.ArtistIDs {
		if err := validateArtistID(id); err != nil {
			return err
		}
	}

	return nil
}

func validateArtistID(id string) error {
	if strings.TrimSpace(id) == "" {
		return apierrors.NewValidationError("artistId is required")
	}
	if len(id) > constants.MAX_ARTIST_ID_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("artistId must be at most %d characters", constants.MAX_ARTIST_ID_LENGTH))
	}
	return nil
}
