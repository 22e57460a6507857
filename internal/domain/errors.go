package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every caller-correctable input error
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a request collides with state owned by another principal
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidWalletAddress is returned when a wallet address is not 0x followed by 40 hex digits
	ErrInvalidWalletAddress = fmt.Errorf("%w: invalid wallet address", ErrValidation)

	// ErrUnknownBookmark is returned when a reorder list references an artist the user has not bookmarked
	ErrUnknownBookmark = fmt.Errorf("%w: unknown bookmark", ErrValidation)

	// ErrDuplicateBookmark is returned when a reorder list names the same artist twice
	ErrDuplicateBookmark = fmt.Errorf("%w: duplicate bookmark in order", ErrValidation)

	// ErrIdentityNotFound is returned when an identity is not found
	ErrIdentityNotFound = fmt.Errorf("%w: identity", ErrNotFound)

	// ErrIdentityTombstoned is returned when operating on an identity that was merged away
	ErrIdentityTombstoned = fmt.Errorf("%w: identity has been merged into another account", ErrValidation)

	// ErrConcurrentUpdate is returned when a row changed between being read and being locked.
	// Retrying the whole operation resolves it.
	ErrConcurrentUpdate = errors.New("concurrent update")

	// ErrWalletClaimed is returned when a wallet already belongs to another external principal
	ErrWalletClaimed = fmt.Errorf("%w: wallet is already linked to another account", ErrConflict)
)
