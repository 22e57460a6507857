package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// WalletAddress is an EVM wallet address in its canonical lowercase form: 0x followed by 40 hex digits
type WalletAddress string

// ParseWalletAddress validates a user supplied wallet address and returns its canonical form.
// Only the literal "0x" prefix is accepted; hex digits may be of either case.
func ParseWalletAddress(raw string) (WalletAddress, error) {
	if len(raw) != 2+2*common.AddressLength || !strings.HasPrefix(raw, "0x") {
		return "", ErrInvalidWalletAddress
	}
	if !common.IsHexAddress(raw) {
		return "", ErrInvalidWalletAddress
	}
	return WalletAddress(strings.ToLower(raw)), nil
}

// String returns the canonical address
func (w WalletAddress) String() string {
	return string(w)
}

// Ptr returns a pointer to the address as a plain string, for nullable columns
func (w WalletAddress) Ptr() *string {
	s := string(w)
	return &s
}
