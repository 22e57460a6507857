package schema

import (
	"time"
)

// Identity represents the identities table - one row per user account, reachable through an
// external auth principal, a wallet address, or both
type Identity struct {
	// ID is the stable opaque identifier (uuid)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// ExternalAuthID is the external auth principal (e.g. the JWT subject); nil for wallet-only legacy accounts
	ExternalAuthID *string `gorm:"column:external_auth_id;type:text;uniqueIndex:idx_identities_external_auth_id"`
	// WalletAddress is the lowercase 0x-prefixed wallet address; unique among live identities
	WalletAddress *string `gorm:"column:wallet_address;type:text;uniqueIndex:idx_identities_live_wallet,where:tombstoned = false"`
	// Email is the contact address, if known
	Email *string `gorm:"column:email;type:text"`
	// IsAdmin grants moderation rights
	IsAdmin bool `gorm:"column:is_admin;not null;default:false"`
	// IsWhiteListed lets the user's submissions skip moderation
	IsWhiteListed bool `gorm:"column:is_white_listed;not null;default:false"`
	// IsSuperAdmin grants role management rights
	IsSuperAdmin bool `gorm:"column:is_super_admin;not null;default:false"`
	// IsHidden hides the user from public leaderboards
	IsHidden bool `gorm:"column:is_hidden;not null;default:false"`
	// AcceptedUGCCount is the denormalized number of accepted submissions
	AcceptedUGCCount int64 `gorm:"column:accepted_ugc_count;not null;default:0"`
	// LegacyLinkDismissed records that the user dismissed the "link your legacy wallet" prompt
	LegacyLinkDismissed bool `gorm:"column:legacy_link_dismissed;not null;default:false"`
	// Tombstoned is set once the identity has been merged into another one; tombstones are never deleted
	Tombstoned bool `gorm:"column:tombstoned;not null;default:false;index:idx_identities_tombstoned"`
	// MergedIntoID references the surviving identity of the merge that tombstoned this one
	MergedIntoID *string `gorm:"column:merged_into_id;type:text"`
	// CreatedAt is the timestamp when this identity was created
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	// UpdatedAt is the timestamp when this identity was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

// TableName specifies the table name for the Identity model
func (Identity) TableName() string {
	return "identities"
}

// IsLegacy reports whether the identity is a wallet-only account created before an external auth principal existed
func (i *Identity) IsLegacy() bool {
	return i.ExternalAuthID == nil || *i.ExternalAuthID == ""
}
