package schema

import (
	"time"

	"github.com/openmarket/marketplace-api/internal/domain"
)

// BundleItem represents the bundle_items table - one membership row per
// (bundle, contract, token) recording the committed supply.
// Supply may go negative when a sale over-decrements; only rows at exactly
// zero are pruned.
type BundleItem struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BundleID references the owning bundle
	BundleID string `gorm:"column:bundle_id;not null;type:text;index:idx_bundle_items_bundle"`
	// ContractAddress is the token contract (lowercase hex)
	ContractAddress string `gorm:"column:contract_address;not null;type:text;index:idx_bundle_items_token,priority:1"`
	// TokenID is the token number within the contract (string to support very large numbers)
	TokenID string `gorm:"column:token_id;not null;type:text;index:idx_bundle_items_token,priority:2"`
	// Supply is the quantity committed to the bundle
	Supply int64 `gorm:"column:supply;not null"`
	// TokenType is the classified standard of the contract at creation time
	TokenType domain.TokenStandard `gorm:"column:token_type;not null;type:text"`
	// TokenURI is the cached metadata URI of the token
	TokenURI string `gorm:"column:token_uri;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Bundle Bundle `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the BundleItem model
func (BundleItem) TableName() string {
	return "bundle_items"
}
