package schema

import (
	"time"
)

// Account represents the accounts table - a marketplace user profile keyed by
// wallet address
type Account struct {
	// Address is the wallet address (lowercase hex)
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Alias is the user-chosen display name
	Alias string `gorm:"column:alias;type:text"`
	// BannerHash is the IPFS gateway URL of the pinned profile banner
	BannerHash string `gorm:"column:banner_hash;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}
