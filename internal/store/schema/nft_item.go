package schema

import (
	"time"

	"gorm.io/datatypes"
)

// NFTItem represents the nft_items table - single-ownership holdings plus the
// cached token URI and metadata. Rows are written by the upstream chain
// indexer; this service only reads them.
type NFTItem struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the token contract (lowercase hex)
	ContractAddress string `gorm:"column:contract_address;not null;type:text;uniqueIndex:idx_nft_items_token,priority:1"`
	// TokenID is the token number within the contract
	TokenID string `gorm:"column:token_id;not null;type:text;uniqueIndex:idx_nft_items_token,priority:2"`
	// Owner is the current holder's address; at most one holder per token
	Owner string `gorm:"column:owner;not null;type:text;index:idx_nft_items_owner"`
	// TokenURI is the cached metadata URI
	TokenURI string `gorm:"column:token_uri;type:text"`
	// Metadata is the cached metadata document, when the indexer resolved it
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// CreatedAt is the timestamp when this record was first indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the NFTItem model
func (NFTItem) TableName() string {
	return "nft_items"
}
