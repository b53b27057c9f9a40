package schema

import (
	"time"
)

// ERC1155Holding represents the erc1155_holdings table - fractional holdings
// with one row per (contract, token, holder). Written by the upstream chain
// indexer; read-only here.
type ERC1155Holding struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ContractAddress is the token contract (lowercase hex)
	ContractAddress string `gorm:"column:contract_address;not null;type:text;uniqueIndex:idx_erc1155_holdings_token_holder,priority:1"`
	// TokenID is the token number within the contract
	TokenID string `gorm:"column:token_id;not null;type:text;uniqueIndex:idx_erc1155_holdings_token_holder,priority:2"`
	// HolderAddress is the holder's address
	HolderAddress string `gorm:"column:holder_address;not null;type:text;uniqueIndex:idx_erc1155_holdings_token_holder,priority:3"`
	// SupplyPerHolder is the quantity held by this holder
	SupplyPerHolder int64 `gorm:"column:supply_per_holder;not null;default:0"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ERC1155Holding model
func (ERC1155Holding) TableName() string {
	return "erc1155_holdings"
}
