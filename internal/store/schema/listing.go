package schema

import (
	"time"
)

// Listing represents the listings table - an individual token offered for
// sale. Written by the marketplace tracker; read-only here.
type Listing struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Owner is the listing owner's address (lowercase hex)
	Owner string `gorm:"column:owner;not null;type:text;index:idx_listings_owner"`
	// ContractAddress is the token contract
	ContractAddress string `gorm:"column:contract_address;not null;type:text"`
	// TokenID is the token number within the contract
	TokenID string `gorm:"column:token_id;not null;type:text"`
	// Quantity is the listed quantity (1 for single-ownership tokens)
	Quantity int64 `gorm:"column:quantity;not null;default:1"`
	// Price is the asking price per unit
	Price float64 `gorm:"column:price;not null"`
	// StartTime is when the listing becomes active
	StartTime time.Time `gorm:"column:start_time;type:timestamptz"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}
