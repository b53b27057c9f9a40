package schema

import (
	"time"

	"github.com/openmarket/marketplace-api/internal/domain"
)

// Category represents the categories table - reference data mapping a minter
// contract address to its token standard. Refreshed by an external ingestion
// process; read-only here.
type Category struct {
	// MinterAddress is the contract address (lowercase hex)
	MinterAddress string `gorm:"column:minter_address;primaryKey;type:text"`
	// Standard is the token standard of contracts minted by this address
	Standard domain.TokenStandard `gorm:"column:standard;not null;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
