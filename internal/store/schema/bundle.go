package schema

import (
	"time"
)

// Bundle represents the bundles table - a named, priced collection of NFT
// holdings offered for sale as one unit
type Bundle struct {
	// ID is the ULID bundle identifier
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Name is the display name of the bundle
	Name string `gorm:"column:name;not null;type:text"`
	// Description is the optional description set when a cover image is pinned
	Description string `gorm:"column:description;type:text"`
	// Price is the asking price of the bundle as a whole
	Price float64 `gorm:"column:price;not null;default:0"`
	// Owner is the current owner's address (lowercase hex)
	Owner string `gorm:"column:owner;not null;type:text;index:idx_bundles_owner"`
	// Creator is the address that created the bundle
	Creator string `gorm:"column:creator;not null;type:text"`
	// Viewed counts detail-page views
	Viewed int64 `gorm:"column:viewed;not null;default:0"`
	// LastSalePrice is the price of the most recent sale, zero before any sale
	LastSalePrice float64 `gorm:"column:last_sale_price;not null;default:0"`
	// ImageHash is the IPFS gateway URL of the pinned cover image
	ImageHash string `gorm:"column:image_hash;type:text"`
	// ListedAt is the time the bundle was listed; the Unix epoch means never listed
	ListedAt time.Time `gorm:"column:listed_at;not null;type:timestamptz"`
	// SoldAt is the time of the most recent sale
	SoldAt *time.Time `gorm:"column:sold_at;type:timestamptz"`
	// SaleEndsAt is the time the current sale closes, nil for open-ended sales
	SaleEndsAt *time.Time `gorm:"column:sale_ends_at;type:timestamptz"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Items []BundleItem `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Bundle model
func (Bundle) TableName() string {
	return "bundles"
}
