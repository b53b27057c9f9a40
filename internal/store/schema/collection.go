package schema

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// CategoryTags is a list of marketplace category labels stored as JSONB
type CategoryTags []string

// Scan implements the sql.Scanner interface for reading from database
func (c *CategoryTags) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Value implements the driver.Valuer interface for writing to database
func (c CategoryTags) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Collection represents the collections table - a curated contract with its
// marketplace category labels, used to resolve category filters in listings
type Collection struct {
	// ERC721Address is the collection's contract address (lowercase hex)
	ERC721Address string `gorm:"column:erc721_address;primaryKey;type:text"`
	// Name is the collection display name
	Name string `gorm:"column:name;type:text"`
	// Categories are the marketplace category labels attached to the collection
	Categories CategoryTags `gorm:"column:categories;type:jsonb"`
	// ImageHash is the IPFS gateway URL of the pinned collection image
	ImageHash string `gorm:"column:image_hash;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Collection model
func (Collection) TableName() string {
	return "collections"
}
