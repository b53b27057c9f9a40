package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to reasonable defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// ListCategories retrieves the full category reference set
func (s *pgStore) ListCategories(ctx context.Context) ([]schema.Category, error) {
	var categories []schema.Category
	err := s.db.WithContext(ctx).Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCollectionAddressesByCategory retrieves collection contract addresses carrying a category label
func (s *pgStore) GetCollectionAddressesByCategory(ctx context.Context, category string) ([]string, error) {
	var collections []schema.Collection
	err := s.db.WithContext(ctx).
		Where("categories @> ?", fmt.Sprintf("[%q]", category)).
		Find(&collections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get collections by category: %w", err)
	}

	addresses := make([]string, 0, len(collections))
	for _, c := range collections {
		addresses = append(addresses, c.ERC721Address)
	}
	return addresses, nil
}

// GetNFTItem retrieves a single-ownership token record by (contract, token)
func (s *pgStore) GetNFTItem(ctx context.Context, contractAddress, tokenID string) (*schema.NFTItem, error) {
	var item schema.NFTItem
	err := s.db.WithContext(ctx).
		Where("contract_address = ? AND token_id = ?", contractAddress, tokenID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get nft item: %w", err)
	}
	return &item, nil
}

// GetNFTItemByOwner retrieves a single-ownership token record held by owner
func (s *pgStore) GetNFTItemByOwner(ctx context.Context, owner, contractAddress, tokenID string) (*schema.NFTItem, error) {
	var item schema.NFTItem
	err := s.db.WithContext(ctx).
		Where("owner = ? AND contract_address = ? AND token_id = ?", owner, contractAddress, tokenID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get nft item by owner: %w", err)
	}
	return &item, nil
}

// GetERC1155Holding retrieves a fractional holding row
func (s *pgStore) GetERC1155Holding(ctx context.Context, contractAddress, tokenID, holderAddress string) (*schema.ERC1155Holding, error) {
	var holding schema.ERC1155Holding
	err := s.db.WithContext(ctx).
		Where("contract_address = ? AND token_id = ? AND holder_address = ?", contractAddress, tokenID, holderAddress).
		First(&holding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get erc1155 holding: %w", err)
	}
	return &holding, nil
}

// CreateBundle persists a new bundle row
func (s *pgStore) CreateBundle(ctx context.Context, bundle *schema.Bundle) error {
	if err := s.db.WithContext(ctx).Create(bundle).Error; err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	return nil
}

// DeleteBundle removes a bundle row and, via cascade, its membership rows
func (s *pgStore) DeleteBundle(ctx context.Context, bundleID string) error {
	// Membership rows cascade on the foreign key, but delete them explicitly
	// so the call behaves the same on databases created by AutoMigrate.
	err := s.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Delete(&schema.BundleItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete bundle items: %w", err)
	}

	err = s.db.WithContext(ctx).
		Where("id = ?", bundleID).
		Delete(&schema.Bundle{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete bundle: %w", err)
	}
	return nil
}

// GetBundleByID retrieves a bundle by its ID
func (s *pgStore) GetBundleByID(ctx context.Context, bundleID string) (*schema.Bundle, error) {
	var bundle schema.Bundle
	err := s.db.WithContext(ctx).Where("id = ?", bundleID).First(&bundle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return &bundle, nil
}

// GetBundlesByOwner retrieves all bundles owned by an address
func (s *pgStore) GetBundlesByOwner(ctx context.Context, owner string) ([]schema.Bundle, error) {
	var bundles []schema.Bundle
	err := s.db.WithContext(ctx).Where("owner = ?", owner).Find(&bundles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bundles by owner: %w", err)
	}
	return bundles, nil
}

// ListBundles retrieves bundles, optionally restricted to the given IDs
func (s *pgStore) ListBundles(ctx context.Context, bundleIDs []string) ([]schema.Bundle, error) {
	query := s.db.WithContext(ctx)
	if bundleIDs != nil {
		if len(bundleIDs) == 0 {
			return []schema.Bundle{}, nil
		}
		query = query.Where("id IN ?", bundleIDs)
	}

	var bundles []schema.Bundle
	if err := query.Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return bundles, nil
}

// IncrementBundleViews atomically increments a bundle's view counter and
// returns the new count
func (s *pgStore) IncrementBundleViews(ctx context.Context, bundleID string) (int64, error) {
	var viewed int64
	err := s.db.WithContext(ctx).
		Raw("UPDATE bundles SET viewed = viewed + 1, updated_at = now() WHERE id = ? RETURNING viewed", bundleID).
		Scan(&viewed).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment bundle views: %w", err)
	}

	// RETURNING yields no row when the ID does not resolve, leaving the zero
	// value in place. A resolved increment is always >= 1.
	if viewed == 0 {
		return 0, domain.ErrBundleNotFound
	}

	return viewed, nil
}

// CreateBundleItems persists membership rows in batch
func (s *pgStore) CreateBundleItems(ctx context.Context, items []schema.BundleItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to create bundle items: %w", err)
	}
	return nil
}

// GetBundleItems retrieves all membership rows of a bundle
func (s *pgStore) GetBundleItems(ctx context.Context, bundleID string) ([]schema.BundleItem, error) {
	var items []schema.BundleItem
	err := s.db.WithContext(ctx).Where("bundle_id = ?", bundleID).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bundle items: %w", err)
	}
	return items, nil
}

// GetBundleIDsByContracts retrieves distinct bundle IDs holding any of the given contracts
func (s *pgStore) GetBundleIDsByContracts(ctx context.Context, contractAddresses []string) ([]string, error) {
	if len(contractAddresses) == 0 {
		return []string{}, nil
	}

	var bundleIDs []string
	err := s.db.WithContext(ctx).
		Model(&schema.BundleItem{}).
		Distinct("bundle_id").
		Where("contract_address IN ?", contractAddresses).
		Pluck("bundle_id", &bundleIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bundle ids by contracts: %w", err)
	}
	return bundleIDs, nil
}

// DecrementBundleItemSupply subtracts quantity from a bundle's matching
// membership row. Supply has no floor; over-decrementing leaves a negative
// value that only an exact-zero prune would remove.
func (s *pgStore) DecrementBundleItemSupply(ctx context.Context, bundleID, contractAddress, tokenID string, quantity int64) error {
	err := s.db.WithContext(ctx).
		Model(&schema.BundleItem{}).
		Where("bundle_id = ? AND contract_address = ? AND token_id = ?", bundleID, contractAddress, tokenID).
		Update("supply", gorm.Expr("supply - ?", quantity)).Error
	if err != nil {
		return fmt.Errorf("failed to decrement bundle item supply: %w", err)
	}
	return nil
}

// DeleteZeroSupplyBundleItems removes every membership row whose supply is
// exactly zero, across all bundles
func (s *pgStore) DeleteZeroSupplyBundleItems(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("supply = 0").
		Delete(&schema.BundleItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete zero supply bundle items: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetListingsByOwner retrieves listings owned by an address
func (s *pgStore) GetListingsByOwner(ctx context.Context, owner string) ([]schema.Listing, error) {
	var listings []schema.Listing
	err := s.db.WithContext(ctx).Where("owner = ?", owner).Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get listings by owner: %w", err)
	}
	return listings, nil
}

// GetAccount retrieves an account by address
func (s *pgStore) GetAccount(ctx context.Context, address string) (*schema.Account, error) {
	var account schema.Account
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// UpdateAccountBannerHash stores the pinned banner URL on an account
func (s *pgStore) UpdateAccountBannerHash(ctx context.Context, address, bannerHash string) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Account{}).
		Where("address = ?", address).
		Update("banner_hash", bannerHash).Error
	if err != nil {
		return fmt.Errorf("failed to update account banner hash: %w", err)
	}
	return nil
}
