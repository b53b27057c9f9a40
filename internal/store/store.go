package store

import (
	"context"

	"github.com/openmarket/marketplace-api/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ListCategories retrieves the full category reference set
	ListCategories(ctx context.Context) ([]schema.Category, error)
	// GetCollectionAddressesByCategory retrieves collection contract addresses carrying a category label
	GetCollectionAddressesByCategory(ctx context.Context, category string) ([]string, error)

	// GetNFTItem retrieves a single-ownership token record by (contract, token), nil if absent
	GetNFTItem(ctx context.Context, contractAddress, tokenID string) (*schema.NFTItem, error)
	// GetNFTItemByOwner retrieves a single-ownership token record held by owner, nil if absent
	GetNFTItemByOwner(ctx context.Context, owner, contractAddress, tokenID string) (*schema.NFTItem, error)
	// GetERC1155Holding retrieves a fractional holding row, nil if absent
	GetERC1155Holding(ctx context.Context, contractAddress, tokenID, holderAddress string) (*schema.ERC1155Holding, error)

	// CreateBundle persists a new bundle row
	CreateBundle(ctx context.Context, bundle *schema.Bundle) error
	// DeleteBundle removes a bundle row and, via cascade, its membership rows
	DeleteBundle(ctx context.Context, bundleID string) error
	// GetBundleByID retrieves a bundle by its ID, nil if absent
	GetBundleByID(ctx context.Context, bundleID string) (*schema.Bundle, error)
	// GetBundlesByOwner retrieves all bundles owned by an address
	GetBundlesByOwner(ctx context.Context, owner string) ([]schema.Bundle, error)
	// ListBundles retrieves bundles, optionally restricted to the given IDs (nil means all)
	ListBundles(ctx context.Context, bundleIDs []string) ([]schema.Bundle, error)
	// IncrementBundleViews atomically increments a bundle's view counter and returns the new count
	IncrementBundleViews(ctx context.Context, bundleID string) (int64, error)

	// CreateBundleItems persists membership rows in batch
	CreateBundleItems(ctx context.Context, items []schema.BundleItem) error
	// GetBundleItems retrieves all membership rows of a bundle
	GetBundleItems(ctx context.Context, bundleID string) ([]schema.BundleItem, error)
	// GetBundleIDsByContracts retrieves distinct bundle IDs holding any of the given contracts
	GetBundleIDsByContracts(ctx context.Context, contractAddresses []string) ([]string, error)
	// DecrementBundleItemSupply subtracts quantity from a bundle's matching membership row
	DecrementBundleItemSupply(ctx context.Context, bundleID, contractAddress, tokenID string, quantity int64) error
	// DeleteZeroSupplyBundleItems removes every membership row whose supply is exactly zero,
	// across all bundles, and returns the number of rows removed
	DeleteZeroSupplyBundleItems(ctx context.Context) (int64, error)

	// GetListingsByOwner retrieves listings owned by an address
	GetListingsByOwner(ctx context.Context, owner string) ([]schema.Listing, error)

	// GetAccount retrieves an account by address, nil if absent
	GetAccount(ctx context.Context, address string) (*schema.Account, error)
	// UpdateAccountBannerHash stores the pinned banner URL on an account
	UpdateAccountBannerHash(ctx context.Context, address, bannerHash string) error
}
