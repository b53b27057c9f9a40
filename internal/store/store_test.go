package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestBundle creates a bundle row with sensible defaults
func buildTestBundle(id, owner string) *schema.Bundle {
	return &schema.Bundle{
		ID:       id,
		Name:     "bundle " + id,
		Price:    10,
		Owner:    owner,
		Creator:  owner,
		ListedAt: domain.UnlistedAt,
	}
}

// buildTestBundleItem creates a membership row for a bundle
func buildTestBundleItem(bundleID, contract, tokenID string, supply int64) schema.BundleItem {
	return schema.BundleItem{
		BundleID:        bundleID,
		ContractAddress: contract,
		TokenID:         tokenID,
		Supply:          supply,
		TokenType:       domain.StandardERC721,
		TokenURI:        "ipfs://Qm" + tokenID,
	}
}

const (
	storeTestOwner    = "0xaaaa00000000000000000000000000000000aaaa"
	storeTestContract = "0xbbbb00000000000000000000000000000000bbbb"
	storeTestHolder   = "0xcccc00000000000000000000000000000000cccc"
)

// =============================================================================
// Category and Collection Tests
// =============================================================================

func testCategories(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.Category{
		MinterAddress: storeTestContract,
		Standard:      domain.StandardERC721,
	}).Error)
	require.NoError(t, s.db.Create(&schema.Category{
		MinterAddress: storeTestHolder,
		Standard:      domain.StandardERC1155,
	}).Error)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	standards := map[string]domain.TokenStandard{}
	for _, c := range categories {
		standards[c.MinterAddress] = c.Standard
	}
	assert.Equal(t, domain.StandardERC721, standards[storeTestContract])
	assert.Equal(t, domain.StandardERC1155, standards[storeTestHolder])
}

func testGetCollectionAddressesByCategory(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.Collection{
		ERC721Address: "0x1111000000000000000000000000000000001111",
		Name:          "generative art",
		Categories:    schema.CategoryTags{"art", "generative"},
	}).Error)
	require.NoError(t, s.db.Create(&schema.Collection{
		ERC721Address: "0x2222000000000000000000000000000000002222",
		Name:          "pixel pets",
		Categories:    schema.CategoryTags{"gaming"},
	}).Error)
	require.NoError(t, s.db.Create(&schema.Collection{
		ERC721Address: "0x3333000000000000000000000000000000003333",
		Name:          "untagged",
	}).Error)

	t.Run("matches label inside JSONB array", func(t *testing.T) {
		addresses, err := store.GetCollectionAddressesByCategory(ctx, "art")
		require.NoError(t, err)
		assert.Equal(t, []string{"0x1111000000000000000000000000000000001111"}, addresses)
	})

	t.Run("unknown label yields empty slice", func(t *testing.T) {
		addresses, err := store.GetCollectionAddressesByCategory(ctx, "music")
		require.NoError(t, err)
		assert.NotNil(t, addresses)
		assert.Empty(t, addresses)
	})
}

// =============================================================================
// Holding Tests
// =============================================================================

func testGetNFTItem(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.NFTItem{
		ContractAddress: storeTestContract,
		TokenID:         "7",
		Owner:           storeTestOwner,
		TokenURI:        "ipfs://QmSeven",
	}).Error)

	t.Run("found", func(t *testing.T) {
		item, err := store.GetNFTItem(ctx, storeTestContract, "7")
		require.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, storeTestOwner, item.Owner)
		assert.Equal(t, "ipfs://QmSeven", item.TokenURI)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		item, err := store.GetNFTItem(ctx, storeTestContract, "8")
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func testGetNFTItemByOwner(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.NFTItem{
		ContractAddress: storeTestContract,
		TokenID:         "42",
		Owner:           storeTestOwner,
	}).Error)

	t.Run("held by owner", func(t *testing.T) {
		item, err := store.GetNFTItemByOwner(ctx, storeTestOwner, storeTestContract, "42")
		require.NoError(t, err)
		require.NotNil(t, item)
	})

	t.Run("held by someone else returns nil", func(t *testing.T) {
		item, err := store.GetNFTItemByOwner(ctx, storeTestHolder, storeTestContract, "42")
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func testGetERC1155Holding(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.ERC1155Holding{
		ContractAddress: storeTestContract,
		TokenID:         "100",
		HolderAddress:   storeTestHolder,
		SupplyPerHolder: 25,
	}).Error)

	t.Run("found", func(t *testing.T) {
		holding, err := store.GetERC1155Holding(ctx, storeTestContract, "100", storeTestHolder)
		require.NoError(t, err)
		require.NotNil(t, holding)
		assert.Equal(t, int64(25), holding.SupplyPerHolder)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		holding, err := store.GetERC1155Holding(ctx, storeTestContract, "100", storeTestOwner)
		require.NoError(t, err)
		assert.Nil(t, holding)
	})
}

// =============================================================================
// Bundle Tests
// =============================================================================

func testCreateAndGetBundle(t *testing.T, store Store) {
	ctx := context.Background()

	bundle := buildTestBundle("01BUNDLECREATE00000000000", storeTestOwner)
	bundle.Price = 12.5
	require.NoError(t, store.CreateBundle(ctx, bundle))

	got, err := store.GetBundleByID(ctx, bundle.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, bundle.Name, got.Name)
	assert.Equal(t, 12.5, got.Price)
	assert.Equal(t, storeTestOwner, got.Owner)
	assert.True(t, got.ListedAt.Equal(domain.UnlistedAt))

	missing, err := store.GetBundleByID(ctx, "01NOSUCHBUNDLE00000000000")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testDeleteBundle(t *testing.T, store Store) {
	ctx := context.Background()

	bundle := buildTestBundle("01BUNDLEDELETE00000000000", storeTestOwner)
	require.NoError(t, store.CreateBundle(ctx, bundle))
	require.NoError(t, store.CreateBundleItems(ctx, []schema.BundleItem{
		buildTestBundleItem(bundle.ID, storeTestContract, "1", 1),
		buildTestBundleItem(bundle.ID, storeTestContract, "2", 1),
	}))

	require.NoError(t, store.DeleteBundle(ctx, bundle.ID))

	got, err := store.GetBundleByID(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	items, err := store.GetBundleItems(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "membership rows should be removed with the bundle")
}

func testGetBundlesByOwner(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.CreateBundle(ctx, buildTestBundle("01OWNERBUNDLEA00000000000", storeTestOwner)))
	require.NoError(t, store.CreateBundle(ctx, buildTestBundle("01OWNERBUNDLEB00000000000", storeTestOwner)))
	require.NoError(t, store.CreateBundle(ctx, buildTestBundle("01OWNERBUNDLEC00000000000", storeTestHolder)))

	bundles, err := store.GetBundlesByOwner(ctx, storeTestOwner)
	require.NoError(t, err)
	assert.Len(t, bundles, 2)

	none, err := store.GetBundlesByOwner(ctx, "0xdddd00000000000000000000000000000000dddd")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListBundles(t *testing.T, store Store) {
	ctx := context.Background()

	require.NoError(t, store.CreateBundle(ctx, buildTestBundle("01LISTBUNDLEA000000000000", storeTestOwner)))
	require.NoError(t, store.CreateBundle(ctx, buildTestBundle("01LISTBUNDLEB000000000000", storeTestOwner)))

	t.Run("nil lists everything", func(t *testing.T) {
		bundles, err := store.ListBundles(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, bundles, 2)
	})

	t.Run("empty slice short-circuits to no rows", func(t *testing.T) {
		bundles, err := store.ListBundles(ctx, []string{})
		require.NoError(t, err)
		assert.NotNil(t, bundles)
		assert.Empty(t, bundles)
	})

	t.Run("restricts to the given IDs", func(t *testing.T) {
		bundles, err := store.ListBundles(ctx, []string{"01LISTBUNDLEA000000000000"})
		require.NoError(t, err)
		require.Len(t, bundles, 1)
		assert.Equal(t, "01LISTBUNDLEA000000000000", bundles[0].ID)
	})
}

func testIncrementBundleViews(t *testing.T, store Store) {
	ctx := context.Background()

	bundle := buildTestBundle("01VIEWSBUNDLE000000000000", storeTestOwner)
	require.NoError(t, store.CreateBundle(ctx, bundle))

	viewed, err := store.IncrementBundleViews(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed)

	viewed, err = store.IncrementBundleViews(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewed)

	_, err = store.IncrementBundleViews(ctx, "01NOSUCHBUNDLE00000000000")
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

// =============================================================================
// Bundle Item Tests
// =============================================================================

func testBundleItems(t *testing.T, store Store) {
	ctx := context.Background()

	bundle := buildTestBundle("01ITEMSBUNDLE000000000000", storeTestOwner)
	require.NoError(t, store.CreateBundle(ctx, bundle))

	items := []schema.BundleItem{
		buildTestBundleItem(bundle.ID, storeTestContract, "1", 1),
		buildTestBundleItem(bundle.ID, storeTestContract, "2", 5),
	}
	items[1].TokenType = domain.StandardERC1155
	require.NoError(t, store.CreateBundleItems(ctx, items))

	// Creating an empty batch is a no-op
	require.NoError(t, store.CreateBundleItems(ctx, nil))

	got, err := store.GetBundleItems(ctx, bundle.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	supplies := map[string]int64{}
	for _, item := range got {
		supplies[item.TokenID] = item.Supply
	}
	assert.Equal(t, int64(1), supplies["1"])
	assert.Equal(t, int64(5), supplies["2"])
}

func testGetBundleIDsByContracts(t *testing.T, store Store) {
	ctx := context.Background()

	first := buildTestBundle("01CONTRACTBUNDLEA00000000", storeTestOwner)
	second := buildTestBundle("01CONTRACTBUNDLEB00000000", storeTestOwner)
	third := buildTestBundle("01CONTRACTBUNDLEC00000000", storeTestOwner)
	require.NoError(t, store.CreateBundle(ctx, first))
	require.NoError(t, store.CreateBundle(ctx, second))
	require.NoError(t, store.CreateBundle(ctx, third))

	otherContract := "0x9999000000000000000000000000000000009999"
	require.NoError(t, store.CreateBundleItems(ctx, []schema.BundleItem{
		buildTestBundleItem(first.ID, storeTestContract, "1", 1),
		buildTestBundleItem(first.ID, storeTestContract, "2", 1),
		buildTestBundleItem(second.ID, storeTestContract, "3", 1),
		buildTestBundleItem(third.ID, otherContract, "1", 1),
	}))

	t.Run("distinct bundles holding the contract", func(t *testing.T) {
		ids, err := store.GetBundleIDsByContracts(ctx, []string{storeTestContract})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
	})

	t.Run("union over several contracts", func(t *testing.T) {
		ids, err := store.GetBundleIDsByContracts(ctx, []string{storeTestContract, otherContract})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{first.ID, second.ID, third.ID}, ids)
	})

	t.Run("no contracts yields empty slice", func(t *testing.T) {
		ids, err := store.GetBundleIDsByContracts(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, ids)
		assert.Empty(t, ids)
	})
}

func testDecrementBundleItemSupply(t *testing.T, store Store) {
	ctx := context.Background()

	bundle := buildTestBundle("01DECREMENTBUNDLE00000000", storeTestOwner)
	require.NoError(t, store.CreateBundle(ctx, bundle))
	require.NoError(t, store.CreateBundleItems(ctx, []schema.BundleItem{
		buildTestBundleItem(bundle.ID, storeTestContract, "1", 5),
	}))

	require.NoError(t, store.DecrementBundleItemSupply(ctx, bundle.ID, storeTestContract, "1", 3))

	items, err := store.GetBundleItems(ctx, bundle.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Supply)

	// Over-decrementing has no floor; the row goes negative and stays
	require.NoError(t, store.DecrementBundleItemSupply(ctx, bundle.ID, storeTestContract, "1", 4))

	items, err = store.GetBundleItems(ctx, bundle.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(-2), items[0].Supply)
}

func testDeleteZeroSupplyBundleItems(t *testing.T, store Store) {
	ctx := context.Background()

	first := buildTestBundle("01PRUNEBUNDLEA00000000000", storeTestOwner)
	second := buildTestBundle("01PRUNEBUNDLEB00000000000", storeTestHolder)
	require.NoError(t, store.CreateBundle(ctx, first))
	require.NoError(t, store.CreateBundle(ctx, second))

	require.NoError(t, store.CreateBundleItems(ctx, []schema.BundleItem{
		buildTestBundleItem(first.ID, storeTestContract, "1", 0),
		buildTestBundleItem(first.ID, storeTestContract, "2", 3),
		buildTestBundleItem(second.ID, storeTestContract, "3", 0),
		buildTestBundleItem(second.ID, storeTestContract, "4", -1),
	}))

	pruned, err := store.DeleteZeroSupplyBundleItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned, "the prune spans every bundle, not just one")

	firstItems, err := store.GetBundleItems(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, firstItems, 1)
	assert.Equal(t, "2", firstItems[0].TokenID)

	secondItems, err := store.GetBundleItems(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, secondItems, 1)
	assert.Equal(t, int64(-1), secondItems[0].Supply, "negative supply survives the exact-zero prune")
}

// =============================================================================
// Listing Tests
// =============================================================================

func testGetListingsByOwner(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.Listing{
		Owner:           storeTestOwner,
		ContractAddress: storeTestContract,
		TokenID:         "1",
		Quantity:        1,
		Price:           2.5,
		StartTime:       time.Now().UTC(),
	}).Error)
	require.NoError(t, s.db.Create(&schema.Listing{
		Owner:           storeTestHolder,
		ContractAddress: storeTestContract,
		TokenID:         "2",
		Quantity:        1,
		Price:           4,
	}).Error)

	listings, err := store.GetListingsByOwner(ctx, storeTestOwner)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "1", listings[0].TokenID)
	assert.Equal(t, 2.5, listings[0].Price)
}

// =============================================================================
// Account Tests
// =============================================================================

func testAccounts(t *testing.T, store Store) {
	ctx := context.Background()
	s := store.(*pgStore)

	require.NoError(t, s.db.Create(&schema.Account{
		Address: storeTestOwner,
		Alias:   "collector",
	}).Error)

	t.Run("found", func(t *testing.T) {
		account, err := store.GetAccount(ctx, storeTestOwner)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "collector", account.Alias)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		account, err := store.GetAccount(ctx, storeTestHolder)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("banner update persists", func(t *testing.T) {
		require.NoError(t, store.UpdateAccountBannerHash(ctx, storeTestOwner, "QmBanner"))

		account, err := store.GetAccount(ctx, storeTestOwner)
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "QmBanner", account.BannerHash)
	})
}

// =============================================================================
// Test Runner - runs all tests against a given store implementation
// =============================================================================

func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"Categories", testCategories},
		{"GetCollectionAddressesByCategory", testGetCollectionAddressesByCategory},
		{"GetNFTItem", testGetNFTItem},
		{"GetNFTItemByOwner", testGetNFTItemByOwner},
		{"GetERC1155Holding", testGetERC1155Holding},
		{"CreateAndGetBundle", testCreateAndGetBundle},
		{"DeleteBundle", testDeleteBundle},
		{"GetBundlesByOwner", testGetBundlesByOwner},
		{"ListBundles", testListBundles},
		{"IncrementBundleViews", testIncrementBundleViews},
		{"BundleItems", testBundleItems},
		{"GetBundleIDsByContracts", testGetBundleIDsByContracts},
		{"DecrementBundleItemSupply", testDecrementBundleItemSupply},
		{"DeleteZeroSupplyBundleItems", testDeleteZeroSupplyBundleItems},
		{"GetListingsByOwner", testGetListingsByOwner},
		{"Accounts", testAccounts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
