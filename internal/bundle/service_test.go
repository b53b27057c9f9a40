package bundle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                  { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }

type fakeRegistry struct {
	standards map[string]domain.TokenStandard
}

func (r *fakeRegistry) Classify(_ context.Context, contractAddress string) (domain.TokenStandard, error) {
	standard, ok := r.standards[contractAddress]
	if !ok {
		return "", domain.ErrUnknownContract
	}
	return standard, nil
}

func (r *fakeRegistry) Refresh(context.Context) error { return nil }

// fakeStore is an in-memory Store for service tests
type fakeStore struct {
	mu sync.Mutex

	categories     []schema.Category
	categoryTags   map[string][]string
	tokens         map[string]*schema.NFTItem
	holdings       map[string]*schema.ERC1155Holding
	bundles        map[string]*schema.Bundle
	items          map[string][]schema.BundleItem
	contractIDs    map[string][]string
	listBundlesArg *[]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categoryTags: map[string][]string{},
		tokens:       map[string]*schema.NFTItem{},
		holdings:     map[string]*schema.ERC1155Holding{},
		bundles:      map[string]*schema.Bundle{},
		items:        map[string][]schema.BundleItem{},
		contractIDs:  map[string][]string{},
	}
}

func tokenKey(contractAddress, tokenID string) string { return contractAddress + "/" + tokenID }

func (s *fakeStore) ListCategories(context.Context) ([]schema.Category, error) {
	return s.categories, nil
}

func (s *fakeStore) GetCollectionAddressesByCategory(_ context.Context, category string) ([]string, error) {
	return s.categoryTags[category], nil
}

func (s *fakeStore) GetNFTItem(_ context.Context, contractAddress, tokenID string) (*schema.NFTItem, error) {
	return s.tokens[tokenKey(contractAddress, tokenID)], nil
}

func (s *fakeStore) GetNFTItemByOwner(_ context.Context, owner, contractAddress, tokenID string) (*schema.NFTItem, error) {
	token := s.tokens[tokenKey(contractAddress, tokenID)]
	if token == nil || token.Owner != owner {
		return nil, nil
	}
	return token, nil
}

func (s *fakeStore) GetERC1155Holding(_ context.Context, contractAddress, tokenID, holderAddress string) (*schema.ERC1155Holding, error) {
	return s.holdings[tokenKey(contractAddress, tokenID)+"/"+holderAddress], nil
}

func (s *fakeStore) CreateBundle(_ context.Context, bundle *schema.Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[bundle.ID] = bundle
	return nil
}

func (s *fakeStore) DeleteBundle(_ context.Context, bundleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bundles, bundleID)
	delete(s.items, bundleID)
	return nil
}

func (s *fakeStore) GetBundleByID(_ context.Context, bundleID string) (*schema.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundles[bundleID], nil
}

func (s *fakeStore) GetBundlesByOwner(_ context.Context, owner string) ([]schema.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []schema.Bundle
	for _, b := range s.bundles {
		if b.Owner == owner {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBundles(_ context.Context, bundleIDs []string) ([]schema.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listBundlesArg = &bundleIDs
	if bundleIDs == nil {
		var out []schema.Bundle
		for _, b := range s.bundles {
			out = append(out, *b)
		}
		return out, nil
	}
	out := []schema.Bundle{}
	for _, id := range bundleIDs {
		if b, ok := s.bundles[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeStore) IncrementBundleViews(_ context.Context, bundleID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bundles[bundleID]
	if !ok {
		return 0, domain.ErrBundleNotFound
	}
	b.Viewed++
	return b.Viewed, nil
}

func (s *fakeStore) CreateBundleItems(_ context.Context, items []schema.BundleItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.items[item.BundleID] = append(s.items[item.BundleID], item)
	}
	return nil
}

func (s *fakeStore) GetBundleItems(_ context.Context, bundleID string) ([]schema.BundleItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[bundleID], nil
}

func (s *fakeStore) GetBundleIDsByContracts(_ context.Context, contractAddresses []string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}
	for _, contract := range contractAddresses {
		for _, id := range s.contractIDs[contract] {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

func (s *fakeStore) DecrementBundleItemSupply(_ context.Context, bundleID, contractAddress, tokenID string, quantity int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items[bundleID]
	for i := range items {
		if items[i].ContractAddress == contractAddress && items[i].TokenID == tokenID {
			items[i].Supply -= quantity
		}
	}
	return nil
}

func (s *fakeStore) DeleteZeroSupplyBundleItems(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned int64
	for id, items := range s.items {
		kept := items[:0]
		for _, item := range items {
			if item.Supply == 0 {
				pruned++
				continue
			}
			kept = append(kept, item)
		}
		s.items[id] = kept
	}
	return pruned, nil
}

func (s *fakeStore) GetListingsByOwner(context.Context, string) ([]schema.Listing, error) {
	return nil, nil
}

func (s *fakeStore) GetAccount(context.Context, string) (*schema.Account, error) {
	return nil, nil
}

func (s *fakeStore) UpdateAccountBannerHash(context.Context, string, string) error {
	return nil
}

const (
	testOwner       = "0x00000000000000000000000000000000000000aa"
	testERC721Addr  = "0x0000000000000000000000000000000000000721"
	testERC1155Addr = "0x0000000000000000000000000000000000001155"
	testUnknownAddr = "0x000000000000000000000000000000000000dead"
)

func newTestService(cfg Config, s *fakeStore, clock *fakeClock) Service {
	registry := &fakeRegistry{standards: map[string]domain.TokenStandard{
		testERC721Addr:  domain.StandardERC721,
		testERC1155Addr: domain.StandardERC1155,
	}}
	return NewService(cfg, s, registry, clock)
}

func seedToken(s *fakeStore, contractAddress, tokenID, owner string) {
	s.tokens[tokenKey(contractAddress, tokenID)] = &schema.NFTItem{
		ContractAddress: contractAddress,
		TokenID:         tokenID,
		Owner:           owner,
		TokenURI:        "ipfs://Qm" + tokenID,
	}
}

func seedHolding(s *fakeStore, contractAddress, tokenID, holder string, supply int64) {
	s.holdings[tokenKey(contractAddress, tokenID)+"/"+holder] = &schema.ERC1155Holding{
		ContractAddress: contractAddress,
		TokenID:         tokenID,
		HolderAddress:   holder,
		SupplyPerHolder: supply,
	}
}

func TestCreateBundleRejectsEmptyItemList(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	_, _, err := svc.CreateBundle(context.Background(), testOwner, "empty", 10, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBundle)
	assert.Empty(t, store.bundles)
}

func TestCreateBundleRejectsNonPositivePrice(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC721Addr, "1", testOwner)
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	items := []domain.BundleItemRequest{{ContractAddress: testERC721Addr, TokenID: "1", Supply: 1}}
	for _, price := range []float64{0, -5} {
		_, _, err := svc.CreateBundle(context.Background(), testOwner, "bad price", price, items)
		assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	}
	assert.Empty(t, store.bundles)
}

func TestCreateBundlePersistsValidItems(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC721Addr, "1", testOwner)
	seedToken(store, testERC1155Addr, "7", testOwner)
	seedHolding(store, testERC1155Addr, "7", testOwner, 5)
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	bundleID, failures, err := svc.CreateBundle(context.Background(), testOwner, "art drop", 42.5, []domain.BundleItemRequest{
		{ContractAddress: testERC721Addr, TokenID: "1", Supply: 1},
		{ContractAddress: testERC1155Addr, TokenID: "7", Supply: 3},
	})
	require.NoError(t, err)
	require.Empty(t, failures)
	require.NotEmpty(t, bundleID)

	b := store.bundles[bundleID]
	require.NotNil(t, b)
	assert.Equal(t, testOwner, b.Owner)
	assert.Equal(t, testOwner, b.Creator)
	assert.Equal(t, 42.5, b.Price)
	assert.Equal(t, domain.UnlistedAt, b.ListedAt)

	items := store.items[bundleID]
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, bundleID, item.BundleID)
		assert.NotEmpty(t, item.TokenURI)
	}
}

func TestCreateBundleLegacyKeepsBundleWhenItemsFail(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC721Addr, "1", testOwner)
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	bundleID, failures, err := svc.CreateBundle(context.Background(), testOwner, "partial", 10, []domain.BundleItemRequest{
		{ContractAddress: testERC721Addr, TokenID: "1", Supply: 1},
		{ContractAddress: testUnknownAddr, TokenID: "2", Supply: 1},
	})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, testUnknownAddr, failures[0].ContractAddress)

	// The bundle row and the valid item survive the partial failure
	require.NotNil(t, store.bundles[bundleID])
	require.Len(t, store.items[bundleID], 1)
	assert.Equal(t, testERC721Addr, store.items[bundleID][0].ContractAddress)
}

func TestCreateBundleStrictRollsBackOnAnyFailure(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC721Addr, "1", testOwner)
	svc := newTestService(Config{StrictItems: true}, store, &fakeClock{now: time.Now()})

	bundleID, failures, err := svc.CreateBundle(context.Background(), testOwner, "strict", 10, []domain.BundleItemRequest{
		{ContractAddress: testERC721Addr, TokenID: "1", Supply: 1},
		{ContractAddress: testUnknownAddr, TokenID: "2", Supply: 1},
	})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Empty(t, bundleID)
	assert.Empty(t, store.bundles)
	assert.Empty(t, store.items)
}

func TestCreateBundleRejectsUnheldERC721(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC721Addr, "1", "0x00000000000000000000000000000000000000bb")
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	_, failures, err := svc.CreateBundle(context.Background(), testOwner, "not mine", 10, []domain.BundleItemRequest{
		{ContractAddress: testERC721Addr, TokenID: "1", Supply: 1},
	})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, domain.ErrItemInvalid.Error(), failures[0].Reason)
}

func TestCreateBundleRejectsInsufficientERC1155Supply(t *testing.T) {
	store := newFakeStore()
	seedToken(store, testERC1155Addr, "7", testOwner)
	seedHolding(store, testERC1155Addr, "7", testOwner, 2)
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	_, failures, err := svc.CreateBundle(context.Background(), testOwner, "too many", 10, []domain.BundleItemRequest{
		{ContractAddress: testERC1155Addr, TokenID: "7", Supply: 3},
	})
	require.NoError(t, err)
	require.Len(t, failures, 1)
}

func TestRemoveFromBundlesDecrementsAndPrunes(t *testing.T) {
	store := newFakeStore()
	store.bundles["b1"] = &schema.Bundle{ID: "b1", Owner: testOwner}
	store.bundles["b2"] = &schema.Bundle{ID: "b2", Owner: testOwner}
	store.items["b1"] = []schema.BundleItem{
		{BundleID: "b1", ContractAddress: testERC1155Addr, TokenID: "7", Supply: 2},
	}
	store.items["b2"] = []schema.BundleItem{
		{BundleID: "b2", ContractAddress: testERC1155Addr, TokenID: "7", Supply: 5},
		{BundleID: "b2", ContractAddress: testERC721Addr, TokenID: "1", Supply: 1},
	}
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	err := svc.RemoveFromBundles(context.Background(), &domain.SaleEvent{
		ContractAddress: testERC1155Addr,
		TokenID:         "7",
		Quantity:        2,
		Seller:          testOwner,
	})
	require.NoError(t, err)

	// b1's item hit zero and was pruned; b2's items survive
	assert.Empty(t, store.items["b1"])
	require.Len(t, store.items["b2"], 2)
	assert.Equal(t, int64(3), store.items["b2"][0].Supply)
}

func TestRemoveFromBundlesAllowsNegativeSupply(t *testing.T) {
	store := newFakeStore()
	store.bundles["b1"] = &schema.Bundle{ID: "b1", Owner: testOwner}
	store.items["b1"] = []schema.BundleItem{
		{BundleID: "b1", ContractAddress: testERC1155Addr, TokenID: "7", Supply: 1},
	}
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	err := svc.RemoveFromBundles(context.Background(), &domain.SaleEvent{
		ContractAddress: testERC1155Addr,
		TokenID:         "7",
		Quantity:        3,
		Seller:          testOwner,
	})
	require.NoError(t, err)

	// An over-decrement goes negative and is not pruned
	require.Len(t, store.items["b1"], 1)
	assert.Equal(t, int64(-2), store.items["b1"][0].Supply)
}

func TestGetBundleNotFound(t *testing.T) {
	svc := newTestService(Config{}, newFakeStore(), &fakeClock{now: time.Now()})

	_, _, err := svc.GetBundle(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

func TestIncrementViewsIsMonotonic(t *testing.T) {
	store := newFakeStore()
	store.bundles["b1"] = &schema.Bundle{ID: "b1"}
	svc := newTestService(Config{}, store, &fakeClock{now: time.Now()})

	for want := int64(1); want <= 3; want++ {
		viewed, err := svc.IncrementViews(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, want, viewed)
	}

	_, err := svc.IncrementViews(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}
