package bundle

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/alitto/pond/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/registry"
	"github.com/openmarket/marketplace-api/internal/store"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

// Config holds bundle service configuration
type Config struct {
	// StrictItems switches bundle creation from the legacy best-effort mode
	// (bundle and valid items persist even when some items fail) to
	// all-or-nothing (any invalid item rolls the whole bundle back)
	StrictItems bool
	// Workers bounds the per-item fan-out during bundle creation
	Workers int
}

// ItemFailure describes one rejected bundle item
type ItemFailure struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Reason          string `json:"reason"`
}

func (f ItemFailure) String() string {
	return fmt.Sprintf("nft of %s' %s is invalid to add to the bundle", f.ContractAddress, f.TokenID)
}

// Service is the bundle-membership workflow: assembling bundles from
// validated holdings, shrinking them on sales, and serving reads
//
//go:generate mockgen -source=service.go -destination=../mocks/bundle_service.go -package=mocks -mock_names=Service=MockService
type Service interface {
	// CreateBundle creates a bundle owned by owner from the requested items.
	// It returns the bundle ID and any per-item failures. Under the legacy
	// policy the bundle and its valid items persist even when failures are
	// returned; under the strict policy failures mean nothing was persisted
	// and the returned ID is empty.
	CreateBundle(ctx context.Context, owner, name string, price float64, items []domain.BundleItemRequest) (string, []ItemFailure, error)

	// ValidateItem reports whether owner holds the requested supply of a
	// token under the given standard. Pure read; not transactional with any
	// subsequent write.
	ValidateItem(ctx context.Context, owner, contractAddress, tokenID string, supply int64, standard domain.TokenStandard) (bool, error)

	// RemoveFromBundles applies a sale: every bundle owned by the seller has
	// its matching membership row decremented, then zero-supply rows are
	// pruned across the whole table
	RemoveFromBundles(ctx context.Context, event *domain.SaleEvent) error

	// GetBundle retrieves a bundle and its membership rows
	GetBundle(ctx context.Context, bundleID string) (*schema.Bundle, []schema.BundleItem, error)

	// ListBundles retrieves a filtered, sorted page of bundles
	ListBundles(ctx context.Context, query ListQuery) ([]schema.Bundle, error)

	// IncrementViews atomically increments a bundle's view counter
	IncrementViews(ctx context.Context, bundleID string) (int64, error)
}

type service struct {
	cfg        Config
	store      store.Store
	categories registry.CategoryRegistry
	clock      adapter.Clock
	pool       pond.ResultPool[itemOutcome]
}

// itemOutcome is the result of one per-item fan-out task
type itemOutcome struct {
	item    *schema.BundleItem
	failure *ItemFailure
}

// NewService creates a bundle service
func NewService(cfg Config, s store.Store, categories registry.CategoryRegistry, clock adapter.Clock) Service {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &service{
		cfg:        cfg,
		store:      s,
		categories: categories,
		clock:      clock,
		pool:       pond.NewResultPool[itemOutcome](workers),
	}
}

// CreateBundle creates a bundle owned by owner from the requested items
func (s *service) CreateBundle(ctx context.Context, owner, name string, price float64, items []domain.BundleItemRequest) (string, []ItemFailure, error) {
	if len(items) == 0 {
		return "", nil, domain.ErrEmptyBundle
	}
	if price <= 0 {
		return "", nil, domain.ErrInvalidPrice
	}

	bundleID := ulid.MustNew(ulid.Timestamp(s.clock.Now()), rand.Reader).String()
	b := &schema.Bundle{
		ID:       bundleID,
		Name:     name,
		Price:    price,
		Owner:    owner,
		Creator:  owner,
		ListedAt: domain.UnlistedAt,
	}
	if err := s.store.CreateBundle(ctx, b); err != nil {
		return "", nil, err
	}

	// Fan out one task per item. Tasks run concurrently with no ordering
	// guarantee and no mutual exclusion; validation and the membership write
	// are not transactional with each other.
	tasks := make([]pond.Result[itemOutcome], 0, len(items))
	for _, item := range items {
		tasks = append(tasks, s.pool.Submit(func() itemOutcome {
			return s.prepareItem(ctx, owner, bundleID, item)
		}))
	}

	// All tasks run to completion before a response is produced; the overall
	// outcome is decided once, from the collected results.
	var prepared []schema.BundleItem
	var failures []ItemFailure
	for _, task := range tasks {
		outcome, err := task.Wait()
		if err != nil {
			return "", failures, err
		}
		if outcome.failure != nil {
			failures = append(failures, *outcome.failure)
			continue
		}
		prepared = append(prepared, *outcome.item)
	}

	if s.cfg.StrictItems && len(failures) > 0 {
		if err := s.store.DeleteBundle(ctx, bundleID); err != nil {
			return "", failures, err
		}
		return "", failures, nil
	}

	if err := s.store.CreateBundleItems(ctx, prepared); err != nil {
		return "", failures, err
	}

	logger.DebugCtx(ctx, "created bundle",
		zap.String("bundle_id", bundleID),
		zap.String("owner", owner),
		zap.Int("items", len(prepared)),
		zap.Int("rejected", len(failures)),
	)
	return bundleID, failures, nil
}

// prepareItem classifies, validates and resolves one requested item into a
// membership row, or into a failure
func (s *service) prepareItem(ctx context.Context, owner, bundleID string, item domain.BundleItemRequest) itemOutcome {
	fail := func(reason string) itemOutcome {
		return itemOutcome{failure: &ItemFailure{
			ContractAddress: item.ContractAddress,
			TokenID:         item.TokenID,
			Reason:          reason,
		}}
	}

	standard, err := s.categories.Classify(ctx, item.ContractAddress)
	if err != nil {
		return fail(err.Error())
	}

	valid, err := s.ValidateItem(ctx, owner, item.ContractAddress, item.TokenID, item.Supply, standard)
	if err != nil {
		return fail(err.Error())
	}
	if !valid {
		return fail(domain.ErrItemInvalid.Error())
	}

	// The token URI is cached by the upstream indexer keyed by
	// (contract, token), independent of who holds it
	token, err := s.store.GetNFTItem(ctx, item.ContractAddress, item.TokenID)
	if err != nil {
		return fail(err.Error())
	}
	if token == nil {
		return fail("token metadata not found")
	}

	return itemOutcome{item: &schema.BundleItem{
		BundleID:        bundleID,
		ContractAddress: item.ContractAddress,
		TokenID:         item.TokenID,
		Supply:          item.Supply,
		TokenType:       standard,
		TokenURI:        token.TokenURI,
	}}
}

// ValidateItem reports whether owner holds the requested supply of a token
// under the given standard
func (s *service) ValidateItem(ctx context.Context, owner, contractAddress, tokenID string, supply int64, standard domain.TokenStandard) (bool, error) {
	switch standard {
	case domain.StandardERC721:
		token, err := s.store.GetNFTItemByOwner(ctx, owner, contractAddress, tokenID)
		if err != nil {
			return false, err
		}
		return token != nil, nil

	case domain.StandardERC1155:
		holding, err := s.store.GetERC1155Holding(ctx, contractAddress, tokenID, owner)
		if err != nil {
			return false, err
		}
		return holding != nil && holding.SupplyPerHolder >= supply, nil

	default:
		return false, nil
	}
}

// RemoveFromBundles applies a sale to every bundle owned by the seller
func (s *service) RemoveFromBundles(ctx context.Context, event *domain.SaleEvent) error {
	bundles, err := s.store.GetBundlesByOwner(ctx, event.Seller)
	if err != nil {
		return err
	}

	for _, b := range bundles {
		if err := s.store.DecrementBundleItemSupply(ctx, b.ID, event.ContractAddress, event.TokenID, event.Quantity); err != nil {
			return err
		}
	}

	// Prune is deliberately global, not scoped to the seller's bundles,
	// matching the tracker contract this service replaces
	pruned, err := s.store.DeleteZeroSupplyBundleItems(ctx)
	if err != nil {
		return err
	}
	if pruned > 0 {
		logger.DebugCtx(ctx, "pruned exhausted bundle items",
			zap.Int64("rows", pruned),
			zap.String("seller", event.Seller),
		)
	}
	return nil
}

// GetBundle retrieves a bundle and its membership rows
func (s *service) GetBundle(ctx context.Context, bundleID string) (*schema.Bundle, []schema.BundleItem, error) {
	b, err := s.store.GetBundleByID(ctx, bundleID)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return nil, nil, domain.ErrBundleNotFound
	}

	items, err := s.store.GetBundleItems(ctx, bundleID)
	if err != nil {
		return nil, nil, err
	}
	return b, items, nil
}

// IncrementViews atomically increments a bundle's view counter
func (s *service) IncrementViews(ctx context.Context, bundleID string) (int64, error) {
	return s.store.IncrementBundleViews(ctx, bundleID)
}
