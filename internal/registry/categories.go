package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmarket/marketplace-api/internal/adapter"
	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/logger"
	"github.com/openmarket/marketplace-api/internal/store"
)

// CategoryRegistry resolves a contract address to its token standard.
// The category table is reference data owned by an upstream ingestion
// process; the registry serves it through an in-memory snapshot that is
// refreshed after a configurable TTL instead of hitting the database on
// every classification.
//
//go:generate mockgen -source=categories.go -destination=../mocks/category_registry.go -package=mocks -mock_names=CategoryRegistry=MockCategoryRegistry
type CategoryRegistry interface {
	// Classify returns the token standard of a contract address
	Classify(ctx context.Context, contractAddress string) (domain.TokenStandard, error)

	// Refresh reloads the snapshot from the store immediately
	Refresh(ctx context.Context) error
}

type categoryRegistry struct {
	store store.Store
	clock adapter.Clock
	ttl   time.Duration

	mu        sync.RWMutex
	standards map[string]domain.TokenStandard
	loadedAt  time.Time
}

// NewCategoryRegistry creates a registry backed by the store with the given
// snapshot TTL
func NewCategoryRegistry(s store.Store, clock adapter.Clock, ttl time.Duration) CategoryRegistry {
	return &categoryRegistry{
		store: s,
		clock: clock,
		ttl:   ttl,
	}
}

// Classify returns the token standard of a contract address
func (r *categoryRegistry) Classify(ctx context.Context, contractAddress string) (domain.TokenStandard, error) {
	address := domain.NormalizeAddress(contractAddress)

	r.mu.RLock()
	fresh := r.standards != nil && r.clock.Since(r.loadedAt) < r.ttl
	standard, ok := r.standards[address]
	r.mu.RUnlock()

	if fresh {
		if !ok {
			return "", domain.ErrUnknownContract
		}
		return standard, nil
	}

	if err := r.Refresh(ctx); err != nil {
		return "", err
	}

	r.mu.RLock()
	standard, ok = r.standards[address]
	r.mu.RUnlock()
	if !ok {
		return "", domain.ErrUnknownContract
	}
	return standard, nil
}

// Refresh reloads the snapshot from the store immediately
func (r *categoryRegistry) Refresh(ctx context.Context) error {
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh category registry: %w", err)
	}

	standards := make(map[string]domain.TokenStandard, len(categories))
	for _, c := range categories {
		standards[domain.NormalizeAddress(c.MinterAddress)] = c.Standard
	}

	r.mu.Lock()
	r.standards = standards
	r.loadedAt = r.clock.Now()
	r.mu.Unlock()

	logger.DebugCtx(ctx, "refreshed category registry", zap.Int("entries", len(standards)))
	return nil
}
