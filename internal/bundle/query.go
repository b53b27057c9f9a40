package bundle

import (
	"context"
	"sort"
	"time"

	"github.com/openmarket/marketplace-api/internal/domain"
	"github.com/openmarket/marketplace-api/internal/store/schema"
)

// PageSize is the fixed number of bundles per page
const PageSize = 18

// Sentinel bucket values for sale-end ordering. Bundles whose sale has
// already ended sort after every live sale, and bundles with no sale end
// sort after those.
const (
	saleEndedSentinel = 1623424669
	noSaleEndSentinel = 1623424670
)

// ListQuery filters and orders a bundle listing
type ListQuery struct {
	// Category narrows results to bundles touching collections tagged with
	// this category. Empty means no category filter.
	Category string
	// Collections narrows results to bundles touching these ERC-721
	// collection addresses. Empty means no collection filter.
	Collections []string
	// SortKey orders the page. Zero value falls back to creation time.
	SortKey domain.SortKey
	// Step is the zero-based page index
	Step int
}

// ListBundles retrieves a filtered, sorted page of bundles
func (s *service) ListBundles(ctx context.Context, query ListQuery) ([]schema.Bundle, error) {
	contracts := domain.NormalizeAddresses(query.Collections)
	filtered := len(contracts) > 0

	if query.Category != "" {
		tagged, err := s.store.GetCollectionAddressesByCategory(ctx, query.Category)
		if err != nil {
			return nil, err
		}
		if filtered {
			contracts = intersect(contracts, tagged)
		} else {
			contracts = tagged
		}
		filtered = true
		// A filter that matches no collections can match nothing; skip the
		// store round trip entirely
		if len(contracts) == 0 {
			return []schema.Bundle{}, nil
		}
	}

	// nil means unfiltered; an empty non-nil slice means the filter matched
	// no bundles
	var bundleIDs []string
	if filtered {
		ids, err := s.store.GetBundleIDsByContracts(ctx, contracts)
		if err != nil {
			return nil, err
		}
		if ids == nil {
			ids = []string{}
		}
		bundleIDs = ids
	}

	bundles, err := s.store.ListBundles(ctx, bundleIDs)
	if err != nil {
		return nil, err
	}

	s.sortBundles(bundles, query.SortKey)
	return paginate(bundles, query.Step), nil
}

// sortBundles orders bundles in place according to key. Missing timestamps
// sort as the Unix epoch and missing numeric fields sort as zero, so
// unpopulated bundles sink to the bottom of every descending order.
func (s *service) sortBundles(bundles []schema.Bundle, key domain.SortKey) {
	var less func(a, b *schema.Bundle) bool

	switch key {
	case domain.SortByPrice:
		less = func(a, b *schema.Bundle) bool { return a.Price > b.Price }
	case domain.SortByLastSalePrice:
		less = func(a, b *schema.Bundle) bool { return a.LastSalePrice > b.LastSalePrice }
	case domain.SortByViewed:
		less = func(a, b *schema.Bundle) bool { return a.Viewed > b.Viewed }
	case domain.SortByListedAt:
		less = func(a, b *schema.Bundle) bool { return a.ListedAt.After(b.ListedAt) }
	case domain.SortBySoldAt:
		less = func(a, b *schema.Bundle) bool {
			return timeOrEpoch(a.SoldAt).After(timeOrEpoch(b.SoldAt))
		}
	case domain.SortBySaleEndsAt:
		now := s.clock.Now()
		less = func(a, b *schema.Bundle) bool {
			return saleEndRank(a.SaleEndsAt, now) < saleEndRank(b.SaleEndsAt, now)
		}
	default:
		less = func(a, b *schema.Bundle) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(bundles, func(i, j int) bool {
		return less(&bundles[i], &bundles[j])
	})
}

// saleEndRank maps a sale end time to an ascending sort rank: live sales by
// seconds remaining, then ended sales, then bundles with no sale end
func saleEndRank(saleEndsAt *time.Time, now time.Time) int64 {
	if saleEndsAt == nil {
		return noSaleEndSentinel
	}
	remaining := int64(saleEndsAt.Sub(now).Seconds())
	if remaining <= 0 {
		return saleEndedSentinel
	}
	return remaining
}

func timeOrEpoch(t *time.Time) time.Time {
	if t == nil {
		return time.Unix(0, 0).UTC()
	}
	return *t
}

func paginate(bundles []schema.Bundle, step int) []schema.Bundle {
	if step < 0 {
		step = 0
	}
	start := step * PageSize
	if start >= len(bundles) {
		return []schema.Bundle{}
	}
	end := start + PageSize
	if end > len(bundles) {
		end = len(bundles)
	}
	return bundles[start:end]
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
