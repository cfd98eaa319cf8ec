// Package domain holds the catalog pricing model: records pulled from the remote
// pricing catalog and the per-currency snapshots cached around them.
package domain

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RetailTier a volume discount: buying at least Quantity units costs Ask each.
type RetailTier struct {
	Quantity int             `json:"quantity"`
	Ask      decimal.Decimal `json:"ask"`
}

// CatalogRecord pricing data for one SKU. Immutable once cached.
type CatalogRecord struct {
	SKU         string          `json:"sku"`
	Ask         decimal.Decimal `json:"ask"`
	Bid         decimal.Decimal `json:"bid"`
	RetailTiers []RetailTier    `json:"retail_tiers,omitempty"`
}

// SortedTiers returns a copy of the tiers ordered by ascending quantity.
func (r *CatalogRecord) SortedTiers() []RetailTier {
	if r == nil || len(r.RetailTiers) == 0 {
		return nil
	}
	tiers := make([]RetailTier, len(r.RetailTiers))
	copy(tiers, r.RetailTiers)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].Quantity < tiers[j].Quantity })
	return tiers
}

// CatalogSnapshot the full catalog for one currency at FetchedAt.
// Freshness is judged from FetchedAt, never from the store's own expiry.
type CatalogSnapshot struct {
	Currency  string                    `json:"currency"`
	Records   map[string]*CatalogRecord `json:"records"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// NewSnapshot builds a snapshot keyed by SKU. Records with an empty SKU are dropped;
// for duplicate SKUs the last one wins.
func NewSnapshot(currency string, records []*CatalogRecord, fetchedAt time.Time) *CatalogSnapshot {
	s := &CatalogSnapshot{
		Currency:  currency,
		Records:   make(map[string]*CatalogRecord, len(records)),
		FetchedAt: fetchedAt,
	}
	for _, r := range records {
		if r == nil || r.SKU == "" {
			continue
		}
		r.RetailTiers = r.SortedTiers()
		s.Records[r.SKU] = r
	}
	return s
}

// Lookup returns the record for sku.
func (s *CatalogSnapshot) Lookup(sku string) (*CatalogRecord, bool) {
	if s == nil || sku == "" {
		return nil, false
	}
	r, ok := s.Records[sku]
	return r, ok
}

// Len number of records.
func (s *CatalogSnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// IsFresh reports now - FetchedAt < ttl.
func (s *CatalogSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	if s == nil || s.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(s.FetchedAt) < ttl
}

// CatalogFetcher retrieves a complete snapshot from the remote catalog.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, currency string) (*CatalogSnapshot, error)
}

// SnapshotSource serves snapshots, fetching or falling back as needed.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, currency string) (*CatalogSnapshot, error)
}
