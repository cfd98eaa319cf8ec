// Package application exposes catalog lookups and cache administration.
package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/pkg/logging"
)

// LookupService resolves host SKUs against the current catalog snapshot.
type LookupService struct {
	source domain.SnapshotSource
}

func NewLookupService(source domain.SnapshotSource) *LookupService {
	return &LookupService{source: source}
}

// Resolve returns the record for the first candidate SKU present in the
// snapshot. Candidates are tried in order, typically [catalogSKU, nativeSKU];
// empty candidates are skipped. An unavailable snapshot is reported as
// domain.ErrRecordNotFound so callers fall back to native prices.
func (s *LookupService) Resolve(ctx context.Context, currency string, candidates ...string) (*domain.CatalogRecord, error) {
	snap, err := s.snapshot(ctx, currency)
	if err != nil {
		return nil, err
	}
	for _, sku := range candidates {
		if r, ok := snap.Lookup(sku); ok {
			return r, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// ResolveEach looks up every sku against one snapshot. Missing SKUs are absent from the result.
func (s *LookupService) ResolveEach(ctx context.Context, currency string, skus []string) (map[string]*domain.CatalogRecord, error) {
	snap, err := s.snapshot(ctx, currency)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.CatalogRecord, len(skus))
	for _, sku := range skus {
		if r, ok := snap.Lookup(sku); ok {
			out[sku] = r
		}
	}
	return out, nil
}

func (s *LookupService) snapshot(ctx context.Context, currency string) (*domain.CatalogSnapshot, error) {
	snap, err := s.source.GetSnapshot(ctx, currency)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logging.Warn(ctx, "catalog snapshot lookup failed", "currency", currency, "error", err)
		}
		return nil, domain.ErrRecordNotFound
	}
	return snap, nil
}
