package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pkgcache "github.com/wyfcoding/catalogpricing/pkg/cache"
	"github.com/wyfcoding/catalogpricing/pkg/config"
	"github.com/wyfcoding/catalogpricing/pkg/metrics"
	"github.com/wyfcoding/pkg/logging"
)

// SnapshotCache serves catalog snapshots from a short-lived primary tier,
// refreshes them through the guard, and falls back to a long-lived secondary
// tier when the refresh is denied or fails.
type SnapshotCache struct {
	store        pkgcache.Store
	guard        *Guard
	fetcher      domain.CatalogFetcher
	primaryTTL   time.Duration
	secondaryTTL time.Duration
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewSnapshotCache wires the tiers; m may be nil.
func NewSnapshotCache(store pkgcache.Store, guard *Guard, fetcher domain.CatalogFetcher, cfg config.CacheConfig, m *metrics.Metrics) *SnapshotCache {
	return &SnapshotCache{
		store:        store,
		guard:        guard,
		fetcher:      fetcher,
		primaryTTL:   cfg.PrimaryTTL(),
		secondaryTTL: cfg.SecondaryTTL(),
		metrics:      m,
		now:          time.Now,
	}
}

// GetSnapshot returns the snapshot for currency or domain.ErrCacheMiss.
func (c *SnapshotCache) GetSnapshot(ctx context.Context, currency string) (*domain.CatalogSnapshot, error) {
	if primary := c.read(ctx, domain.PrimaryKey(currency)); primary.IsFresh(c.now(), c.primaryTTL) {
		c.metrics.RecordCacheLookup(currency, metrics.OutcomePrimaryHit)
		return primary, nil
	}

	var fresh *domain.CatalogSnapshot
	acquired, err := c.guard.Do(ctx, currency, func(ctx context.Context) error {
		snap, err := c.fetcher.FetchCatalog(ctx, currency)
		if err != nil {
			return err
		}
		c.write(ctx, currency, snap)
		fresh = snap
		return nil
	})
	switch {
	case fresh != nil:
		c.metrics.RecordCacheLookup(currency, metrics.OutcomeRefreshed)
		return fresh, nil
	case !acquired:
		c.metrics.RecordGuardDenied(currency)
		logging.Debug(ctx, "catalog refresh in progress elsewhere, using secondary", "currency", currency)
	case err != nil:
		logging.Warn(ctx, "catalog refresh failed, using secondary", "currency", currency, "error", err)
	}

	if secondary := c.read(ctx, domain.SecondaryKey(currency)); secondary != nil {
		c.metrics.RecordCacheLookup(currency, metrics.OutcomeSecondaryHit)
		return secondary, nil
	}
	c.metrics.RecordCacheLookup(currency, metrics.OutcomeMiss)
	return nil, domain.ErrCacheMiss
}

// read returns nil for a missing or undecodable entry.
func (c *SnapshotCache) read(ctx context.Context, key string) *domain.CatalogSnapshot {
	raw, err := c.store.Get(ctx, key)
	if err != nil || raw == "" {
		return nil
	}
	var snap domain.CatalogSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		logging.Warn(ctx, "discarding undecodable snapshot", "key", key, "error", err)
		return nil
	}
	if snap.Records == nil {
		return nil
	}
	return &snap
}

// write stores snap in both tiers. A failed write is logged; the caller still
// gets the fetched snapshot.
func (c *SnapshotCache) write(ctx context.Context, currency string, snap *domain.CatalogSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logging.Error(ctx, "failed to encode snapshot", "currency", currency, "error", err)
		return
	}
	errs := errors.Join(
		c.store.Set(ctx, domain.PrimaryKey(currency), string(data), c.primaryTTL),
		c.store.Set(ctx, domain.SecondaryKey(currency), string(data), c.secondaryTTL),
	)
	if errs != nil {
		logging.Warn(ctx, "failed to store snapshot", "currency", currency, "error", errs)
	}
}
