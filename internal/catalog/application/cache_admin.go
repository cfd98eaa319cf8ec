package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pkgcache "github.com/wyfcoding/catalogpricing/pkg/cache"
	"github.com/wyfcoding/catalogpricing/pkg/metrics"
	"github.com/wyfcoding/pkg/logging"
)

// ClearReport what happened to one key.
type ClearReport struct {
	Name   string `json:"name"`
	Before any    `json:"productsMap_before_clear"`
	// Age since the snapshot was fetched; nil when the entry held no snapshot.
	Age     *string `json:"age"`
	Cleared bool    `json:"cleared"`
	After   any     `json:"productsMap_after_clear"`
}

// CacheAdminService clears snapshot and guard entries on request.
type CacheAdminService struct {
	store   pkgcache.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewCacheAdminService(store pkgcache.Store, m *metrics.Metrics) *CacheAdminService {
	return &CacheAdminService{
		store:   store,
		metrics: m,
		logger:  logging.Default().With("module", "cache_admin"),
		now:     time.Now,
	}
}

// ClearCache deletes each key and reports its contents before and after.
// Keys outside the catalog namespace are rejected before anything is deleted.
func (s *CacheAdminService) ClearCache(ctx context.Context, keys []string) (map[string]*ClearReport, error) {
	for _, key := range keys {
		if !domain.IsCatalogKey(key) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCacheKey, key)
		}
	}

	start := time.Now()
	reports := make(map[string]*ClearReport, len(keys))
	var cleared int64
	for _, key := range keys {
		before, fetchedAt, err := s.inspect(ctx, key)
		if err != nil {
			return nil, err
		}
		n, err := s.store.Delete(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", key, err)
		}
		after, _, err := s.inspect(ctx, key)
		if err != nil {
			return nil, err
		}

		report := &ClearReport{Name: key, Before: before, Cleared: n > 0, After: after}
		if !fetchedAt.IsZero() {
			age := FormatAge(s.now().Sub(fetchedAt))
			report.Age = &age
		}
		reports[key] = report
		cleared += n
	}

	s.metrics.RecordKeysCleared(cleared)
	s.logger.InfoContext(ctx, "catalog cache cleared", "keys", keys, "cleared", cleared, "duration", time.Since(start))
	return reports, nil
}

// inspect returns the decoded snapshot under key (or its raw value when it is
// not a snapshot) and the snapshot's fetch time.
func (s *CacheAdminService) inspect(ctx context.Context, key string) (any, time.Time, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if raw == "" {
		return nil, time.Time{}, nil
	}
	var snap domain.CatalogSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err == nil && snap.Records != nil {
		return &snap, snap.FetchedAt, nil
	}
	return raw, time.Time{}, nil
}

// FormatAge renders d as "D days, H hours, M minutes and S seconds".
func FormatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	return fmt.Sprintf("%d days, %d hours, %d minutes and %d seconds", days, hours, minutes, seconds)
}
