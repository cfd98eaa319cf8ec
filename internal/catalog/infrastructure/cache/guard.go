// Package cache implements the two-tier snapshot cache and the refresh guard
// that keeps concurrent workers from stampeding the remote catalog.
package cache

import (
	"context"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pkgcache "github.com/wyfcoding/catalogpricing/pkg/cache"
	"github.com/wyfcoding/pkg/logging"
)

// Guard is a per-currency marker with a TTL equal to the remote timeout.
// Acquisition is an atomic set-if-absent, so at most one caller holds it; a crashed
// holder is released by expiry.
type Guard struct {
	store pkgcache.Store
	ttl   time.Duration
}

func NewGuard(store pkgcache.Store, ttl time.Duration) *Guard {
	return &Guard{store: store, ttl: ttl}
}

// TryAcquire sets the marker for currency and reports whether this caller now holds it.
// A store error counts as denied.
func (g *Guard) TryAcquire(ctx context.Context, currency string) bool {
	ok, err := g.store.SetNX(ctx, domain.GuardKey(currency), "1", g.ttl)
	if err != nil {
		logging.Warn(ctx, "refresh guard unavailable", "currency", currency, "error", err)
		return false
	}
	return ok
}

// Release removes the marker. It runs even when ctx is already cancelled.
func (g *Guard) Release(ctx context.Context, currency string) {
	if _, err := g.store.Delete(context.WithoutCancel(ctx), domain.GuardKey(currency)); err != nil {
		logging.Warn(ctx, "refresh guard release failed", "currency", currency, "error", err)
	}
}

// Do runs fn while holding the guard for currency. When the guard is held
// elsewhere fn is not called and acquired is false. The marker is released on
// every exit path, including a panic in fn.
func (g *Guard) Do(ctx context.Context, currency string, fn func(ctx context.Context) error) (acquired bool, err error) {
	if !g.TryAcquire(ctx, currency) {
		return false, nil
	}
	defer g.Release(ctx, currency)
	return true, fn(ctx)
}
