package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pkgcache "github.com/wyfcoding/catalogpricing/pkg/cache"
)

func TestGuardSingleWinner(t *testing.T) {
	store, err := pkgcache.NewMemory(16)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGuard(store, 2*time.Second)

	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if g.TryAcquire(context.Background(), "USD") {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("winners = %d, want exactly 1", got)
	}
}

func TestGuardIsPerCurrency(t *testing.T) {
	g := NewGuard(newStuckStore(), time.Second)
	ctx := context.Background()

	if !g.TryAcquire(ctx, "USD") || !g.TryAcquire(ctx, "EUR") {
		t.Fatal("different currencies must not block each other")
	}
	if g.TryAcquire(ctx, "USD") {
		t.Fatal("USD acquired twice")
	}
	g.Release(ctx, "USD")
	if !g.TryAcquire(ctx, "USD") {
		t.Fatal("USD should be free after release")
	}
}

func TestGuardDoReleasesOnError(t *testing.T) {
	store := newStuckStore()
	g := NewGuard(store, time.Second)

	boom := errors.New("boom")
	acquired, err := g.Do(context.Background(), "USD", func(context.Context) error { return boom })
	if !acquired || !errors.Is(err, boom) {
		t.Fatalf("acquired=%v err=%v", acquired, err)
	}
	if store.has(domain.GuardKey("USD")) {
		t.Fatal("marker left behind after error")
	}
}

func TestGuardDoReleasesOnPanic(t *testing.T) {
	store := newStuckStore()
	g := NewGuard(store, time.Second)

	func() {
		defer func() { _ = recover() }()
		_, _ = g.Do(context.Background(), "USD", func(context.Context) error { panic("fetch exploded") })
	}()

	if store.has(domain.GuardKey("USD")) {
		t.Fatal("marker left behind after panic")
	}
}

func TestGuardDoReleasesAfterCancel(t *testing.T) {
	store := newStuckStore()
	g := NewGuard(store, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	_, _ = g.Do(ctx, "USD", func(context.Context) error {
		cancel()
		return ctx.Err()
	})
	if store.has(domain.GuardKey("USD")) {
		t.Fatal("marker left behind after cancellation")
	}
}

func TestGuardDoDenied(t *testing.T) {
	g := NewGuard(newStuckStore(), time.Second)
	ctx := context.Background()
	g.TryAcquire(ctx, "USD")

	called := false
	acquired, err := g.Do(ctx, "USD", func(context.Context) error {
		called = true
		return nil
	})
	if acquired || err != nil || called {
		t.Fatalf("acquired=%v err=%v called=%v", acquired, err, called)
	}
}
