package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pkgcache "github.com/wyfcoding/catalogpricing/pkg/cache"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 days, 0 hours, 0 minutes and 0 seconds"},
		{90 * time.Second, "0 days, 0 hours, 1 minutes and 30 seconds"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "1 days, 2 hours, 3 minutes and 4 seconds"},
		{-time.Second, "0 days, 0 hours, 0 minutes and 0 seconds"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.in); got != tt.want {
			t.Errorf("FormatAge(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClearCacheReportsBeforeAndAfter(t *testing.T) {
	ctx := context.Background()
	store, err := pkgcache.NewMemory(16)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	snap := testSnapshot()
	snap.FetchedAt = now.Add(-75 * time.Second)
	data, _ := json.Marshal(snap)
	_ = store.Set(ctx, domain.PrimaryKey("USD"), string(data), time.Hour)
	_ = store.Set(ctx, domain.GuardKey("USD"), "1", time.Hour)

	svc := NewCacheAdminService(store, nil)
	svc.now = func() time.Time { return now }

	reports, err := svc.ClearCache(ctx, []string{
		domain.PrimaryKey("USD"),
		domain.GuardKey("USD"),
		domain.SecondaryKey("USD"),
	})
	if err != nil {
		t.Fatal(err)
	}

	primary := reports[domain.PrimaryKey("USD")]
	if primary == nil || !primary.Cleared || primary.After != nil {
		t.Fatalf("primary report = %+v", primary)
	}
	if primary.Age == nil || *primary.Age != "0 days, 0 hours, 1 minutes and 15 seconds" {
		t.Fatalf("age = %v", primary.Age)
	}
	if before, ok := primary.Before.(*domain.CatalogSnapshot); !ok || before.Len() != 2 {
		t.Fatalf("before = %#v", primary.Before)
	}

	guard := reports[domain.GuardKey("USD")]
	if !guard.Cleared || guard.Before != "1" || guard.Age != nil {
		t.Fatalf("guard report = %+v", guard)
	}

	secondary := reports[domain.SecondaryKey("USD")]
	if secondary.Cleared || secondary.Before != nil || secondary.Age != nil {
		t.Fatalf("secondary report = %+v", secondary)
	}

	if v, _ := store.Get(ctx, domain.PrimaryKey("USD")); v != "" {
		t.Fatal("primary still present")
	}
}

func TestClearCacheRejectsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := pkgcache.NewMemory(16)
	_ = store.Set(ctx, domain.PrimaryKey("USD"), "{}", time.Hour)

	_, err := NewCacheAdminService(store, nil).ClearCache(ctx, []string{domain.PrimaryKey("USD"), "ratelimit:admin:1.2.3.4"})
	if !errors.Is(err, ErrUnknownCacheKey) {
		t.Fatalf("err = %v", err)
	}
	if v, _ := store.Get(ctx, domain.PrimaryKey("USD")); v == "" {
		t.Fatal("nothing should be deleted when a key is rejected")
	}
}

func TestClearCacheLogsOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := pkgcache.NewMemory(16)
	_ = store.Set(ctx, domain.GuardKey("EUR"), "1", time.Hour)

	var buf bytes.Buffer
	svc := NewCacheAdminService(store, nil)
	svc.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	if _, err := svc.ClearCache(ctx, []string{domain.GuardKey("EUR")}); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "catalog cache cleared"); n != 1 {
		t.Fatalf("clear logged %d times, want 1:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), `"cleared":1`) {
		t.Errorf("log line missing cleared count: %s", buf.String())
	}
}
