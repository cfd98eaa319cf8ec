package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
)

type staticSource struct {
	snap *domain.CatalogSnapshot
	err  error
	last string
}

func (s *staticSource) GetSnapshot(_ context.Context, currency string) (*domain.CatalogSnapshot, error) {
	s.last = currency
	return s.snap, s.err
}

func testSnapshot() *domain.CatalogSnapshot {
	return domain.NewSnapshot("USD", []*domain.CatalogRecord{
		{SKU: "NFS-GOLD", Ask: decimal.RequireFromString("2000")},
		{SKU: "WC-SILVER", Ask: decimal.RequireFromString("30")},
	}, time.Now())
}

func TestResolveFirstCandidateWins(t *testing.T) {
	svc := NewLookupService(&staticSource{snap: testSnapshot()})

	r, err := svc.Resolve(context.Background(), "USD", "NFS-GOLD", "WC-SILVER")
	if err != nil {
		t.Fatal(err)
	}
	if r.SKU != "NFS-GOLD" {
		t.Fatalf("sku = %s, want the catalog override", r.SKU)
	}
}

func TestResolveFallsBackToNativeSKU(t *testing.T) {
	src := &staticSource{snap: testSnapshot()}
	svc := NewLookupService(src)

	r, err := svc.Resolve(context.Background(), "EUR", "", "WC-SILVER")
	if err != nil {
		t.Fatal(err)
	}
	if r.SKU != "WC-SILVER" {
		t.Fatalf("sku = %s", r.SKU)
	}
	if src.last != "EUR" {
		t.Fatalf("currency passed = %s", src.last)
	}
}

func TestResolveNotFound(t *testing.T) {
	svc := NewLookupService(&staticSource{snap: testSnapshot()})

	if _, err := svc.Resolve(context.Background(), "USD", "NOPE"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "USD"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("no candidates: err = %v", err)
	}
}

func TestResolveCacheFailureIsNotFound(t *testing.T) {
	svc := NewLookupService(&staticSource{err: domain.ErrCacheMiss})

	if _, err := svc.Resolve(context.Background(), "USD", "NFS-GOLD"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestResolveEach(t *testing.T) {
	svc := NewLookupService(&staticSource{snap: testSnapshot()})

	got, err := svc.ResolveEach(context.Background(), "USD", []string{"NFS-GOLD", "MISSING", "WC-SILVER"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got["NFS-GOLD"] == nil || got["WC-SILVER"] == nil {
		t.Fatalf("got = %v", got)
	}
}
