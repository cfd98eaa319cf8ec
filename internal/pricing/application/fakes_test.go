package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/catalogpricing/pkg/config"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu       sync.Mutex
	products map[uint]*domain.Product
	updates  []uint
	listErr  error
}

func newFakeRepo(products ...*domain.Product) *fakeRepo {
	r := &fakeRepo{products: make(map[uint]*domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeRepo) ListByStatus(_ context.Context, statuses []string, offset, limit int) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	allowed := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var all []*domain.Product
	for _, p := range r.products {
		if p.Type != domain.ProductVariation && allowed[p.Status] {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeRepo) ListVariations(_ context.Context, parentID uint) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		if p.Type == domain.ProductVariation && p.ParentID == parentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uint) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeRepo) UpdatePrices(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, p.ID)
	r.products[p.ID] = p
	return nil
}

func (r *fakeRepo) UpdateCatalogSKU(_ context.Context, id uint, sku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.CatalogSKU = sku
	return nil
}

// fakeResolver answers from a fixed record set; unavailable simulates a cache miss.
type fakeResolver struct {
	records     map[string]*catalog.CatalogRecord
	unavailable bool
	calls       int
}

func newFakeResolver(records ...*catalog.CatalogRecord) *fakeResolver {
	snap := catalog.NewSnapshot("USD", records, testNow)
	return &fakeResolver{records: snap.Records}
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, candidates ...string) (*catalog.CatalogRecord, error) {
	f.calls++
	if f.unavailable {
		return nil, catalog.ErrRecordNotFound
	}
	for _, c := range candidates {
		if r, ok := f.records[c]; ok {
			return r, nil
		}
	}
	return nil, catalog.ErrRecordNotFound
}

func (f *fakeResolver) ResolveEach(_ context.Context, _ string, skus []string) (map[string]*catalog.CatalogRecord, error) {
	f.calls++
	if f.unavailable {
		return nil, catalog.ErrRecordNotFound
	}
	out := make(map[string]*catalog.CatalogRecord)
	for _, s := range skus {
		if r, ok := f.records[s]; ok {
			out[s] = r
		}
	}
	return out, nil
}

type fakePublisher struct {
	events []domain.PriceReindexedEvent
}

func (f *fakePublisher) PublishPriceReindexed(_ context.Context, e domain.PriceReindexedEvent) error {
	f.events = append(f.events, e)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// tieredRecord ask 10, tiers 5@9 and 10@8, bid 9.555.
func tieredRecord(sku string) *catalog.CatalogRecord {
	return &catalog.CatalogRecord{
		SKU: sku,
		Ask: dec("10"),
		Bid: dec("9.555"),
		RetailTiers: []catalog.RetailTier{
			{Quantity: 10, Ask: dec("8")},
			{Quantity: 5, Ask: dec("9")},
		},
	}
}

func flatRecord(sku, ask string) *catalog.CatalogRecord {
	return &catalog.CatalogRecord{SKU: sku, Ask: dec(ask), Bid: dec(ask)}
}

func testSettings() Settings {
	surcharge, _ := domain.ParseSurcharge("3")
	return Settings{
		Currency: "USD",
		Labels: config.PricingConfig{
			LowPriceLabel:     "As low as",
			ShowBuyPrice:      true,
			BuyPriceLabel:     "We buy at",
			ShowTieredPricing: true,
			CheckLabel:        "Check",
			ShowCardPrice:     true,
			CardLabel:         "Card",
			FeeLabel:          "Payment Processing Fee",
		},
		Surcharge: surcharge,
		Exempt:    domain.NewFeeExemption([]string{"cod", "bacs"}),
	}
}
