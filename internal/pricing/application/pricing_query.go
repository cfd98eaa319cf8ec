package application

import (
	"context"
	"errors"

	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
)

// ErrNotVariable the product has no variations to span.
var ErrNotVariable = errors.New("product is not variable")

// PricingQueryService answers storefront price questions, falling back to the
// host's native price whenever the catalog cannot price a product.
type PricingQueryService struct {
	repo     domain.ProductRepository
	resolver CatalogResolver
	settings Settings
}

func NewPricingQueryService(repo domain.ProductRepository, resolver CatalogResolver, settings Settings) *PricingQueryService {
	return &PricingQueryService{repo: repo, resolver: resolver, settings: settings}
}

// GetUnitPrice returns the price per unit when buying qty of the product.
func (s *PricingQueryService) GetUnitPrice(ctx context.Context, productID uint, qty int) (*PriceQuoteDTO, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty < 1 {
		qty = 1
	}

	quote := &PriceQuoteDTO{
		ProductID: product.ID,
		SKU:       product.SKU,
		Currency:  s.settings.Currency,
		Quantity:  qty,
		UnitPrice: product.Price.StringFixed(2),
		Source:    SourceNative,
	}
	record, err := s.resolver.Resolve(ctx, s.settings.Currency, product.CandidateSKUs()...)
	if err != nil {
		if !errors.Is(err, catalog.ErrRecordNotFound) {
			return nil, err
		}
		return quote, nil
	}

	quote.MatchedSKU = record.SKU
	quote.UnitPrice = domain.ResolveUnitPrice(record, qty).StringFixed(2)
	quote.Source = SourceCatalog
	return quote, nil
}

// GetPriceRange spans the catalog asks of a variable product's variations.
func (s *PricingQueryService) GetPriceRange(ctx context.Context, productID uint) (*PriceRangeDTO, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsVariable() {
		return nil, ErrNotVariable
	}
	records, err := s.variationRecords(ctx, product)
	if err != nil {
		return nil, err
	}
	rng, ok := domain.NewPriceRange(records)
	if !ok {
		return nil, catalog.ErrRecordNotFound
	}
	return toRangeDTO(rng), nil
}

// GetProductDetails builds the catalog details shown on a product page.
func (s *PricingQueryService) GetProductDetails(ctx context.Context, productID uint) (*ProductDetailsDTO, error) {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := &ProductDetailsDTO{ProductID: product.ID, Currency: s.settings.Currency, Source: SourceNative}

	var records []*catalog.CatalogRecord
	if product.IsVariable() {
		records, err = s.variationRecords(ctx, product)
		if err != nil && !errors.Is(err, catalog.ErrRecordNotFound) {
			return nil, err
		}
		if rng, ok := domain.NewPriceRange(records); ok {
			out.Range = toRangeDTO(rng)
		}
	} else {
		record, err := s.resolver.Resolve(ctx, s.settings.Currency, product.CandidateSKUs()...)
		if err != nil && !errors.Is(err, catalog.ErrRecordNotFound) {
			return nil, err
		}
		if record != nil {
			records = append(records, record)
			if low, ok := domain.LowestPossiblePrice(record); ok {
				out.LowPrice = &LabeledPriceDTO{Label: s.settings.Labels.LowPriceLabel, Price: low.StringFixed(2)}
			}
		}
	}

	for _, r := range records {
		out.Records = append(out.Records, s.recordDetails(r))
	}
	if len(out.Records) > 0 {
		out.Source = SourceCatalog
	}
	return out, nil
}

func (s *PricingQueryService) recordDetails(r *catalog.CatalogRecord) RecordDetailsDTO {
	d := RecordDetailsDTO{SKU: r.SKU}
	labels := s.settings.Labels
	if labels.ShowBuyPrice {
		d.BuyPrice = &LabeledPriceDTO{Label: labels.BuyPriceLabel, Price: domain.Round2(r.Bid).StringFixed(2)}
	}
	if !labels.ShowTieredPricing {
		return d
	}
	rows := domain.TieredDisplayTable(r, s.settings.Surcharge)
	if len(rows) == 0 {
		return d
	}

	table := &TierTableDTO{CheckLabel: labels.CheckLabel, Rows: make([]TierRowDTO, 0, len(rows))}
	if s.settings.Surcharge != nil {
		table.CardLabel = labels.CardLabel
	}
	for _, row := range rows {
		dto := TierRowDTO{Quantity: row.Label(), Check: row.Ask.StringFixed(2)}
		if row.SurchargedAsk != nil {
			dto.Card = row.SurchargedAsk.StringFixed(2)
		}
		table.Rows = append(table.Rows, dto)
	}
	d.Tiers = table
	return d
}

// variationRecords returns catalog records for the variations, in variation order.
func (s *PricingQueryService) variationRecords(ctx context.Context, product *domain.Product) ([]*catalog.CatalogRecord, error) {
	variations, err := s.repo.ListVariations(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	skus := make([]string, 0, len(variations))
	for _, v := range variations {
		if v.SKU != "" {
			skus = append(skus, v.SKU)
		}
	}
	matches, err := s.resolver.ResolveEach(ctx, s.settings.Currency, skus)
	if err != nil {
		logging.Debug(ctx, "variation lookup unavailable", "product_id", product.ID, "error", err)
		return nil, err
	}

	records := make([]*catalog.CatalogRecord, 0, len(matches))
	for _, sku := range skus {
		if r, ok := matches[sku]; ok {
			records = append(records, r)
		}
	}
	return records, nil
}

func toRangeDTO(rng domain.PriceRange) *PriceRangeDTO {
	return &PriceRangeDTO{
		Low:    rng.Low.StringFixed(2),
		High:   rng.High.StringFixed(2),
		Single: rng.IsSingle(),
	}
}
