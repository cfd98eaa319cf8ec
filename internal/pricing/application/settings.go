package application

import (
	"context"

	"github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	pricing "github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/catalogpricing/pkg/config"
)

// CatalogResolver is the catalog lookup consumed by the pricing services.
type CatalogResolver interface {
	Resolve(ctx context.Context, currency string, candidates ...string) (*domain.CatalogRecord, error)
	ResolveEach(ctx context.Context, currency string, skus []string) (map[string]*domain.CatalogRecord, error)
}

const defaultLowPriceLabel = "As low as"

// Settings the storefront pricing options, resolved once at startup.
type Settings struct {
	Currency string
	Labels   config.PricingConfig
	// Surcharge is nil unless card pricing is enabled with a non-zero percent.
	Surcharge *pricing.Surcharge
	Exempt    pricing.FeeExemption
}

// NewSettings derives Settings from cfg, rejecting an unparseable card percent.
func NewSettings(cfg *config.Config) (Settings, error) {
	s := Settings{
		Currency: cfg.Catalog.Currency,
		Labels:   cfg.Pricing,
		Exempt:   pricing.NewFeeExemption(cfg.Pricing.FeeExemptMethods),
	}
	if s.Labels.LowPriceLabel == "" {
		s.Labels.LowPriceLabel = defaultLowPriceLabel
	}
	if cfg.Pricing.ShowCardPrice {
		surcharge, err := pricing.ParseSurcharge(cfg.Pricing.CardSurchargePercent)
		if err != nil {
			return Settings{}, err
		}
		s.Surcharge = surcharge
	}
	return s, nil
}
