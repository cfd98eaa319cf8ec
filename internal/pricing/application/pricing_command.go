package application

import (
	"context"
	"errors"
	"strings"

	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
)

// ErrVariationSKUOverride variations are always matched by their own SKU.
var ErrVariationSKUOverride = errors.New("catalog sku cannot be set on a variation")

// PricingCommandService mutates per-product catalog settings.
type PricingCommandService struct {
	repo domain.ProductRepository
}

func NewPricingCommandService(repo domain.ProductRepository) *PricingCommandService {
	return &PricingCommandService{repo: repo}
}

// SetCatalogSKU stores the catalog SKU override for a product. An empty value clears it.
func (s *PricingCommandService) SetCatalogSKU(ctx context.Context, productID uint, catalogSKU string) error {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Type == domain.ProductVariation {
		return ErrVariationSKUOverride
	}

	catalogSKU = strings.TrimSpace(catalogSKU)
	if err := s.repo.UpdateCatalogSKU(ctx, productID, catalogSKU); err != nil {
		return err
	}
	logging.Info(ctx, "catalog sku updated", "product_id", productID, "catalog_sku", catalogSKU)
	return nil
}
