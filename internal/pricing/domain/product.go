package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ProductType mirrors the host store's product kinds.
type ProductType string

const (
	ProductSimple    ProductType = "simple"
	ProductVariable  ProductType = "variable"
	ProductVariation ProductType = "variation"
)

// ErrProductNotFound the host store has no such product.
var ErrProductNotFound = errors.New("product not found")

// Product a host store product whose stored price may be overridden by the catalog.
type Product struct {
	ID   uint
	SKU  string
	Name string
	// CatalogSKU optional catalog SKU that takes precedence over SKU.
	CatalogSKU   string
	Type         ProductType
	ParentID     uint
	Status       string
	Price        decimal.Decimal
	RegularPrice decimal.Decimal
}

// CandidateSKUs lookup order for this product: the catalog override, then its own SKU.
// Variations are matched by their own SKU only.
func (p *Product) CandidateSKUs() []string {
	if p.Type == ProductVariation {
		return []string{p.SKU}
	}
	return []string{p.CatalogSKU, p.SKU}
}

// IsVariable reports whether prices come from variations.
func (p *Product) IsVariable() bool {
	return p.Type == ProductVariable
}

// ApplyCatalogPrice overwrites both stored prices and reports whether anything changed.
func (p *Product) ApplyCatalogPrice(price decimal.Decimal) bool {
	if p.Price.Equal(price) && p.RegularPrice.Equal(price) {
		return false
	}
	p.Price = price
	p.RegularPrice = price
	return true
}

// ProductRepository host product storage.
type ProductRepository interface {
	// ListByStatus returns one page of top-level products (no variations) in any of statuses.
	ListByStatus(ctx context.Context, statuses []string, offset, limit int) ([]*Product, error)
	// ListVariations returns the variations of a variable product.
	ListVariations(ctx context.Context, parentID uint) ([]*Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
	// UpdatePrices persists Price and RegularPrice.
	UpdatePrices(ctx context.Context, product *Product) error
	// UpdateCatalogSKU persists CatalogSKU.
	UpdateCatalogSKU(ctx context.Context, id uint, catalogSKU string) error
}
