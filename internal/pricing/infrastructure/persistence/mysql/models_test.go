package mysql

import (
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
)

func TestProductModelMapping(t *testing.T) {
	p := &domain.Product{
		ID:           7,
		SKU:          "COIN-A",
		Name:         "Coin A",
		CatalogSKU:   "AGE-1OZ",
		Type:         domain.ProductVariation,
		ParentID:     3,
		Status:       "publish",
		Price:        decimal.RequireFromString("12.5"),
		RegularPrice: decimal.RequireFromString("13"),
	}

	m := toProductModel(p)
	if m.Price != (sql.NullString{String: "12.50", Valid: true}) ||
		m.RegularPrice != (sql.NullString{String: "13.00", Valid: true}) || m.Type != "variation" {
		t.Fatalf("model = %+v", m)
	}

	back := toProduct(m)
	if back.ID != p.ID || back.SKU != p.SKU || back.CatalogSKU != p.CatalogSKU || back.ParentID != p.ParentID || back.Type != p.Type {
		t.Errorf("round trip = %+v", back)
	}
	if !back.Price.Equal(p.Price) || !back.RegularPrice.Equal(p.RegularPrice) {
		t.Errorf("prices = %s/%s", back.Price, back.RegularPrice)
	}

	if toProductModel(nil) != nil || toProduct(nil) != nil {
		t.Errorf("nil mapping should stay nil")
	}
}

func TestToProductsEmptyPrice(t *testing.T) {
	out := toProducts([]ProductModel{{ID: 1, Type: "simple"}})
	if len(out) != 1 || !out[0].Price.IsZero() {
		t.Fatalf("out = %+v", out)
	}
}

func TestToProductUnusablePrices(t *testing.T) {
	tests := []struct {
		name  string
		price sql.NullString
		want  string
	}{
		{"null", sql.NullString{}, "0"},
		{"empty", sql.NullString{String: "", Valid: true}, "0"},
		{"garbage", sql.NullString{String: "n/a", Valid: true}, "0"},
		{"valid", sql.NullString{String: "19.99", Valid: true}, "19.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := toProduct(&ProductModel{ID: 9, Type: "simple", Price: tt.price, RegularPrice: tt.price})
			if !p.Price.Equal(decimal.RequireFromString(tt.want)) || !p.RegularPrice.Equal(p.Price) {
				t.Fatalf("price = %s regular = %s, want %s", p.Price, p.RegularPrice, tt.want)
			}
		})
	}
}
