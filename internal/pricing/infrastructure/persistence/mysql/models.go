package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
)

// ProductModel MySQL products table mapping
type ProductModel struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
	SKU          string         `gorm:"column:sku;type:varchar(100);index"`
	Name         string         `gorm:"column:name;type:varchar(255)"`
	CatalogSKU   string         `gorm:"column:catalog_sku;type:varchar(100)"`
	Type         string         `gorm:"column:type;type:varchar(20);index;not null"`
	ParentID     uint           `gorm:"column:parent_id;index"`
	Status       string         `gorm:"column:status;type:varchar(20);index;not null"`
	// Prices are nullable: host rows without a price read back as zero.
	Price        sql.NullString `gorm:"column:price;type:decimal(20,2)"`
	RegularPrice sql.NullString `gorm:"column:regular_price;type:decimal(20,2)"`
}

func (ProductModel) TableName() string { return "products" }

// mapping helpers

func toProductModel(p *domain.Product) *ProductModel {
	if p == nil {
		return nil
	}
	return &ProductModel{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CatalogSKU:   p.CatalogSKU,
		Type:         string(p.Type),
		ParentID:     p.ParentID,
		Status:       p.Status,
		Price:        sql.NullString{String: p.Price.StringFixed(2), Valid: true},
		RegularPrice: sql.NullString{String: p.RegularPrice.StringFixed(2), Valid: true},
	}
}

func toProduct(m *ProductModel) *domain.Product {
	if m == nil {
		return nil
	}
	price := parsePrice(m.Price, "price", m.ID)
	regular := parsePrice(m.RegularPrice, "regular_price", m.ID)

	return &domain.Product{
		ID:           m.ID,
		SKU:          m.SKU,
		Name:         m.Name,
		CatalogSKU:   m.CatalogSKU,
		Type:         domain.ProductType(m.Type),
		ParentID:     m.ParentID,
		Status:       m.Status,
		Price:        price,
		RegularPrice: regular,
	}
}

// parsePrice reads a stored price; NULL, empty and unparseable values are zero.
func parsePrice(v sql.NullString, column string, id uint) decimal.Decimal {
	if !v.Valid || v.String == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		logging.Warn(context.Background(), "unparseable stored price, using zero",
			"product_id", id, "column", column, "value", v.String, "error", err)
		return decimal.Zero
	}
	return d
}

func toProducts(models []ProductModel) []*domain.Product {
	out := make([]*domain.Product, len(models))
	for i := range models {
		out[i] = toProduct(&models[i])
	}
	return out
}
