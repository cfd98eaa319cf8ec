// Package mysql stores host products in MySQL through gorm.
package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListByStatus(ctx context.Context, statuses []string, offset, limit int) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND type <> ?", statuses, string(domain.ProductVariation)).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toProducts(models), nil
}

func (r *productRepository) ListVariations(ctx context.Context, parentID uint) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.db.WithContext(ctx).
		Where("parent_id = ? AND type = ?", parentID, string(domain.ProductVariation)).
		Order("id asc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return toProducts(models), nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var m ProductModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return toProduct(&m), nil
}

func (r *productRepository) UpdatePrices(ctx context.Context, product *domain.Product) error {
	model := toProductModel(product)
	if model == nil {
		return nil
	}
	return r.update(ctx, model.ID, map[string]any{
		"price":         model.Price,
		"regular_price": model.RegularPrice,
		"updated_at":    time.Now(),
	})
}

func (r *productRepository) UpdateCatalogSKU(ctx context.Context, id uint, catalogSKU string) error {
	return r.update(ctx, id, map[string]any{
		"catalog_sku": catalogSKU,
		"updated_at":  time.Now(),
	})
}

func (r *productRepository) update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
