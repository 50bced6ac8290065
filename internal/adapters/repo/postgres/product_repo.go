package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

// FindVariantAndSize resolves the exact (product, variant, sku) triple. The
// variant query is scoped to the product id so a client cannot pair a variant
// with a foreign product.
func (r *ProductRepo) FindVariantAndSize(ctx context.Context, productID, variantID uuid.UUID, sku string) (*domain.Product, *domain.Variant, *domain.Size, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, err
	}
	var v domain.Variant
	if err := r.db.WithContext(ctx).Preload("Sizes").First(&v, "id = ? AND product_id = ?", variantID, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, err
	}
	for i := range v.Sizes {
		if v.Sizes[i].SKU == sku {
			return &p, &v, &v.Sizes[i], nil
		}
	}
	return nil, nil, nil, domain.ErrNotFound
}

func (r *ProductRepo) CategoryOf(ctx context.Context, productID uuid.UUID) (uuid.UUID, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Select("id", "category_id").First(&p, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domain.ErrNotFound
		}
		return uuid.Nil, err
	}
	return p.CategoryID, nil
}
