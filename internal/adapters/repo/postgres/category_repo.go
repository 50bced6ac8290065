package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// ListAll loads the full category set. The catalog carries at most a few
// hundred categories, so the hierarchy resolver builds its tree in memory.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]domain.Category, error) {
	var list []domain.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
