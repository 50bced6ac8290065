package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

type PromoRepo struct{ db *gorm.DB }

func NewPromoRepo(db *gorm.DB) *PromoRepo { return &PromoRepo{db: db} }

func (r *PromoRepo) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	var p domain.PromoCode
	if err := r.db.WithContext(ctx).First(&p, "code = ?", domain.NormalizePromoCode(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.PromoCode, error) {
	var p domain.PromoCode
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IncrementUsage is a single atomic update, never read-modify-write.
func (r *PromoRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.PromoCode{}).Where("id = ?", id).
		UpdateColumn("times_used", gorm.Expr("times_used + 1")).Error
}
