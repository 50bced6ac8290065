package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) HasUsedPromo(ctx context.Context, userID, promoCodeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.UsedPromoCode{}).
		Where("user_id = ? AND promo_code_id = ?", userID, promoCodeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepo) AppendUsedPromo(ctx context.Context, rec *domain.UsedPromoCode) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}
