package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	err := r.db.WithContext(ctx).Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicateOrderID
	}
	return err
}

func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OrderRepo) FindByCustomID(ctx context.Context, customOrderID string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, "custom_order_id = ?", customOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) FindByCustomIDAndEmail(ctx context.Context, customOrderID, email string) (*domain.Order, error) {
	var o domain.Order
	e := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).Preload("Items").
		First(&o, "custom_order_id = ? AND LOWER(email) = ?", strings.TrimSpace(customOrderID), e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	var list []domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).Order("order_date desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OrderRepo) ListAll(ctx context.Context) ([]domain.Order, error) {
	var list []domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").Order("order_date desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
