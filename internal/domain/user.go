package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User carries only what this engine needs. Account management and session
// issuance live in the auth collaborator.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"size:140;uniqueIndex"`
	Name           string    `gorm:"size:140"`
	UsedPromoCodes []UsedPromoCode
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UsedPromoCode records one redemption of a one-time-per-user promo.
// Rows are append-only: written once per successful redemption, never mutated.
type UsedPromoCode struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;index"`
	Code        string    `gorm:"size:60"`
	PromoCodeID uuid.UUID `gorm:"type:uuid;index"`
	OrderID     uuid.UUID `gorm:"type:uuid"`
	UsedAt      time.Time
}

type UserRepo interface {
	HasUsedPromo(ctx context.Context, userID, promoCodeID uuid.UUID) (bool, error)
	AppendUsedPromo(ctx context.Context, rec *UsedPromoCode) error
}
