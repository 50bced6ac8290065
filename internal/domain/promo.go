package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoScope string

const (
	PromoScopeAll        PromoScope = "all"
	PromoScopeProducts   PromoScope = "specificProducts"
	PromoScopeCategories PromoScope = "specificCategories"
)

type PromoCode struct {
	ID                    uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Code                  string       `gorm:"uniqueIndex;size:60"`
	Description           string       `gorm:"size:255"`
	DiscountType          DiscountType `gorm:"type:varchar(12);not null"`
	DiscountValue         float64      `gorm:"type:decimal(12,2);not null"`
	MinPurchaseAmount     float64      `gorm:"type:decimal(12,2);default:0"`
	MaxDiscountAmount     *float64     `gorm:"type:decimal(12,2)"`
	StartDate             time.Time
	EndDate               *time.Time
	UsageLimitTotal       *int
	TimesUsed             int         `gorm:"not null;default:0"`
	OneTimePerUser        bool        `gorm:"not null;default:false"`
	Active                bool        `gorm:"not null;default:true"`
	AppliesTo             PromoScope  `gorm:"type:varchar(20);default:'all'"`
	ApplicableProductIDs  []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	ApplicableCategoryIDs []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NormalizePromoCode is the canonical form codes are stored and looked up in.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (p *PromoCode) IsExpired(now time.Time) bool {
	return p.EndDate != nil && p.EndDate.Before(now)
}

func (p *PromoCode) IsUsageLimitReached() bool {
	return p.UsageLimitTotal != nil && p.TimesUsed >= *p.UsageLimitTotal
}

type PromoRepo interface {
	// FindByCode looks up a promo by its normalized code.
	FindByCode(ctx context.Context, code string) (*PromoCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*PromoCode, error)
	// IncrementUsage bumps timesUsed by one as a single atomic update.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
