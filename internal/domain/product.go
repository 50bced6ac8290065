package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Slug        string     `gorm:"uniqueIndex;size:140"`
	Name        string     `gorm:"size:180"`
	Description string     `gorm:"type:text"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;index"`
	BrandID     *uuid.UUID `gorm:"type:uuid;index"`
	Tags        []string   `gorm:"type:jsonb;serializer:json"`
	Priority    int        `gorm:"default:0;index"`
	Active      bool       `gorm:"default:true;index"`
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Variant struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"type:uuid;index"`
	ColorName     string    `gorm:"size:60"`
	ColorHex      string    `gorm:"size:10"`
	Price         float64   `gorm:"type:decimal(12,2)"`
	PriceOriginal *float64  `gorm:"type:decimal(12,2)"`
	Images        []string  `gorm:"type:jsonb;serializer:json"`
	Active        bool      `gorm:"default:true;index"`
	Sizes         []Size
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Size is the SKU unit: one size of one color variant of one product.
// Stock on this row is the single source of inventory truth.
type Size struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	VariantID uuid.UUID `gorm:"type:uuid;index"`
	Label     string    `gorm:"size:20"`
	SKU       string    `gorm:"size:120;uniqueIndex"`
	Stock     int       `gorm:"not null;default:0"`
}

// MainImage returns the variant's first image, empty if none.
func (v *Variant) MainImage() string {
	if len(v.Images) == 0 {
		return ""
	}
	return v.Images[0]
}

type ProductRepo interface {
	// FindVariantAndSize resolves the exact (product, variant, sku) triple or
	// returns ErrNotFound when any level is missing.
	FindVariantAndSize(ctx context.Context, productID, variantID uuid.UUID, sku string) (*Product, *Variant, *Size, error)
	CategoryOf(ctx context.Context, productID uuid.UUID) (uuid.UUID, error)
}

// StockItem addresses one SKU unit for reservation or restitution.
type StockItem struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
	SKU       string
	Quantity  int
}

// InventoryRepo owns all stock mutation. Reserve and Restock are only
// meaningful inside the caller's transaction: a failed Reserve must roll the
// whole unit of work back.
type InventoryRepo interface {
	// Reserve decrements stock for every item, each guarded by the current
	// stored quantity. Returns *InsufficientStockError listing the SKUs whose
	// guard failed; in that case the caller must abort the transaction.
	Reserve(ctx context.Context, items []StockItem) error
	// Restock unconditionally returns quantity to each SKU. Idempotency is
	// owned by the caller (the status machine runs it at most once per order).
	Restock(ctx context.Context, items []StockItem) error
}
