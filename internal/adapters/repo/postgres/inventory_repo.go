package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

// InventoryRepo is the stock ledger over the sizes table. Decrements are
// guarded by the stored quantity in the WHERE clause, so two transactions
// contending for the last unit can never both pass.
type InventoryRepo struct{ db *gorm.DB }

func NewInventoryRepo(db *gorm.DB) *InventoryRepo { return &InventoryRepo{db: db} }

func (r *InventoryRepo) Reserve(ctx context.Context, items []domain.StockItem) error {
	var failed []string
	for _, it := range items {
		res := r.db.WithContext(ctx).Model(&domain.Size{}).
			Where("variant_id = ? AND sku = ? AND stock >= ?", it.VariantID, it.SKU, it.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			failed = append(failed, it.SKU)
		}
	}
	if len(failed) > 0 {
		return &domain.InsufficientStockError{SKUs: failed}
	}
	return nil
}

func (r *InventoryRepo) Restock(ctx context.Context, items []domain.StockItem) error {
	for _, it := range items {
		res := r.db.WithContext(ctx).Model(&domain.Size{}).
			Where("variant_id = ? AND sku = ?", it.VariantID, it.SKU).
			UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", it.Quantity))
		if res.Error != nil {
			return res.Error
		}
	}
	return nil
}
