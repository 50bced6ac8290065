package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/domain"
)

// Repos hands out repositories bound to one *gorm.DB, which inside a
// transaction is the transaction handle itself.
type Repos struct{ db *gorm.DB }

func NewRepos(db *gorm.DB) Repos { return Repos{db: db} }

func (r Repos) Products() domain.ProductRepo    { return NewProductRepo(r.db) }
func (r Repos) Inventory() domain.InventoryRepo { return NewInventoryRepo(r.db) }
func (r Repos) Orders() domain.OrderRepo        { return NewOrderRepo(r.db) }
func (r Repos) Promos() domain.PromoRepo        { return NewPromoRepo(r.db) }
func (r Repos) Users() domain.UserRepo          { return NewUserRepo(r.db) }

// TxManager implements domain.TxManager over gorm's transaction support.
type TxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) *TxManager { return &TxManager{db: db} }

func (m *TxManager) Execute(ctx context.Context, fn func(r domain.Repos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Repos{db: tx})
	})
}
