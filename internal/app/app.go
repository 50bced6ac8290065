package app

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/modaviva/shop/internal/adapters/httpserver"
	"github.com/modaviva/shop/internal/adapters/repo/postgres"
	"github.com/modaviva/shop/internal/domain"
	"github.com/modaviva/shop/internal/usecase"
)

type App struct {
	DB         *gorm.DB
	OrderUC    *usecase.OrderUC
	PromoUC    *usecase.PromoUC
	CategoryUC *usecase.CategoryUC
}

func NewApp(db *gorm.DB) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	promoRepo := postgres.NewPromoRepo(db)
	userRepo := postgres.NewUserRepo(db)
	catRepo := postgres.NewCategoryRepo(db)
	txm := postgres.NewTxManager(db)

	validate := validator.New(validator.WithRequiredStructEnabled())

	categories := &usecase.CategoryUC{Categories: catRepo}
	promos := &usecase.PromoUC{Promos: promoRepo, Users: userRepo, Products: prodRepo, Categories: categories}
	orders := &usecase.OrderUC{Tx: txm, Orders: orderRepo, Categories: categories, Validate: validate}

	return &App{
		DB:         db,
		OrderUC:    orders,
		PromoUC:    promos,
		CategoryUC: categories,
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.OrderUC, a.PromoUC)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.Variant{}, &domain.Size{},
		&domain.PromoCode{}, &domain.Order{}, &domain.OrderItem{},
		&domain.User{}, &domain.UsedPromoCode{},
	); err != nil {
		return err
	}

	// Stock must never go negative even if a write path skips the guarded update.
	_ = a.DB.Exec("ALTER TABLE sizes ADD CONSTRAINT chk_sizes_stock_nonneg CHECK (stock >= 0)").Error

	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_sizes_sku_unique ON sizes (sku) WHERE sku IS NOT NULL AND sku <> ''").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_custom_order_id ON orders (custom_order_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_orders_email ON orders (email)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_used_promo_codes_user ON used_promo_codes (user_id, promo_code_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories (parent_id)").Error

	return nil
}
