package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/modaviva/shop/internal/domain"
)

// memRepos is an in-memory store implementing every repository interface the
// usecases touch, so tests exercise real transaction semantics without a
// database.
type memRepos struct {
	products []*domain.Product
	promos   []*domain.PromoCode
	orders   []*domain.Order
	used     []domain.UsedPromoCode

	promoFindCalls int
}

func (m *memRepos) Products() domain.ProductRepo    { return m }
func (m *memRepos) Inventory() domain.InventoryRepo { return m }
func (m *memRepos) Orders() domain.OrderRepo        { return m }
func (m *memRepos) Promos() domain.PromoRepo        { return m }
func (m *memRepos) Users() domain.UserRepo          { return m }

func (m *memRepos) FindVariantAndSize(_ context.Context, productID, variantID uuid.UUID, sku string) (*domain.Product, *domain.Variant, *domain.Size, error) {
	for _, p := range m.products {
		if p.ID != productID {
			continue
		}
		for vi := range p.Variants {
			v := &p.Variants[vi]
			if v.ID != variantID {
				continue
			}
			for si := range v.Sizes {
				if v.Sizes[si].SKU == sku {
					return p, v, &v.Sizes[si], nil
				}
			}
		}
	}
	return nil, nil, nil, domain.ErrNotFound
}

func (m *memRepos) CategoryOf(_ context.Context, productID uuid.UUID) (uuid.UUID, error) {
	for _, p := range m.products {
		if p.ID == productID {
			return p.CategoryID, nil
		}
	}
	return uuid.Nil, domain.ErrNotFound
}

func (m *memRepos) findSize(variantID uuid.UUID, sku string) *domain.Size {
	for _, p := range m.products {
		for vi := range p.Variants {
			v := &p.Variants[vi]
			if v.ID != variantID {
				continue
			}
			for si := range v.Sizes {
				if v.Sizes[si].SKU == sku {
					return &v.Sizes[si]
				}
			}
		}
	}
	return nil
}

func (m *memRepos) Reserve(_ context.Context, items []domain.StockItem) error {
	var failed []string
	for _, it := range items {
		sz := m.findSize(it.VariantID, it.SKU)
		if sz == nil || sz.Stock < it.Quantity {
			failed = append(failed, it.SKU)
			continue
		}
		sz.Stock -= it.Quantity
	}
	if len(failed) > 0 {
		return &domain.InsufficientStockError{SKUs: failed}
	}
	return nil
}

func (m *memRepos) Restock(_ context.Context, items []domain.StockItem) error {
	for _, it := range items {
		if sz := m.findSize(it.VariantID, it.SKU); sz != nil {
			sz.Stock += it.Quantity
		}
	}
	return nil
}

func (m *memRepos) Create(_ context.Context, o *domain.Order) error {
	for _, ex := range m.orders {
		if ex.CustomOrderID == o.CustomOrderID {
			return domain.ErrDuplicateOrderID
		}
	}
	m.orders = append(m.orders, cloneOrder(o))
	return nil
}

func (m *memRepos) Save(_ context.Context, o *domain.Order) error {
	for i, ex := range m.orders {
		if ex.ID == o.ID {
			m.orders[i] = cloneOrder(o)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memRepos) FindByCustomID(_ context.Context, customOrderID string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.CustomOrderID == customOrderID {
			return cloneOrder(o), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepos) FindByCustomIDAndEmail(_ context.Context, customOrderID, email string) (*domain.Order, error) {
	for _, o := range m.orders {
		if o.CustomOrderID == customOrderID && o.Email == email {
			return cloneOrder(o), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepos) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *cloneOrder(o))
		}
	}
	return out, nil
}

func (m *memRepos) ListAll(_ context.Context) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *cloneOrder(o))
	}
	return out, nil
}

func (m *memRepos) FindByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	m.promoFindCalls++
	for _, p := range m.promos {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepos) FindByID(_ context.Context, id uuid.UUID) (*domain.PromoCode, error) {
	for _, p := range m.promos {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepos) IncrementUsage(_ context.Context, id uuid.UUID) error {
	for _, p := range m.promos {
		if p.ID == id {
			p.TimesUsed++
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memRepos) HasUsedPromo(_ context.Context, userID, promoCodeID uuid.UUID) (bool, error) {
	for _, u := range m.used {
		if u.UserID == userID && u.PromoCodeID == promoCodeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepos) AppendUsedPromo(_ context.Context, rec *domain.UsedPromoCode) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	m.used = append(m.used, *rec)
	return nil
}

// memTx snapshots the store before each unit of work and restores it when the
// callback fails, mirroring a database rollback.
type memTx struct {
	r *memRepos
}

func (t *memTx) Execute(_ context.Context, fn func(r domain.Repos) error) error {
	snap := t.r.snapshot()
	if err := fn(t.r); err != nil {
		t.r.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	products []*domain.Product
	promos   []*domain.PromoCode
	orders   []*domain.Order
	used     []domain.UsedPromoCode
}

func (m *memRepos) snapshot() memSnapshot {
	s := memSnapshot{used: append([]domain.UsedPromoCode(nil), m.used...)}
	for _, p := range m.products {
		s.products = append(s.products, cloneProduct(p))
	}
	for _, p := range m.promos {
		cp := *p
		s.promos = append(s.promos, &cp)
	}
	for _, o := range m.orders {
		s.orders = append(s.orders, cloneOrder(o))
	}
	return s
}

func (m *memRepos) restore(s memSnapshot) {
	m.products = s.products
	m.promos = s.promos
	m.orders = s.orders
	m.used = s.used
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Variants = make([]domain.Variant, len(p.Variants))
	for i, v := range p.Variants {
		cv := v
		cv.Sizes = append([]domain.Size(nil), v.Sizes...)
		cp.Variants[i] = cv
	}
	return &cp
}

func cloneOrder(o *domain.Order) *domain.Order {
	co := *o
	co.Items = append([]domain.OrderItem(nil), o.Items...)
	return &co
}

// memCategoryRepo backs CategoryUC in tests. ListAll has a different
// signature than the order repo's, so it cannot live on memRepos.
type memCategoryRepo struct {
	cats  []domain.Category
	calls int
}

func (m *memCategoryRepo) ListAll(_ context.Context) ([]domain.Category, error) {
	m.calls++
	return append([]domain.Category(nil), m.cats...), nil
}
