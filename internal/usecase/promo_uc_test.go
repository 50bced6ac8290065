package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modaviva/shop/internal/domain"
)

func fptr(v float64) *float64     { return &v }
func iptr(v int) *int             { return &v }
func tptr(t time.Time) *time.Time { return &t }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newPromoUC(m *memRepos, cats *memCategoryRepo) *PromoUC {
	if cats == nil {
		cats = &memCategoryRepo{}
	}
	return &PromoUC{
		Promos:     m,
		Users:      m,
		Products:   m,
		Categories: &CategoryUC{Categories: cats},
		Now:        func() time.Time { return testNow },
	}
}

func activePromo(code string) *domain.PromoCode {
	return &domain.PromoCode{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 20,
		Active:        true,
		AppliesTo:     domain.PromoScopeAll,
	}
}

func cartOf(price float64, qty int) []CartLine {
	return []CartLine{{ProductID: uuid.New(), UnitPrice: price, Quantity: qty}}
}

func requireIneligible(t *testing.T, err error, reason domain.PromoIneligibleReason) {
	t.Helper()
	var inel *domain.PromoIneligibleError
	require.ErrorAs(t, err, &inel)
	assert.Equal(t, reason, inel.Reason)
}

func TestPreviewUnknownCode(t *testing.T) {
	uc := newPromoUC(&memRepos{}, nil)

	_, err := uc.Preview(context.Background(), "  nope ", cartOf(100, 1), nil)
	requireIneligible(t, err, domain.PromoNotFound)
}

func TestPreviewNormalizesCode(t *testing.T) {
	m := &memRepos{promos: []*domain.PromoCode{activePromo("SUMMER20")}}
	uc := newPromoUC(m, nil)

	res, err := uc.Preview(context.Background(), "  summer20 ", cartOf(100, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER20", res.Discount.Code)
	assert.Equal(t, 20.0, res.Discount.DiscountAmount)
}

func TestEvaluateGates(t *testing.T) {
	userID := uuid.New()

	cases := []struct {
		name   string
		mutate func(p *domain.PromoCode, m *memRepos)
		reason domain.PromoIneligibleReason
	}{
		{"inactive", func(p *domain.PromoCode, _ *memRepos) {
			p.Active = false
		}, domain.PromoInactive},
		{"expired", func(p *domain.PromoCode, _ *memRepos) {
			p.EndDate = tptr(testNow.Add(-time.Hour))
		}, domain.PromoExpired},
		{"usage limit reached", func(p *domain.PromoCode, _ *memRepos) {
			p.UsageLimitTotal = iptr(3)
			p.TimesUsed = 3
		}, domain.PromoUsageLimitReached},
		{"already used by user", func(p *domain.PromoCode, m *memRepos) {
			p.OneTimePerUser = true
			m.used = append(m.used, domain.UsedPromoCode{UserID: userID, PromoCodeID: p.ID})
		}, domain.PromoAlreadyUsed},
		{"min purchase not met", func(p *domain.PromoCode, _ *memRepos) {
			p.MinPurchaseAmount = 500
		}, domain.PromoMinPurchase},
		{"unknown discount type", func(p *domain.PromoCode, _ *memRepos) {
			p.DiscountType = "bogus"
		}, domain.PromoMisconfigured},
		{"zero discount", func(p *domain.PromoCode, _ *memRepos) {
			p.DiscountValue = 0
		}, domain.PromoZeroDiscount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &memRepos{}
			promo := activePromo("GATED")
			tc.mutate(promo, m)
			m.promos = []*domain.PromoCode{promo}
			uc := newPromoUC(m, nil)

			_, err := uc.Evaluate(context.Background(), promo, cartOf(100, 1), &userID)
			requireIneligible(t, err, tc.reason)
		})
	}
}

func TestEvaluateExpiryIsInclusiveOfEndDate(t *testing.T) {
	promo := activePromo("TODAY")
	promo.EndDate = tptr(testNow)
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	// An end date equal to the evaluation instant is not yet expired.
	res, err := uc.Evaluate(context.Background(), promo, cartOf(100, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.DiscountAmount)
}

func TestEvaluatePercentageCappedByMax(t *testing.T) {
	promo := activePromo("CAP")
	promo.MaxDiscountAmount = fptr(10)
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	res, err := uc.Evaluate(context.Background(), promo, cartOf(100, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.DiscountAmount)
	assert.Equal(t, 20.0, res.ValueAtOrderTime)
}

func TestEvaluateFixedClampedToApplicableSubtotal(t *testing.T) {
	promo := activePromo("FIXED50")
	promo.DiscountType = domain.DiscountFixed
	promo.DiscountValue = 50
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	res, err := uc.Evaluate(context.Background(), promo, cartOf(30, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.DiscountAmount)
}

func TestEvaluateRoundsToCents(t *testing.T) {
	promo := activePromo("TEN")
	promo.DiscountValue = 10
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	res, err := uc.Evaluate(context.Background(), promo, cartOf(29.99, 2), nil)
	require.NoError(t, err)
	// 10% of 59.98 is 5.998, stored as 6.00.
	assert.Equal(t, 6.0, res.DiscountAmount)
}

func TestEvaluateProductScope(t *testing.T) {
	inScope := uuid.New()
	outOfScope := uuid.New()
	lines := []CartLine{
		{ProductID: inScope, UnitPrice: 40, Quantity: 2},
		{ProductID: outOfScope, UnitPrice: 100, Quantity: 1},
	}

	promo := activePromo("PROD")
	promo.AppliesTo = domain.PromoScopeProducts
	promo.ApplicableProductIDs = []uuid.UUID{inScope}
	promo.DiscountValue = 10
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	// Only the in-scope line counts: 10% of 80, not of 180.
	res, err := uc.Evaluate(context.Background(), promo, lines, nil)
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.DiscountAmount)

	_, err = uc.Evaluate(context.Background(), promo, cartOf(100, 1), nil)
	requireIneligible(t, err, domain.PromoNotApplicable)

	promo.ApplicableProductIDs = nil
	_, err = uc.Evaluate(context.Background(), promo, lines, nil)
	requireIneligible(t, err, domain.PromoMisconfigured)
}

func TestEvaluateMinPurchaseOnApplicableSubtotalOnly(t *testing.T) {
	inScope := uuid.New()
	promo := activePromo("MIN")
	promo.AppliesTo = domain.PromoScopeProducts
	promo.ApplicableProductIDs = []uuid.UUID{inScope}
	promo.MinPurchaseAmount = 100
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	// Cart total is 140 but only 40 is in scope.
	lines := []CartLine{
		{ProductID: inScope, UnitPrice: 40, Quantity: 1},
		{ProductID: uuid.New(), UnitPrice: 100, Quantity: 1},
	}
	_, err := uc.Evaluate(context.Background(), promo, lines, nil)
	requireIneligible(t, err, domain.PromoMinPurchase)
}

func TestEvaluateCategoryScopeIncludesDescendants(t *testing.T) {
	women := uuid.New()
	dresses := uuid.New()
	shoes := uuid.New()
	cats := &memCategoryRepo{cats: []domain.Category{
		{ID: women, Name: "Women"},
		{ID: dresses, Name: "Dresses", ParentID: &women},
		{ID: shoes, Name: "Shoes"},
	}}

	dress := &domain.Product{ID: uuid.New(), CategoryID: dresses}
	sneaker := &domain.Product{ID: uuid.New(), CategoryID: shoes}
	m := &memRepos{products: []*domain.Product{dress, sneaker}}

	promo := activePromo("WOMEN10")
	promo.AppliesTo = domain.PromoScopeCategories
	promo.ApplicableCategoryIDs = []uuid.UUID{women}
	promo.DiscountValue = 10
	m.promos = []*domain.PromoCode{promo}
	uc := newPromoUC(m, cats)

	lines := []CartLine{
		{ProductID: dress.ID, UnitPrice: 80, Quantity: 1},
		{ProductID: sneaker.ID, UnitPrice: 60, Quantity: 1},
	}
	res, err := uc.Evaluate(context.Background(), promo, lines, nil)
	require.NoError(t, err)
	// Dresses sits under Women, so the dress line is eligible and the shoes
	// line is not.
	assert.Equal(t, 8.0, res.DiscountAmount)

	promo.ApplicableCategoryIDs = []uuid.UUID{shoes}
	_, err = uc.Evaluate(context.Background(), promo, []CartLine{{ProductID: dress.ID, UnitPrice: 80, Quantity: 1}}, nil)
	requireIneligible(t, err, domain.PromoNotApplicable)
}

func TestEvaluateSkipsUnknownProductsInCategoryScope(t *testing.T) {
	catID := uuid.New()
	cats := &memCategoryRepo{cats: []domain.Category{{ID: catID, Name: "Tops"}}}
	known := &domain.Product{ID: uuid.New(), CategoryID: catID}
	m := &memRepos{products: []*domain.Product{known}}

	promo := activePromo("TOPS")
	promo.AppliesTo = domain.PromoScopeCategories
	promo.ApplicableCategoryIDs = []uuid.UUID{catID}
	promo.DiscountValue = 10
	uc := newPromoUC(m, cats)

	lines := []CartLine{
		{ProductID: known.ID, UnitPrice: 50, Quantity: 1},
		{ProductID: uuid.New(), UnitPrice: 999, Quantity: 1},
	}
	res, err := uc.Evaluate(context.Background(), promo, lines, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.DiscountAmount)
}

func TestEvaluateAnonymousUserSkipsOneTimeGate(t *testing.T) {
	promo := activePromo("ONCE")
	promo.OneTimePerUser = true
	uc := newPromoUC(&memRepos{promos: []*domain.PromoCode{promo}}, nil)

	res, err := uc.Evaluate(context.Background(), promo, cartOf(100, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, res.DiscountAmount)
}
