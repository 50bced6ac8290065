package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/modaviva/shop/internal/domain"
)

// CartLine is the unit the promotion engine prices against. The commit path
// builds lines from authoritative catalog data; the preview path takes them
// from the client, which is acceptable because preview writes nothing.
type CartLine struct {
	ProductID uuid.UUID
	UnitPrice float64
	Quantity  int
}

// PromoUC evaluates promo codes against a cart. The same evaluation runs on
// the preview endpoint (hard error when ineligible) and inside the checkout
// transaction (ineligibility degrades to no discount).
type PromoUC struct {
	Promos     domain.PromoRepo
	Users      domain.UserRepo
	Products   domain.ProductRepo
	Categories *CategoryUC

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (uc *PromoUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

// PreviewResult is what the validate endpoint returns to the storefront.
type PreviewResult struct {
	Promo    *domain.PromoCode
	Discount domain.AppliedPromoCode
}

// Preview looks up a code and evaluates it, surfacing the first failed
// eligibility gate as a *domain.PromoIneligibleError.
func (uc *PromoUC) Preview(ctx context.Context, code string, lines []CartLine, userID *uuid.UUID) (*PreviewResult, error) {
	normalized := domain.NormalizePromoCode(code)
	promo, err := uc.Promos.FindByCode(ctx, normalized)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.PromoIneligibleError{Code: normalized, Reason: domain.PromoNotFound}
	}
	if err != nil {
		return nil, err
	}
	applied, err := uc.Evaluate(ctx, promo, lines, userID)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Promo: promo, Discount: *applied}, nil
}

// Evaluate runs the eligibility gates in order, short-circuiting on the first
// failure with a distinct reason, and computes the discount for the eligible
// portion of the cart.
func (uc *PromoUC) Evaluate(ctx context.Context, promo *domain.PromoCode, lines []CartLine, userID *uuid.UUID) (*domain.AppliedPromoCode, error) {
	fail := func(r domain.PromoIneligibleReason) error {
		return &domain.PromoIneligibleError{Code: promo.Code, Reason: r}
	}

	if !promo.Active {
		return nil, fail(domain.PromoInactive)
	}
	if promo.IsExpired(uc.now()) {
		return nil, fail(domain.PromoExpired)
	}
	if promo.IsUsageLimitReached() {
		return nil, fail(domain.PromoUsageLimitReached)
	}
	if promo.OneTimePerUser && userID != nil {
		used, err := uc.Users.HasUsedPromo(ctx, *userID, promo.ID)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, fail(domain.PromoAlreadyUsed)
		}
	}

	applicable, err := uc.applicableSubtotal(ctx, promo, lines)
	if err != nil {
		return nil, err
	}
	if applicable < promo.MinPurchaseAmount {
		return nil, fail(domain.PromoMinPurchase)
	}

	var discount float64
	switch promo.DiscountType {
	case domain.DiscountPercentage:
		discount = applicable * promo.DiscountValue / 100
		if promo.MaxDiscountAmount != nil && discount > *promo.MaxDiscountAmount {
			discount = *promo.MaxDiscountAmount
		}
	case domain.DiscountFixed:
		discount = promo.DiscountValue
	default:
		return nil, fail(domain.PromoMisconfigured)
	}
	// A promo can never discount more than the eligible portion of the cart.
	if discount > applicable {
		discount = applicable
	}
	discount = round2(discount)
	if discount <= 0 {
		return nil, fail(domain.PromoZeroDiscount)
	}

	id := promo.ID
	return &domain.AppliedPromoCode{
		PromoCodeID:      &id,
		Code:             promo.Code,
		DiscountType:     promo.DiscountType,
		ValueAtOrderTime: promo.DiscountValue,
		DiscountAmount:   discount,
	}, nil
}

func (uc *PromoUC) applicableSubtotal(ctx context.Context, promo *domain.PromoCode, lines []CartLine) (float64, error) {
	fail := func(r domain.PromoIneligibleReason) error {
		return &domain.PromoIneligibleError{Code: promo.Code, Reason: r}
	}

	switch promo.AppliesTo {
	case domain.PromoScopeAll, "":
		sum := 0.0
		for _, l := range lines {
			sum += l.UnitPrice * float64(l.Quantity)
		}
		return round2(sum), nil

	case domain.PromoScopeProducts:
		if len(promo.ApplicableProductIDs) == 0 {
			return 0, fail(domain.PromoMisconfigured)
		}
		in := make(map[uuid.UUID]struct{}, len(promo.ApplicableProductIDs))
		for _, id := range promo.ApplicableProductIDs {
			in[id] = struct{}{}
		}
		sum := 0.0
		for _, l := range lines {
			if _, ok := in[l.ProductID]; ok {
				sum += l.UnitPrice * float64(l.Quantity)
			}
		}
		if sum == 0 {
			return 0, fail(domain.PromoNotApplicable)
		}
		return round2(sum), nil

	case domain.PromoScopeCategories:
		if len(promo.ApplicableCategoryIDs) == 0 {
			return 0, fail(domain.PromoMisconfigured)
		}
		scope, err := uc.Categories.DescendantsOf(ctx, promo.ApplicableCategoryIDs)
		if err != nil {
			return 0, err
		}
		sum := 0.0
		catByProduct := make(map[uuid.UUID]uuid.UUID)
		for _, l := range lines {
			cat, ok := catByProduct[l.ProductID]
			if !ok {
				cat, err = uc.Products.CategoryOf(ctx, l.ProductID)
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				if err != nil {
					return 0, err
				}
				catByProduct[l.ProductID] = cat
			}
			if _, ok := scope[cat]; ok {
				sum += l.UnitPrice * float64(l.Quantity)
			}
		}
		if sum == 0 {
			return 0, fail(domain.PromoNotApplicable)
		}
		return round2(sum), nil

	default:
		return 0, fail(domain.PromoMisconfigured)
	}
}
