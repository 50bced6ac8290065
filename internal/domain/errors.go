package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// Checkout validation errors: rejected before any side effect.
	ErrEmptyCart       = errors.New("order must contain at least one item")
	ErrInvalidAddress  = errors.New("customer email and a complete shipping address are required")
	ErrInvalidLineItem = errors.New("invalid line item data")
	ErrInvalidShipping = errors.New("shipping method and cost are required")

	// Stale client state: the catalog moved on since the cart was built.
	ErrVariantInactive = errors.New("the selected option is no longer available")

	// Conflicts: retriable after refreshing state.
	ErrDuplicateOrderID = errors.New("order id already exists")

	// Invalid status machine input.
	ErrInvalidStatus = errors.New("invalid order status")
)

// InsufficientStockError reports which SKUs failed the reservation guard.
// The checkout that receives it must abort as a whole: no partial reservation.
type InsufficientStockError struct {
	SKUs []string
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock for sku " + strings.Join(e.SKUs, ", ")
}

// PromoIneligibleError carries the first eligibility gate a promo failed.
// The preview endpoint surfaces it; the commit path swallows it and proceeds
// without a discount.
type PromoIneligibleError struct {
	Code   string
	Reason PromoIneligibleReason
}

type PromoIneligibleReason string

const (
	PromoNotFound          PromoIneligibleReason = "not_found"
	PromoInactive          PromoIneligibleReason = "inactive"
	PromoExpired           PromoIneligibleReason = "expired"
	PromoUsageLimitReached PromoIneligibleReason = "usage_limit_reached"
	PromoAlreadyUsed       PromoIneligibleReason = "already_used_by_user"
	PromoMisconfigured     PromoIneligibleReason = "misconfigured"
	PromoNotApplicable     PromoIneligibleReason = "not_applicable_to_cart"
	PromoMinPurchase       PromoIneligibleReason = "min_purchase_not_met"
	PromoZeroDiscount      PromoIneligibleReason = "zero_discount"
)

func (e *PromoIneligibleError) Error() string {
	return fmt.Sprintf("promo code %q ineligible: %s", e.Code, e.Reason)
}

// Message is the user-facing string for the preview endpoint.
func (e *PromoIneligibleError) Message() string {
	switch e.Reason {
	case PromoNotFound:
		return "Promo code not found."
	case PromoInactive:
		return "This promo code is not active."
	case PromoExpired:
		return "This promo code has expired."
	case PromoUsageLimitReached:
		return "This promo code has reached its usage limit."
	case PromoAlreadyUsed:
		return "You have already used this promo code."
	case PromoMisconfigured:
		return fmt.Sprintf("Promo code %q is misconfigured.", e.Code)
	case PromoNotApplicable:
		return fmt.Sprintf("Promo code %q is not applicable to any items in your cart.", e.Code)
	case PromoMinPurchase:
		return "A minimum purchase on applicable items is required."
	default:
		return "This promo code cannot be applied."
	}
}
