package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/modaviva/shop/internal/domain"
)

type CheckoutItem struct {
	ProductID uuid.UUID `json:"productId"`
	VariantID uuid.UUID `json:"variantId"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
}

type CustomerDetails struct {
	Email           string         `json:"email" validate:"required,email"`
	PhoneNumber     string         `json:"phoneNumber"`
	ShippingAddress domain.Address `json:"shippingAddress" validate:"required"`
	BillingAddress  domain.Address `json:"billingAddress"`
}

type ShippingInfo struct {
	Method string  `json:"method"`
	Cost   float64 `json:"cost"`
}

// CheckoutInput is one checkout request. Prices never come from here: every
// line is re-priced from the catalog inside the transaction.
type CheckoutInput struct {
	Customer  CustomerDetails
	Items     []CheckoutItem
	Shipping  ShippingInfo
	PromoCode string
	UserID    *uuid.UUID
	Payment   domain.PaymentDetails
}

// OrderUC coordinates checkout and the post-creation status machine. Every
// mutating operation runs inside one database transaction: stock guards, the
// order write and the promo usage counters commit together or not at all.
type OrderUC struct {
	Tx         domain.TxManager
	Orders     domain.OrderRepo
	Categories *CategoryUC
	Validate   *validator.Validate

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (uc *OrderUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *OrderUC) validateInput(in *CheckoutInput) error {
	if len(in.Items) == 0 {
		return domain.ErrEmptyCart
	}
	if strings.TrimSpace(in.Shipping.Method) == "" || in.Shipping.Cost < 0 {
		return domain.ErrInvalidShipping
	}
	in.Customer.Email = strings.ToLower(strings.TrimSpace(in.Customer.Email))
	if !in.Customer.BillingAddress.Complete() {
		in.Customer.BillingAddress = in.Customer.ShippingAddress
	}
	if err := uc.Validate.Struct(in.Customer); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidAddress, err)
	}
	for _, it := range in.Items {
		if it.ProductID == uuid.Nil || it.VariantID == uuid.Nil || strings.TrimSpace(it.SKU) == "" || it.Quantity < 1 {
			return fmt.Errorf("%w (sku %q)", domain.ErrInvalidLineItem, it.SKU)
		}
	}
	return nil
}

// CreateOrder converts a cart into a persisted order as one atomic unit.
// Any failure after validation leaves the system in its pre-call state: no
// stock consumed, no order written, no counters moved.
func (uc *OrderUC) CreateOrder(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	if err := uc.validateInput(&in); err != nil {
		return nil, err
	}

	var created *domain.Order
	err := uc.Tx.Execute(ctx, func(r domain.Repos) error {
		now := uc.now()

		// Re-price every line from the catalog. Client-submitted prices,
		// names and images are never trusted.
		items := make([]domain.OrderItem, 0, len(in.Items))
		stock := make([]domain.StockItem, 0, len(in.Items))
		subTotal := 0.0
		for _, it := range in.Items {
			p, v, sz, err := r.Products().FindVariantAndSize(ctx, it.ProductID, it.VariantID, it.SKU)
			if err != nil {
				return err
			}
			if !v.Active {
				return fmt.Errorf("%w (%s)", domain.ErrVariantInactive, p.Name)
			}
			// Fast pre-check; the authoritative guard is Reserve below.
			if sz.Stock < it.Quantity {
				return &domain.InsufficientStockError{SKUs: []string{sz.SKU}}
			}
			subTotal += v.Price * float64(it.Quantity)
			items = append(items, domain.OrderItem{
				ID:          uuid.New(),
				ProductID:   p.ID,
				VariantID:   v.ID,
				SKU:         sz.SKU,
				Name:        p.Name,
				VariantInfo: fmt.Sprintf("Color: %s, Size: %s", v.ColorName, sz.Label),
				UnitPrice:   v.Price,
				Quantity:    it.Quantity,
				ImageURL:    v.MainImage(),
			})
			stock = append(stock, domain.StockItem{ProductID: p.ID, VariantID: v.ID, SKU: sz.SKU, Quantity: it.Quantity})
		}
		subTotal = round2(subTotal)

		// Promo evaluation inside the same transaction. A code that became
		// ineligible between cart display and checkout does not block the
		// sale: the order proceeds without a discount.
		var applied domain.AppliedPromoCode
		var promo *domain.PromoCode
		if code := domain.NormalizePromoCode(in.PromoCode); code != "" {
			p, err := r.Promos().FindByCode(ctx, code)
			switch {
			case errors.Is(err, domain.ErrNotFound):
			case err != nil:
				return err
			default:
				eval := &PromoUC{Promos: r.Promos(), Users: r.Users(), Products: r.Products(), Categories: uc.Categories, Now: uc.Now}
				lines := make([]CartLine, 0, len(items))
				for _, it := range items {
					lines = append(lines, CartLine{ProductID: it.ProductID, UnitPrice: it.UnitPrice, Quantity: it.Quantity})
				}
				res, evalErr := eval.Evaluate(ctx, p, lines, in.UserID)
				var inel *domain.PromoIneligibleError
				if evalErr != nil && !errors.As(evalErr, &inel) {
					return evalErr
				}
				if evalErr == nil {
					applied = *res
					promo = p
				}
			}
		}

		if err := r.Inventory().Reserve(ctx, stock); err != nil {
			return err
		}

		status := domain.OrderStatusPendingPayment
		if strings.EqualFold(in.Payment.Status, "completed") {
			status = domain.OrderStatusProcessing
		}
		o := &domain.Order{
			ID:              uuid.New(),
			CustomOrderID:   newCustomOrderID(now),
			OrderDate:       now,
			Email:           in.Customer.Email,
			PhoneNumber:     in.Customer.PhoneNumber,
			ShippingAddress: in.Customer.ShippingAddress,
			BillingAddress:  in.Customer.BillingAddress,
			Items:           items,
			SubTotal:        subTotal,
			ShippingMethod:  in.Shipping.Method,
			ShippingCost:    in.Shipping.Cost,
			Promo:           applied,
			DiscountAmount:  applied.DiscountAmount,
			GrandTotal:      round2(subTotal - applied.DiscountAmount + in.Shipping.Cost),
			Status:          status,
			UserID:          in.UserID,
			Payment:         in.Payment,
		}
		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}

		if applied.Applied() && applied.DiscountAmount > 0 {
			if err := r.Promos().IncrementUsage(ctx, *applied.PromoCodeID); err != nil {
				return err
			}
			if promo.OneTimePerUser && in.UserID != nil {
				rec := &domain.UsedPromoCode{
					ID:          uuid.New(),
					UserID:      *in.UserID,
					Code:        applied.Code,
					PromoCodeID: *applied.PromoCodeID,
					OrderID:     o.ID,
					UsedAt:      now,
				}
				if err := r.Users().AppendUsedPromo(ctx, rec); err != nil {
					return err
				}
			}
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransitionStatus moves an order to a new status. Entering Cancelled or
// Refunded from any other state restitutes the order's stock exactly once;
// the restock and the status write commit as one unit.
func (uc *OrderUC) TransitionStatus(ctx context.Context, customOrderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	var updated *domain.Order
	err := uc.Tx.Execute(ctx, func(r domain.Repos) error {
		o, err := r.Orders().FindByCustomID(ctx, customOrderID)
		if err != nil {
			return err
		}
		if newStatus.ReleasesStock() && !o.Status.ReleasesStock() {
			if err := r.Inventory().Restock(ctx, o.StockItems()); err != nil {
				return err
			}
		}
		o.Status = newStatus
		if err := r.Orders().Save(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Lookup is the guest order lookup, keyed by (customOrderId, email). Any
// mismatch is a generic not-found.
func (uc *OrderUC) Lookup(ctx context.Context, customOrderID, email string) (*domain.Order, error) {
	id := strings.TrimSpace(customOrderID)
	e := strings.ToLower(strings.TrimSpace(email))
	if id == "" || e == "" {
		return nil, domain.ErrNotFound
	}
	return uc.Orders.FindByCustomIDAndEmail(ctx, id, e)
}

func (uc *OrderUC) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	return uc.Orders.ListByUser(ctx, userID)
}

func (uc *OrderUC) ListAll(ctx context.Context) ([]domain.Order, error) {
	return uc.Orders.ListAll(ctx)
}

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// newCustomOrderID builds a human-readable id. Global uniqueness is enforced
// by the unique index on orders.custom_order_id, not by this generator.
func newCustomOrderID(now time.Time) string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = orderIDAlphabet[int(buf[i])%len(orderIDAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), buf)
}
