package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "Pending Payment"
	OrderStatusPending        OrderStatus = "Pending"
	OrderStatusProcessing     OrderStatus = "Processing"
	OrderStatusShipped        OrderStatus = "Shipped"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
	OrderStatusRefunded       OrderStatus = "Refunded"
	OrderStatusFailed         OrderStatus = "Failed"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPendingPayment: {},
	OrderStatusPending:        {},
	OrderStatusProcessing:     {},
	OrderStatusShipped:        {},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
	OrderStatusRefunded:       {},
	OrderStatusFailed:         {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

// ReleasesStock reports whether entering this status returns reserved stock.
func (s OrderStatus) ReleasesStock() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

type Address struct {
	FullName     string `gorm:"size:140" json:"fullName" validate:"required"`
	AddressLine1 string `gorm:"size:255" json:"addressLine1" validate:"required"`
	AddressLine2 string `gorm:"size:255" json:"addressLine2"`
	City         string `gorm:"size:100" json:"city" validate:"required"`
	State        string `gorm:"size:100" json:"state" validate:"required"`
	ZipCode      string `gorm:"size:20" json:"zipCode" validate:"required"`
	Country      string `gorm:"size:80" json:"country" validate:"required"`
}

// Complete reports whether every required address field is present.
func (a Address) Complete() bool {
	return a.FullName != "" && a.AddressLine1 != "" && a.City != "" &&
		a.State != "" && a.ZipCode != "" && a.Country != ""
}

// AppliedPromoCode is the promo snapshot stored on an order.
type AppliedPromoCode struct {
	PromoCodeID      *uuid.UUID   `gorm:"type:uuid;index"`
	Code             string       `gorm:"size:60"`
	DiscountType     DiscountType `gorm:"type:varchar(12)"`
	ValueAtOrderTime float64      `gorm:"type:decimal(12,2)"`
	DiscountAmount   float64      `gorm:"type:decimal(12,2)"`
}

// Applied reports whether a promo was actually used on the order.
func (p AppliedPromoCode) Applied() bool { return p.PromoCodeID != nil }

type PaymentDetails struct {
	Method        string `gorm:"size:40"`
	Status        string `gorm:"size:40"`
	TransactionID string `gorm:"size:140"`
}

// Order is immutable once created except for Status and timestamps. Its items
// are point-in-time snapshots of catalog data: what the customer was charged
// is never recomputed from the live catalog.
type Order struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomOrderID   string    `gorm:"uniqueIndex;size:40"`
	OrderDate       time.Time `gorm:"index"`
	Email           string    `gorm:"size:140;index"`
	PhoneNumber     string    `gorm:"size:50"`
	ShippingAddress Address   `gorm:"embedded;embeddedPrefix:ship_"`
	BillingAddress  Address   `gorm:"embedded;embeddedPrefix:bill_"`
	Items           []OrderItem
	SubTotal        float64          `gorm:"type:decimal(12,2)"`
	ShippingMethod  string           `gorm:"size:60"`
	ShippingCost    float64          `gorm:"type:decimal(12,2)"`
	Promo           AppliedPromoCode `gorm:"embedded;embeddedPrefix:promo_"`
	DiscountAmount  float64          `gorm:"type:decimal(12,2);default:0"`
	GrandTotal      float64          `gorm:"type:decimal(12,2)"`
	Status          OrderStatus      `gorm:"type:varchar(20);index"`
	UserID          *uuid.UUID       `gorm:"type:uuid;index"`
	Payment         PaymentDetails   `gorm:"embedded;embeddedPrefix:pay_"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is a snapshot line, captured from authoritative catalog data at
// order time and independent of later catalog edits.
type OrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;index"`
	VariantID   uuid.UUID `gorm:"type:uuid;index"`
	SKU         string    `gorm:"size:120"`
	Name        string    `gorm:"size:180"`
	VariantInfo string    `gorm:"size:180"`
	UnitPrice   float64   `gorm:"type:decimal(12,2)"`
	Quantity    int       `gorm:"not null"`
	ImageURL    string    `gorm:"size:255"`
}

// StockItems maps the order's lines to their inventory units.
func (o *Order) StockItems() []StockItem {
	items := make([]StockItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, StockItem{ProductID: it.ProductID, VariantID: it.VariantID, SKU: it.SKU, Quantity: it.Quantity})
	}
	return items
}

type OrderRepo interface {
	// Create persists a new order. A custom order id collision surfaces as
	// ErrDuplicateOrderID.
	Create(ctx context.Context, o *Order) error
	Save(ctx context.Context, o *Order) error
	FindByCustomID(ctx context.Context, customOrderID string) (*Order, error)
	// FindByCustomIDAndEmail is the guest lookup: a mismatch on either key is
	// a plain ErrNotFound, never distinguishing which part failed.
	FindByCustomIDAndEmail(ctx context.Context, customOrderID, email string) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
}
