package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusPaid       OrderStatus = "PAID"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusFailed     OrderStatus = "FAILED"
)

type ShippingType string

const (
	ShippingDomestic      ShippingType = "DOMESTIC"
	ShippingInternational ShippingType = "INTERNATIONAL"
)

type Order struct {
	ID          uint64      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber string      `json:"orderNumber" gorm:"size:64;not null;uniqueIndex"`
	UserID      uint64      `json:"userId" gorm:"not null;index"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(16);not null;default:'PENDING';index"`

	Currency     string           `json:"currency" gorm:"size:3;not null"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty" gorm:"type:decimal(18,6)"`
	Subtotal     decimal.Decimal  `json:"subtotal" gorm:"type:decimal(18,2);not null"`
	Discount     decimal.Decimal  `json:"discount" gorm:"type:decimal(18,2);not null"`
	Tax          decimal.Decimal  `json:"tax" gorm:"type:decimal(18,2);not null"`
	ShippingCost decimal.Decimal  `json:"shippingCost" gorm:"type:decimal(18,2);not null"`
	Total        decimal.Decimal  `json:"total" gorm:"type:decimal(18,2);not null"`

	ShippingType   ShippingType `json:"shippingType" gorm:"type:varchar(16);not null"`
	RecipientName  string       `json:"recipientName" gorm:"size:128"`
	RecipientPhone string       `json:"recipientPhone" gorm:"size:32"`
	AddressLine    string       `json:"addressLine" gorm:"size:255"`
	City           string       `json:"city" gorm:"size:128"`
	PostalCode     string       `json:"postalCode" gorm:"size:16"`
	CountryCode    string       `json:"countryCode" gorm:"size:2;not null"`
	CourierCode    string       `json:"courierCode,omitempty" gorm:"size:32"`
	ServiceCode    string       `json:"serviceCode,omitempty" gorm:"size:32"`
	ZoneID         *uint64      `json:"zoneId,omitempty"`
	TrackingNumber string       `json:"trackingNumber,omitempty" gorm:"size:64"`
	CarrierOrderID string       `json:"carrierOrderId,omitempty" gorm:"size:64;index"`

	PaymentMethod   string `json:"paymentMethod,omitempty" gorm:"size:32"`
	PaymentProvider string `json:"paymentProvider,omitempty" gorm:"size:32"`
	PaymentRef      string `json:"paymentRef,omitempty" gorm:"size:64"`
	InvoiceNumber   string `json:"invoiceNumber,omitempty" gorm:"size:64"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime;index"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty" gorm:"index"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CanceledAt  *time.Time `json:"canceledAt,omitempty"`
}

// OrderItem snapshots a purchased line at order-creation time. Name and SKU are
// denormalized so the row keeps rendering after the product is edited or removed.
type OrderItem struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     uint64          `json:"orderId" gorm:"not null;index"`
	ProductID   uint64          `json:"productId" gorm:"not null"`
	VariantID   uint64          `json:"variantId" gorm:"not null;index"`
	ProductName string          `json:"productName" gorm:"size:255;not null"`
	VariantName string          `json:"variantName" gorm:"size:255"`
	SKU         string          `json:"sku" gorm:"size:64;not null"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(18,2);not null"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:decimal(18,2);not null"`
	Subtotal    decimal.Decimal `json:"subtotal" gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

// transitions is the single source of truth for legal status changes. Every
// caller (user action, admin action, webhook, sweep) funnels through it.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPaid, StatusCancelled, StatusFailed},
	StatusPaid:       {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusCompleted},
	StatusFailed:     {StatusPending},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// statusPriority orders the forward lifecycle so out-of-order carrier webhooks
// can be detected as regressions. CANCELLED and FAILED sit outside the chain.
var statusPriority = map[OrderStatus]int{
	StatusPending:    0,
	StatusPaid:       1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
	StatusCompleted:  5,
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority returns the position of s on the forward lifecycle chain, and false
// for statuses outside it (CANCELLED, FAILED).
func (s OrderStatus) Priority() (int, bool) {
	p, ok := statusPriority[s]
	return p, ok
}

// StockCommitted reports whether an order in status s still holds the stock
// decremented at creation time. The reservation is taken when the order row is
// inserted, not when payment lands, so PENDING counts as committed.
func (s OrderStatus) StockCommitted() bool {
	switch s {
	case StatusPending, StatusPaid, StatusProcessing, StatusShipped:
		return true
	}
	return false
}

// ApplyStatus moves the order to target, stamping the matching lifecycle
// timestamp exactly once. Legality must have been checked by the caller.
func (o *Order) ApplyStatus(target OrderStatus, now time.Time) {
	o.Status = target
	switch target {
	case StatusPaid:
		if o.PaidAt == nil {
			o.PaidAt = &now
		}
	case StatusShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case StatusCompleted:
		if o.CompletedAt == nil {
			o.CompletedAt = &now
		}
	case StatusCancelled:
		if o.CanceledAt == nil {
			o.CanceledAt = &now
		}
	}
}
