package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string         `json:"name" gorm:"size:255;not null"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Variants  []ProductVariant `json:"variants" gorm:"foreignKey:ProductID"`
	Promotion *Promotion       `json:"promotion,omitempty" gorm:"foreignKey:ProductID"`
}

// Available treats soft-deleted or inactive products as not found for
// order-time availability checks.
func (p *Product) Available() bool {
	return p != nil && p.Active && !p.DeletedAt.Valid
}

type ProductVariant struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID   uint64          `json:"productId" gorm:"not null;index"`
	Name        string          `json:"name" gorm:"size:255"`
	SKU         string          `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(18,2);not null"`
	Stock       int64           `json:"stock" gorm:"not null;default:0"`
	WeightGrams int64           `json:"weightGrams" gorm:"not null;default:0"`
	Active      bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (v *ProductVariant) Available() bool {
	return v != nil && v.Active && !v.DeletedAt.Valid
}

// Promotion carries a fractional discount applied per line at checkout.
type Promotion struct {
	ID               uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID        uint64          `json:"productId" gorm:"not null;index"`
	DiscountFraction decimal.Decimal `json:"discountFraction" gorm:"type:decimal(6,4);not null"`
	StartsAt         time.Time       `json:"startsAt"`
	EndsAt           time.Time       `json:"endsAt"`
	Active           bool            `json:"active" gorm:"not null;default:true"`
}

func (p *Promotion) ActiveAt(t time.Time) bool {
	return p != nil && p.Active && !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}

type Cart struct {
	ID        uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64     `json:"userId" gorm:"not null;index"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

type CartItem struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	CartID    uint64 `json:"cartId" gorm:"not null;index"`
	ProductID uint64 `json:"productId" gorm:"not null"`
	VariantID uint64 `json:"variantId" gorm:"not null"`
	Quantity  int64  `json:"quantity" gorm:"not null"`

	Product *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}
