package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")

	ErrUpstreamUnavailable    = errors.New("carrier upstream unavailable")
	ErrInvalidDestination     = errors.New("invalid destination postal code")
	ErrNoOptionsFound         = errors.New("no shipping options found")
	ErrUnsupportedDestination = errors.New("no shipping zone covers destination")

	ErrTrackingNumberRequired = errors.New("tracking number required")
	ErrOrderNotEditable       = errors.New("order details can no longer be edited")
)

// IllegalTransitionError rejects a status change not present in the transition
// table. The order is left untouched.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// InsufficientStockError names the variant that cannot cover the requested
// quantity so the caller can surface which line failed.
type InsufficientStockError struct {
	VariantID uint64
	SKU       string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %d (%s): requested %d, available %d",
		e.VariantID, e.SKU, e.Requested, e.Available)
}
