package repository

import (
	"context"
	"time"

	"commerce-core/internal/domain"
)

// TransitionFunc mutates a locked order inside the transition transaction.
// It returns restoreStock=true when the variants of the order's items must be
// credited back as part of the same transaction.
type TransitionFunc func(o *domain.Order) (restoreStock bool, err error)

type OrderRepository interface {
	// CreateWithItems atomically inserts the order with its items, decrements
	// each variant's stock, and clears the cart. A failed stock decrement
	// aborts the whole transaction.
	CreateWithItems(ctx context.Context, order *domain.Order, cartID uint64) error

	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*domain.Order, error)

	// FindPendingBefore and FindDeliveredBefore feed the expiry and completion
	// sweeps. They return IDs only; each sweep re-reads the order under lock.
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error)
	FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error)

	// Transition locks the order row, applies fn, persists the result, and
	// restores item stock when fn asks for it, all in one transaction.
	Transition(ctx context.Context, orderID uint64, fn TransitionFunc) (*domain.Order, error)

	UpdateCarrierOrder(ctx context.Context, orderID uint64, carrierOrderID, trackingNumber string) error
	UpdateTracking(ctx context.Context, orderID uint64, trackingNumber string) error
}

type CartRepository interface {
	// FindByUser loads the user's cart with items, products (and active
	// promotions) and variants preloaded. Returns nil when the user has no cart.
	FindByUser(ctx context.Context, userID uint64) (*domain.Cart, error)
}

type ZoneRepository interface {
	FindByCountry(ctx context.Context, countryCode string) (*domain.ShippingZone, error)
}
