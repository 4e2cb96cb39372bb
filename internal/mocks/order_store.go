package mocks

import (
	"context"
	"sync"
	"time"

	"commerce-core/internal/domain"
	"commerce-core/internal/repository"
)

// FakeOrderStore is an in-memory repository.OrderRepository with the same
// semantics as the gorm implementation: atomic create-with-decrement, and
// transitions serialized under one lock with stock restoration applied in the
// same critical section.
type FakeOrderStore struct {
	mu      sync.Mutex
	seq     uint64
	Orders  map[uint64]*domain.Order
	Stock   map[uint64]int64 // variant ID -> stock
	Cleared []uint64         // cart IDs cleared by CreateWithItems
}

var _ repository.OrderRepository = (*FakeOrderStore)(nil)

func NewFakeOrderStore() *FakeOrderStore {
	return &FakeOrderStore{
		Orders: make(map[uint64]*domain.Order),
		Stock:  make(map[uint64]int64),
	}
}

func (f *FakeOrderStore) CreateWithItems(_ context.Context, order *domain.Order, cartID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, item := range order.Items {
		stock, ok := f.Stock[item.VariantID]
		if !ok {
			return domain.ErrProductUnavailable
		}
		if stock < item.Quantity {
			return &domain.InsufficientStockError{
				VariantID: item.VariantID,
				SKU:       item.SKU,
				Requested: item.Quantity,
				Available: stock,
			}
		}
	}
	for _, item := range order.Items {
		f.Stock[item.VariantID] -= item.Quantity
	}

	f.seq++
	order.ID = f.seq
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	stored := cloneOrder(order)
	f.Orders[order.ID] = stored
	if cartID != 0 {
		f.Cleared = append(f.Cleared, cartID)
	}
	return nil
}

func (f *FakeOrderStore) FindByID(_ context.Context, id uint64) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.Orders[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, nil
}

func (f *FakeOrderStore) FindByNumber(_ context.Context, number string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.Orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (f *FakeOrderStore) FindByCarrierOrderID(_ context.Context, carrierOrderID string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.Orders {
		if o.CarrierOrderID != "" && o.CarrierOrderID == carrierOrderID {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (f *FakeOrderStore) FindPendingBefore(_ context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	return f.findIDs(domain.StatusPending, func(o *domain.Order) bool {
		return !o.CreatedAt.After(cutoff)
	}, limit), nil
}

func (f *FakeOrderStore) FindDeliveredBefore(_ context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	return f.findIDs(domain.StatusDelivered, func(o *domain.Order) bool {
		return o.DeliveredAt != nil && !o.DeliveredAt.After(cutoff)
	}, limit), nil
}

func (f *FakeOrderStore) findIDs(status domain.OrderStatus, match func(*domain.Order) bool, limit int) []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uint64
	for id := uint64(1); id <= f.seq; id++ {
		o, ok := f.Orders[id]
		if !ok || o.Status != status || !match(o) {
			continue
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids
}

func (f *FakeOrderStore) Transition(_ context.Context, orderID uint64, fn repository.TransitionFunc) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.Orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	working := cloneOrder(stored)
	restoreStock, err := fn(working)
	if err != nil {
		return nil, err
	}

	f.Orders[orderID] = cloneOrder(working)
	if restoreStock {
		for _, item := range working.Items {
			f.Stock[item.VariantID] += item.Quantity
		}
	}
	return working, nil
}

func (f *FakeOrderStore) UpdateCarrierOrder(_ context.Context, orderID uint64, carrierOrderID, trackingNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.Orders[orderID]; ok {
		o.CarrierOrderID = carrierOrderID
		o.TrackingNumber = trackingNumber
	}
	return nil
}

func (f *FakeOrderStore) UpdateTracking(_ context.Context, orderID uint64, trackingNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.Orders[orderID]; ok {
		o.TrackingNumber = trackingNumber
	}
	return nil
}

// Put seeds an order directly, assigning an ID, for tests that need a specific
// starting state.
func (f *FakeOrderStore) Put(order *domain.Order) *domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	order.ID = f.seq
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	f.Orders[order.ID] = cloneOrder(order)
	return order
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = make([]domain.OrderItem, len(o.Items))
	copy(c.Items, o.Items)
	return &c
}
