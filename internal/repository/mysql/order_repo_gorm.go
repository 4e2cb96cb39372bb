package mysql

import (
	"context"
	"errors"
	"time"

	"commerce-core/internal/domain"
	"commerce-core/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreateWithItems(ctx context.Context, order *domain.Order, cartID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range order.Items {
			if err := decrementStock(tx, &order.Items[i]); err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if cartID != 0 {
			if err := tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// decrementStock commits the item's reservation with a conditional atomic
// update. The floor check lives in the WHERE clause so two concurrent
// checkouts can never both pass against a stale read.
func decrementStock(tx *gorm.DB, item *domain.OrderItem) error {
	var variant domain.ProductVariant
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&variant, item.VariantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductUnavailable
		}
		return err
	}
	if !variant.Available() {
		return domain.ErrProductUnavailable
	}

	res := tx.Model(&domain.ProductVariant{}).
		Where("id = ? AND stock >= ?", item.VariantID, item.Quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.InsufficientStockError{
			VariantID: item.VariantID,
			SKU:       item.SKU,
			Requested: item.Quantity,
			Available: variant.Stock,
		}
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *orderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.findOne(ctx, "order_number = ?", number)
}

func (r *orderRepo) FindByCarrierOrderID(ctx context.Context, carrierOrderID string) (*domain.Order, error) {
	return r.findOne(ctx, "carrier_order_id = ?", carrierOrderID)
}

func (r *orderRepo) findOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Where(query, arg).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	return r.findIDs(ctx, domain.StatusPending, "created_at <= ?", cutoff, limit)
}

func (r *orderRepo) FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]uint64, error) {
	return r.findIDs(ctx, domain.StatusDelivered, "delivered_at <= ?", cutoff, limit)
}

func (r *orderRepo) findIDs(ctx context.Context, status domain.OrderStatus, cond string, cutoff time.Time, limit int) ([]uint64, error) {
	var ids []uint64
	q := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("status = ?", status).
		Where(cond, cutoff).
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepo) Transition(ctx context.Context, orderID uint64, fn repository.TransitionFunc) (*domain.Order, error) {
	var out *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if err := tx.Where("order_id = ?", o.ID).Find(&o.Items).Error; err != nil {
			return err
		}

		restoreStock, err := fn(&o)
		if err != nil {
			return err
		}

		if err := tx.Omit("Items").Save(&o).Error; err != nil {
			return err
		}

		if restoreStock {
			// Unscoped: the credit must land even if the variant was
			// soft-deleted from the catalog after checkout.
			for _, item := range o.Items {
				res := tx.Unscoped().Model(&domain.ProductVariant{}).
					Where("id = ?", item.VariantID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
				if res.Error != nil {
					return res.Error
				}
			}
		}

		out = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateCarrierOrder(ctx context.Context, orderID uint64, carrierOrderID, trackingNumber string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"carrier_order_id": carrierOrderID,
			"tracking_number":  trackingNumber,
		}).Error
}

func (r *orderRepo) UpdateTracking(ctx context.Context, orderID uint64, trackingNumber string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("tracking_number", trackingNumber).Error
}
