package services

import (
	"context"
	"log"

	"commerce-core/internal/domain"
)

// carrierStatusMap fixes the carrier's asynchronous status vocabulary onto the
// internal transition targets. Anything absent here is logged and dropped.
var carrierStatusMap = map[string]domain.OrderStatus{
	"confirmed":    domain.StatusShipped,
	"allocated":    domain.StatusShipped,
	"picking_up":   domain.StatusShipped,
	"picked":       domain.StatusShipped,
	"dropping_off": domain.StatusShipped,
	"delivered":    domain.StatusDelivered,

	"cancelled":         domain.StatusCancelled,
	"rejected":          domain.StatusCancelled,
	"returned":          domain.StatusCancelled,
	"courier_not_found": domain.StatusCancelled,
}

// CarrierEvent is the parsed payload of one inbound carrier status push.
type CarrierEvent struct {
	ExternalOrderID string
	ExternalStatus  string
	TrackingNumber  string
}

// HandleCarrierEvent applies one carrier status push. Deliveries are
// at-least-once and unordered, so every failure mode short of an internal
// storage error is a logged discard, never an error to the sender: unknown
// orders, unknown statuses, duplicate or regressive statuses, and transitions
// the state table rejects.
func (s *OrderService) HandleCarrierEvent(ctx context.Context, evt CarrierEvent) {
	order, err := s.orders.FindByCarrierOrderID(ctx, evt.ExternalOrderID)
	if err != nil {
		log.Printf("carrier webhook %s: lookup failed: %v", evt.ExternalOrderID, err)
		s.countWebhook("lookup_error")
		return
	}
	if order == nil {
		log.Printf("carrier webhook %s: no matching order, discarding", evt.ExternalOrderID)
		s.countWebhook("unknown_order")
		return
	}

	if evt.TrackingNumber != "" && evt.TrackingNumber != order.TrackingNumber {
		if err := s.orders.UpdateTracking(ctx, order.ID, evt.TrackingNumber); err != nil {
			log.Printf("order %s: tracking update failed: %v", order.OrderNumber, err)
		} else {
			s.invalidateOrderCache(order.OrderNumber)
		}
	}

	target, ok := carrierStatusMap[evt.ExternalStatus]
	if !ok {
		log.Printf("order %s: unknown carrier status %q, discarding", order.OrderNumber, evt.ExternalStatus)
		s.countWebhook("unknown_status")
		return
	}

	if target == order.Status {
		s.countWebhook("duplicate")
		return
	}
	if tp, tok := target.Priority(); tok {
		if cp, cok := order.Status.Priority(); cok && tp <= cp {
			log.Printf("order %s: carrier status %q would regress %s, discarding",
				order.OrderNumber, evt.ExternalStatus, order.Status)
			s.countWebhook("stale")
			return
		}
	}

	if _, err := s.Transition(ctx, order.ID, target, TransitionOptions{TrackingNumber: evt.TrackingNumber}); err != nil {
		if IsIllegalTransition(err) {
			// Racing webhooks arrive in any order; an illegal hop just means
			// the order is not there yet (or already past it).
			log.Printf("order %s: carrier status %q maps to illegal transition, discarding: %v",
				order.OrderNumber, evt.ExternalStatus, err)
			s.countWebhook("illegal")
			return
		}
		log.Printf("order %s: carrier webhook transition failed: %v", order.OrderNumber, err)
		s.countWebhook("error")
		return
	}
	s.countWebhook("applied")
}

func (s *OrderService) countWebhook(outcome string) {
	if s.orderMetrics == nil {
		return
	}
	s.orderMetrics.Webhooks.WithLabelValues(outcome).Inc()
}
