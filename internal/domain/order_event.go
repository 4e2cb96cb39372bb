package domain

import "time"

// OrderStatusEvent is the payload published to the notification exchange on
// every successful transition.
type OrderStatusEvent struct {
	OrderID     uint64      `json:"orderId"`
	OrderNumber string      `json:"orderNumber"`
	UserID      uint64      `json:"userId"`
	Status      OrderStatus `json:"status"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

// RoutingKey maps a status onto the topic-exchange routing key consumed by the
// notification service.
func (e OrderStatusEvent) RoutingKey() string {
	switch e.Status {
	case StatusPaid:
		return "order.paid"
	case StatusShipped:
		return "order.shipped"
	case StatusDelivered:
		return "order.delivered"
	case StatusCompleted:
		return "order.completed"
	case StatusCancelled:
		return "order.cancelled"
	case StatusFailed:
		return "order.failed"
	}
	return "order.updated"
}
