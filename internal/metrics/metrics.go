package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type OrderMetrics struct {
	Transitions *prometheus.CounterVec
	Webhooks    *prometheus.CounterVec
	Sweeps      *prometheus.CounterVec
}

func NewOrderMetrics() *OrderMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commerce",
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order status transitions by target status and outcome.",
	}, []string{"target", "outcome"})
	webhooks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commerce",
		Subsystem: "orders",
		Name:      "carrier_webhooks_total",
		Help:      "Inbound carrier webhook deliveries by outcome.",
	}, []string{"outcome"})
	sweeps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "commerce",
		Subsystem: "orders",
		Name:      "sweep_orders_total",
		Help:      "Orders processed by the periodic sweeps.",
	}, []string{"sweep", "outcome"})

	prometheus.MustRegister(transitions, webhooks, sweeps)
	return &OrderMetrics{Transitions: transitions, Webhooks: webhooks, Sweeps: sweeps}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
