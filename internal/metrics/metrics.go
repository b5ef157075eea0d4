package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersCreated counts successfully created (not yet paid) orders.
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	})

	// PaymentNotifications counts processed webhook notifications by outcome.
	PaymentNotifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payment_notifications_total",
		Help:      "Total number of payment gateway notifications by outcome.",
	}, []string{"outcome"})

	// SignatureFailures counts webhook notifications rejected for a bad
	// signature. A non-zero rate here deserves attention.
	SignatureFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payment_signature_failures_total",
		Help:      "Total number of webhook notifications with an invalid signature.",
	})

	// Settlements counts orders settled to PAID.
	Settlements = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "payment_settlements_total",
		Help:      "Total number of orders settled as paid.",
	})

	// StockConflicts counts settlements aborted because stock ran out
	// between order creation and payment. Each one needs manual
	// reconciliation.
	StockConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "settlement_stock_conflicts_total",
		Help:      "Total number of settlements aborted due to exhausted stock.",
	})
)

func init() {
	prometheus.MustRegister(OrdersCreated, PaymentNotifications, SignatureFailures, Settlements, StockConflicts)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
