package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results recorded on minicart_cart_operations_total.
const (
	resultApplied = "applied"
	resultNoop    = "noop"
	resultUnknown = "unknown_product"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minicart_cart_operations_total",
			Help: "Cart operations by operation name and result",
		},
		[]string{"operation", "result"},
	)

	cartEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minicart_cart_entries",
		Help: "Number of distinct entries in the cart",
	})

	cartItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minicart_cart_items",
		Help: "Number of units in the cart",
	})

	cartTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "minicart_cart_total",
		Help: "Cart total in currency units",
	})
)
