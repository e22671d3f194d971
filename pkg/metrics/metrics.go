package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus instruments for the storefront.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	ordersCreatedTotal    prometheus.Counter
	reconciliationsTotal  *prometheus.CounterVec
	stockReservationFails prometheus.Counter
}

var globalCollector *Collector

// GetCollector returns the process-wide collector, creating it on first use.
func GetCollector() *Collector {
	if globalCollector == nil {
		globalCollector = newCollector()
	}
	return globalCollector
}

func newCollector() *Collector {
	return &Collector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		ordersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Orders successfully created through checkout",
			},
		),
		reconciliationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_reconciliations_total",
				Help: "Inbound payment webhook outcomes",
			},
			[]string{"result"},
		),
		stockReservationFails: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stock_reservation_failures_total",
				Help: "Checkout attempts rejected for insufficient stock",
			},
		),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (c *Collector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOrderCreated counts a successful checkout.
func (c *Collector) RecordOrderCreated() {
	c.ordersCreatedTotal.Inc()
}

// RecordReconciliation counts a webhook outcome (reconciled, no_match, already_settled).
func (c *Collector) RecordReconciliation(result string) {
	c.reconciliationsTotal.WithLabelValues(result).Inc()
}

// RecordStockReservationFailure counts an InsufficientStock rejection.
func (c *Collector) RecordStockReservationFailure() {
	c.stockReservationFails.Inc()
}
