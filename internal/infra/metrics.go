package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sales_created_total",
		Help: "Sales committed, by training mode",
	}, []string{"training"})

	SaleAmountCentavos = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdv_sale_amount_centavos",
		Help:    "Total amount of committed non-training sales in centavos",
		Buckets: prometheus.ExponentialBuckets(100, 4, 8),
	})

	SalesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_sales_rejected_total",
		Help: "Sales rejected, by error kind",
	}, []string{"kind"})

	CashSessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_cash_sessions_closed_total",
		Help: "Cash sessions closed, by deviation level",
	}, []string{"deviation"})

	CreditPaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_credit_payments_total",
		Help: "Credit payments applied",
	})

	InventoryAdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_inventory_adjustments_total",
		Help: "Inventory adjustments committed, by movement type",
	}, []string{"type"})

	TxRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdv_tx_retries_total",
		Help: "Transactions retried after a serialization failure or deadlock",
	})

	EventsPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_events_publish_failed_total",
		Help: "Domain events that could not be written to the broker",
	}, []string{"type"})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdv_jobs_processed_total",
		Help: "Background jobs processed, by queue and outcome",
	}, []string{"queue", "outcome"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
