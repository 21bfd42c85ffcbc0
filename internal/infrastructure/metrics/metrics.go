package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Sale metrics
	SalesRecorded prometheus.Counter
	SaleAmount    prometheus.Histogram

	// Transaction metrics
	TransactionsCreated *prometheus.CounterVec
	TransactionsDecided *prometheus.CounterVec
	ApprovalDuration    prometheus.Histogram

	// Reconciliation metrics
	ReconciliationRuns     prometheus.Counter
	ReconciliationDuration prometheus.Histogram
	BalanceDrift           prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		SalesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finance_partner_sales_recorded_total",
			Help: "Total number of sale entries recorded",
		}),
		SaleAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "finance_partner_sale_amount",
			Help:    "Sale entry amounts",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		}),

		TransactionsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_transactions_created_total",
				Help: "Total number of transactions created, by domain",
			},
			[]string{"domain"},
		),
		TransactionsDecided: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_transactions_decided_total",
				Help: "Total approval decisions, by domain and outcome",
			},
			[]string{"domain", "status"},
		),
		ApprovalDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "finance_partner_approval_duration_seconds",
			Help:    "Duration of approval operations",
			Buckets: prometheus.DefBuckets,
		}),

		ReconciliationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finance_partner_reconciliation_runs_total",
			Help: "Total number of full balance rebuilds",
		}),
		ReconciliationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "finance_partner_reconciliation_duration_seconds",
			Help:    "Duration of full balance rebuilds",
			Buckets: prometheus.DefBuckets,
		}),
		BalanceDrift: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "finance_partner_balance_drift_partners",
			Help: "Number of partners whose recorded balance differs from the derived value",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finance_partner_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "finance_partner_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_cache_hits_total",
				Help: "Total cache hits",
			},
			[]string{"key_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finance_partner_cache_misses_total",
				Help: "Total cache misses",
			},
			[]string{"key_type"},
		),
	}
}
