// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Wallet-watch metrics
	WatchTicks          prometheus.Counter
	WalletEventsEmitted prometheus.Counter
	WalletFetchErrors   prometheus.Counter

	// Discovery metrics
	CandidatesDiscovered prometheus.Counter
	CandidatesRetained   prometheus.Gauge

	// Classification metrics
	CandidatesClassified *prometheus.CounterVec
	CheckFailures        *prometheus.CounterVec

	// Notification metrics
	AlertsSent   *prometheus.CounterVec
	AlertsFailed *prometheus.CounterVec

	// Budget metrics
	BudgetUnitsUsed prometheus.Gauge
	BudgetResets    prometheus.Counter

	// Health metrics
	LastSuccessfulWatchTick     prometheus.Gauge
	LastSuccessfulDiscoveryTick prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "eth_token_sentry"
	}

	return &Metrics{
		WatchTicks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "ticks_total",
			Help:      "Total number of wallet-watch ticks executed",
		}),
		WalletEventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "events_emitted_total",
			Help:      "Total number of new wallet-activity events emitted",
		}),
		WalletFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "fetch_errors_total",
			Help:      "Total number of per-address transfer fetch failures",
		}),

		CandidatesDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_total",
			Help:      "Total number of pair candidates discovered",
		}),
		CandidatesRetained: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_retained",
			Help:      "Current number of candidates awaiting a terminal outcome",
		}),

		CandidatesClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "outcomes_total",
			Help:      "Total number of terminal classification outcomes by kind",
		}, []string{"outcome"}),
		CheckFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classify",
			Name:      "check_failures_total",
			Help:      "Total number of degraded check lookups by check",
		}, []string{"check"}),

		AlertsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "alerts_sent_total",
			Help:      "Total number of alerts delivered by kind",
		}, []string{"kind"}),
		AlertsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "alerts_failed_total",
			Help:      "Total number of alert deliveries that failed by kind",
		}, []string{"kind"}),

		BudgetUnitsUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "budget",
			Name:      "units_used",
			Help:      "Provider quota units consumed this period",
		}),
		BudgetResets: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "budget",
			Name:      "resets_total",
			Help:      "Total number of monthly budget resets",
		}),

		LastSuccessfulWatchTick: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_watch_tick_timestamp",
			Help:      "Unix timestamp of the last completed wallet-watch tick",
		}),
		LastSuccessfulDiscoveryTick: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_discovery_tick_timestamp",
			Help:      "Unix timestamp of the last completed discovery tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
