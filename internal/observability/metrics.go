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
	// Feed metrics
	FeedEventsReceived *prometheus.CounterVec
	FeedEventErrors    *prometheus.CounterVec
	FeedReconnects     prometheus.Counter
	CoinsCreated       prometheus.Counter
	TradesStored       prometheus.Counter
	WSMessageLatency   prometheus.Histogram

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ViewBuildDuration   *prometheus.HistogramVec

	// Poller metrics
	PollRuns *prometheus.CounterVec

	// Market monitor metrics
	MonitorRuns     *prometheus.CounterVec
	MonitorDuration prometheus.Histogram
	CoinsRefreshed  prometheus.Counter
	RowsPurged      *prometheus.CounterVec
	ActiveCoins     prometheus.Gauge

	// Solana metrics
	RPCCallLatency *prometheus.HistogramVec

	// Health metrics
	LastFeedEvent         prometheus.Gauge
	LastSuccessfulMonitor prometheus.Gauge
	RPCHealthy            prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "coin_dashboard"
	}

	return &Metrics{
		FeedEventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "events_received_total",
			Help:      "Total number of feed events received by type",
		}, []string{"tx_type"}),
		FeedEventErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "event_errors_total",
			Help:      "Total number of feed events that failed to apply",
		}, []string{"tx_type", "error_type"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),
		CoinsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "coins_created_total",
			Help:      "Total number of coins created from launch events",
		}),
		TradesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trades_stored_total",
			Help:      "Total number of trades stored",
		}),
		WSMessageLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ws_message_latency_seconds",
			Help:      "WebSocket message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ViewBuildDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "build_duration_seconds",
			Help:      "View payload assembly duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view"}),

		PollRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "runs_total",
			Help:      "Total number of poll ticks by task and outcome",
		}, []string{"task", "status"}),

		MonitorRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "runs_total",
			Help:      "Total number of market monitor runs by status",
		}, []string{"status"}),
		MonitorDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "duration_seconds",
			Help:      "Market monitor run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		CoinsRefreshed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "coins_refreshed_total",
			Help:      "Total number of coin market refreshes",
		}),
		RowsPurged: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "rows_purged_total",
			Help:      "Total number of rows removed by retention",
		}, []string{"table"}),
		ActiveCoins: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "active_coins",
			Help:      "Number of active coins at the last monitor run",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		LastFeedEvent: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_feed_event_timestamp",
			Help:      "Unix timestamp of the last applied feed event",
		}),
		LastSuccessfulMonitor: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_monitor_timestamp",
			Help:      "Unix timestamp of the last successful monitor run",
		}),
		RPCHealthy: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "rpc_healthy",
			Help:      "1 when the last Solana RPC health check passed",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFeedEvent increments the feed events counter and stamps the last event time.
func RecordFeedEvent(txType string, unixSeconds float64) {
	DefaultMetrics.FeedEventsReceived.WithLabelValues(txType).Inc()
	DefaultMetrics.LastFeedEvent.Set(unixSeconds)
}

// RecordFeedError records a feed event that failed to apply.
func RecordFeedError(txType, errorType string) {
	DefaultMetrics.FeedEventErrors.WithLabelValues(txType, errorType).Inc()
}

// RecordFeedReconnect increments the reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordCoinCreated increments the coins created counter.
func RecordCoinCreated() {
	DefaultMetrics.CoinsCreated.Inc()
}

// RecordTradeStored increments the trades stored counter.
func RecordTradeStored() {
	DefaultMetrics.TradesStored.Inc()
}

// RecordWSMessage records WebSocket message handling latency.
func RecordWSMessage(seconds float64) {
	DefaultMetrics.WSMessageLatency.Observe(seconds)
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, code string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordViewBuild records view assembly latency.
func RecordViewBuild(view string, seconds float64) {
	DefaultMetrics.ViewBuildDuration.WithLabelValues(view).Observe(seconds)
}

// RecordPollRun records a poll tick outcome: "ok", "error" or "skipped".
func RecordPollRun(task, status string) {
	DefaultMetrics.PollRuns.WithLabelValues(task, status).Inc()
}

// RecordMonitorRun records a market monitor run.
func RecordMonitorRun(status string, durationSeconds float64, activeCoins int) {
	DefaultMetrics.MonitorRuns.WithLabelValues(status).Inc()
	DefaultMetrics.MonitorDuration.Observe(durationSeconds)
	DefaultMetrics.ActiveCoins.Set(float64(activeCoins))
}

// RecordMonitorSuccess stamps the last successful monitor run.
func RecordMonitorSuccess(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulMonitor.Set(unixSeconds)
}

// RecordCoinRefreshed increments the coin refresh counter.
func RecordCoinRefreshed() {
	DefaultMetrics.CoinsRefreshed.Inc()
}

// RecordRowsPurged adds purged rows for a table.
func RecordRowsPurged(table string, n int64) {
	DefaultMetrics.RowsPurged.WithLabelValues(table).Add(float64(n))
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// SetRPCHealthy records the result of the last RPC health check.
func SetRPCHealthy(ok bool) {
	if ok {
		DefaultMetrics.RPCHealthy.Set(1)
		return
	}
	DefaultMetrics.RPCHealthy.Set(0)
}
