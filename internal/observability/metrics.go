// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Monitor metrics
	MonitorCyclesTotal   *prometheus.CounterVec
	ConfigsEvaluated     prometheus.Counter
	TriggersFired        *prometheus.CounterVec
	ActiveConfigs        prometheus.Gauge
	MonitorCycleDuration prometheus.Histogram

	// Price metrics
	PriceFetchesTotal *prometheus.CounterVec
	StalePricesServed prometheus.Counter
	PriceFetchLatency prometheus.Histogram

	// Swap metrics
	SwapsTotal      *prometheus.CounterVec
	SwapDuration    *prometheus.HistogramVec
	SwapFeeLamports prometheus.Histogram

	// Relay metrics
	BundlesSubmitted *prometheus.CounterVec
	SubmissionDelay  prometheus.Histogram

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
	RPCEndpointHealthy  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_sniper"
	}

	return &Metrics{
		// Monitor metrics
		MonitorCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "cycles_total",
			Help:      "Total number of monitor cycles by status",
		}, []string{"status"}),
		ConfigsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "configs_evaluated_total",
			Help:      "Total number of config evaluations performed",
		}),
		TriggersFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "triggers_fired_total",
			Help:      "Total number of triggers fired by type",
		}, []string{"trigger"}),
		ActiveConfigs: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "active_configs",
			Help:      "Number of active snipe configs in the last cycle",
		}),
		MonitorCycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Monitor cycle duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),

		// Price metrics
		PriceFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetches_total",
			Help:      "Total number of price fetches by result",
		}, []string{"result"}),
		StalePricesServed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "stale_prices_served_total",
			Help:      "Total number of cached prices served after a fetch failure",
		}),
		PriceFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "fetch_latency_seconds",
			Help:      "Price fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Swap metrics
		SwapsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "swaps_total",
			Help:      "Total number of swaps by dex and outcome",
		}, []string{"dex", "outcome"}),
		SwapDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "duration_seconds",
			Help:      "Swap execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dex"}),
		SwapFeeLamports: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "fee_lamports",
			Help:      "Priority fees paid per swap in lamports",
			Buckets:   []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		}),

		// Relay metrics
		BundlesSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "bundles_submitted_total",
			Help:      "Total number of bundle submissions by status",
		}, []string{"status"}),
		SubmissionDelay: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "submission_delay_seconds",
			Help:      "Random delay applied before bundle submission",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5},
		}),

		// Health metrics
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last successful monitor cycle",
		}),
		RPCEndpointHealthy: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "rpc_endpoint_healthy",
			Help:      "1 when the active RPC endpoint passes health probes",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCycle records one monitor cycle. Active config count and cycle
// duration are only meaningful for successful cycles.
func RecordCycle(success bool, active int, d time.Duration) {
	if !success {
		DefaultMetrics.MonitorCyclesTotal.WithLabelValues("error").Inc()
		return
	}
	DefaultMetrics.MonitorCyclesTotal.WithLabelValues("success").Inc()
	DefaultMetrics.ActiveConfigs.Set(float64(active))
	DefaultMetrics.MonitorCycleDuration.Observe(d.Seconds())
	DefaultMetrics.LastSuccessfulCycle.SetToCurrentTime()
}

// RecordEvaluation counts one config evaluation within a cycle.
func RecordEvaluation() {
	DefaultMetrics.ConfigsEvaluated.Inc()
}

// RecordTrigger increments the trigger counter for a trigger type.
func RecordTrigger(trigger string) {
	DefaultMetrics.TriggersFired.WithLabelValues(trigger).Inc()
}

// RecordPriceFetch records an upstream price fetch with its latency.
func RecordPriceFetch(success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	DefaultMetrics.PriceFetchesTotal.WithLabelValues(result).Inc()
	DefaultMetrics.PriceFetchLatency.Observe(d.Seconds())
}

// RecordStalePrice increments the stale price counter.
func RecordStalePrice() {
	DefaultMetrics.StalePricesServed.Inc()
}

// RecordSwap records a swap outcome for a dex with its duration.
func RecordSwap(dex, outcome string, d time.Duration) {
	DefaultMetrics.SwapsTotal.WithLabelValues(dex, outcome).Inc()
	DefaultMetrics.SwapDuration.WithLabelValues(dex).Observe(d.Seconds())
}

// RecordSwapFee records the priority fee paid for a successful swap.
func RecordSwapFee(feeLamports uint64) {
	DefaultMetrics.SwapFeeLamports.Observe(float64(feeLamports))
}

// RecordBundle records a bundle submission outcome and the random
// delay applied before it.
func RecordBundle(status string, delay time.Duration) {
	DefaultMetrics.BundlesSubmitted.WithLabelValues(status).Inc()
	DefaultMetrics.SubmissionDelay.Observe(delay.Seconds())
}

// RecordRPCHealth sets the active RPC endpoint health gauge.
func RecordRPCHealth(healthy bool) {
	if healthy {
		DefaultMetrics.RPCEndpointHealthy.Set(1)
	} else {
		DefaultMetrics.RPCEndpointHealthy.Set(0)
	}
}
