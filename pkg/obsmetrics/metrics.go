// Package obsmetrics exposes the controller/worker Prometheus metrics:
// worker population, rule counts, dispatch saturation, probe outcomes,
// RPC latency, and exchange queue depth.
package obsmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker population metrics
	ClientWorkersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "axon_client_workers_total",
			Help: "Number of running client worker processes",
		},
	)

	ServerWorkersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "axon_server_workers_total",
			Help: "Number of running server worker processes",
		},
	)

	WorkerHeartbeatsMissed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axon_worker_heartbeats_missed_total",
			Help: "Total number of missed worker heartbeats by worker ID",
		},
		[]string{"worker_id"},
	)

	// Rule metrics
	ClientRulesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "axon_client_rules_total",
			Help: "Total number of client rules by worker",
		},
		[]string{"worker_id"},
	)

	ServerRulesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "axon_server_rules_total",
			Help: "Total number of server rules by worker",
		},
		[]string{"worker_id"},
	)

	// Probe outcome metrics
	ProbeOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axon_probe_outcomes_total",
			Help: "Total number of classified probe outcomes by protocol and result",
		},
		[]string{"protocol", "result"},
	)

	// Dispatch pool metrics
	DispatchPoolSaturation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "axon_dispatch_pool_saturation",
			Help: "Fraction of a worker's bounded dispatch pool currently in use",
		},
		[]string{"worker_id"},
	)

	// RPC metrics
	RPCCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axon_rpc_calls_total",
			Help: "Total number of controller-to-worker RPC calls by method and status",
		},
		[]string{"method", "status"},
	)

	RPCCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "axon_rpc_call_duration_seconds",
			Help:    "Controller-to-worker RPC call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Exchange metrics
	ExchangeQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "axon_exchange_queue_depth",
			Help: "Number of buffered messages awaiting dispatch per exchange subscriber",
		},
		[]string{"exchange", "subscriber"},
	)

	// Controller sharding metrics
	ShardingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "axon_sharding_duration_seconds",
			Help:    "Time taken to shard a batch of new rules across workers",
			Buckets: prometheus.DefBuckets,
		},
	)

	WorkersSpawnedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "axon_workers_spawned_total",
			Help: "Total number of worker processes spawned by the controller",
		},
	)
)

func init() {
	prometheus.MustRegister(ClientWorkersTotal)
	prometheus.MustRegister(ServerWorkersTotal)
	prometheus.MustRegister(WorkerHeartbeatsMissed)
	prometheus.MustRegister(ClientRulesTotal)
	prometheus.MustRegister(ServerRulesTotal)
	prometheus.MustRegister(ProbeOutcomesTotal)
	prometheus.MustRegister(DispatchPoolSaturation)
	prometheus.MustRegister(RPCCallsTotal)
	prometheus.MustRegister(RPCCallDuration)
	prometheus.MustRegister(ExchangeQueueDepth)
	prometheus.MustRegister(ShardingDuration)
	prometheus.MustRegister(WorkersSpawnedTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
