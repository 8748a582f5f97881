package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	payoutOutcomeCounter  *prometheus.CounterVec
	dispatchDroppedCount  prometheus.Counter
	workerRunCounter      *prometheus.CounterVec
	stuckPayoutCounter    prometheus.Counter
	queueDepthGauge       prometheus.Gauge
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		payoutOutcomeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_processing_outcomes_total",
			Help: "Terminal outcomes of payout processing runs",
		}, []string{"outcome"})

		dispatchDroppedCount = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payout_dispatches_dropped_total",
			Help: "Payout dispatches dropped because the queue was full",
		})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		stuckPayoutCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payout_stuck_processing_total",
			Help: "Payouts failed by the sweeper after being stuck in processing",
		})

		queueDepthGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "payout_dispatch_queue_depth",
			Help: "Current number of payouts waiting in the dispatch queue",
		})

		prometheus.MustRegister(
			httpDurationHistogram,
			payoutOutcomeCounter,
			dispatchDroppedCount,
			workerRunCounter,
			stuckPayoutCounter,
			queueDepthGauge,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementPayoutOutcome(outcome string) {
	if payoutOutcomeCounter == nil {
		return
	}
	payoutOutcomeCounter.WithLabelValues(outcome).Inc()
}

func IncrementDispatchDropped() {
	if dispatchDroppedCount == nil {
		return
	}
	dispatchDroppedCount.Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}

func AddStuckPayouts(count int) {
	if stuckPayoutCounter == nil {
		return
	}
	stuckPayoutCounter.Add(float64(count))
}

func SetDispatchQueueDepth(depth int) {
	if queueDepthGauge == nil {
		return
	}
	queueDepthGauge.Set(float64(depth))
}
