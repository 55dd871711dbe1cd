package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "fleetpulse_"

const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultNotFound = "not_found"
)

var (
	registerOnce sync.Once

	ingestRecords     *prometheus.CounterVec
	batchRequests     *prometheus.CounterVec
	analyticsRequests *prometheus.CounterVec
	analyticsLatency  prometheus.Histogram
)

// Init registers service metrics with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		ingestRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_records_total",
				Help: "Ingested telemetry records by class and result",
			},
			[]string{"class", "result"},
		)
		batchRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "batch_requests_total",
				Help: "Batch ingest requests by result",
			},
			[]string{"result"},
		)
		analyticsRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analytics_requests_total",
				Help: "Performance analytics requests by result",
			},
			[]string{"result"},
		)
		analyticsLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analytics_window_seconds",
				Help:    "Latency of performance window evaluation",
				Buckets: prometheus.DefBuckets,
			},
		)

		prometheus.MustRegister(ingestRecords, batchRequests, analyticsRequests, analyticsLatency)
	})
}

// IngestRecorded counts one ingested record.
func IngestRecorded(class, result string) {
	if ingestRecords == nil {
		return
	}
	ingestRecords.WithLabelValues(class, result).Inc()
}

// BatchRecorded counts one batch request.
func BatchRecorded(result string) {
	if batchRequests == nil {
		return
	}
	batchRequests.WithLabelValues(result).Inc()
}

// AnalyticsRecorded counts one analytics request and observes its latency.
func AnalyticsRecorded(result string, elapsed time.Duration) {
	if analyticsRequests == nil {
		return
	}
	analyticsRequests.WithLabelValues(result).Inc()
	analyticsLatency.Observe(elapsed.Seconds())
}
