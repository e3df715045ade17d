package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts transcription requests by endpoint and outcome.
	// Labels: endpoint (transcribe/translate), status (success/<error kind>)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramble_requests_total",
			Help: "Total number of transcription requests by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDuration tracks full pipeline latency per endpoint.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ramble_request_duration_seconds",
			Help:    "End to end request processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"endpoint"},
	)

	// InferenceDuration tracks time spent inside the recognition worker.
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ramble_inference_duration_seconds",
			Help:    "Recognition worker execution duration in seconds by model",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"model"},
	)

	// InferenceQueueWait tracks time spent waiting for a device slot.
	InferenceQueueWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ramble_inference_queue_wait_seconds",
			Help:    "Time spent waiting for a free device slot in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	// ModelLoadsTotal counts weight loads by model and outcome.
	ModelLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramble_model_loads_total",
			Help: "Total number of model load attempts by model and outcome",
		},
		[]string{"model", "status"},
	)

	// ModelsLoaded gauges how many model handles are resident.
	ModelsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ramble_models_loaded",
			Help: "Number of recognition models currently loaded in memory",
		},
	)

	// ConversionFailuresTotal counts decoder failures by reason.
	// Labels: reason (decode/timeout)
	ConversionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramble_conversion_failures_total",
			Help: "Total number of audio conversion failures by reason",
		},
		[]string{"reason"},
	)

	// CacheEventsTotal counts result cache lookups by outcome.
	// Labels: event (hit/miss/error/store)
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ramble_result_cache_events_total",
			Help: "Total number of transcription result cache events",
		},
		[]string{"event"},
	)
)

// RecordRequest records one finished request with its outcome label.
func RecordRequest(endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(endpoint, status).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveInference records one recognition worker run.
func ObserveInference(model string, seconds float64) {
	InferenceDuration.WithLabelValues(model).Observe(seconds)
}

// ObserveQueueWait records how long a call waited for a device slot.
func ObserveQueueWait(seconds float64) {
	InferenceQueueWait.Observe(seconds)
}

// RecordModelLoad records one load attempt and keeps the resident gauge
// in step with successful loads.
func RecordModelLoad(model string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ModelLoadsTotal.WithLabelValues(model, status).Inc()
	if success {
		ModelsLoaded.Inc()
	}
}

// RecordConversionFailure records a decoder failure.
func RecordConversionFailure(reason string) {
	ConversionFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordCacheEvent records a result cache lookup outcome.
func RecordCacheEvent(event string) {
	CacheEventsTotal.WithLabelValues(event).Inc()
}
