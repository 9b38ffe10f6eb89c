package prommetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Tiffanyxxx3238/poopalooza-server/pkg/gateway"
)

// Metrics implements gateway.Metrics using Prometheus.
type Metrics struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	admissionsTotal      *prometheus.CounterVec
	providerCallDuration *prometheus.HistogramVec
	providerCallErrors   *prometheus.CounterVec
	probesTotal          *prometheus.CounterVec
	modelCacheHitsTotal  prometheus.Counter
	modelCacheMissTotal  prometheus.Counter
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of assistant requests by final status.",
		}, []string{"status", "kind"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "End-to-end latency of assistant requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),

		admissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Total number of admission decisions.",
		}, []string{"allowed", "scope"}),

		providerCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Latency of upstream generation calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"model"}),

		providerCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_call_errors_total",
			Help:      "Total number of failed upstream generation calls.",
		}, []string{"model"}),

		probesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_probes_total",
			Help:      "Total number of candidate model probes.",
		}, []string{"model", "success"}),

		modelCacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_cache_hits_total",
			Help:      "Acquisitions served from the cached model.",
		}),

		modelCacheMissTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_cache_misses_total",
			Help:      "Acquisitions that required a probe run.",
		}),
	}
}

func (m *Metrics) RecordRequest(status gateway.Status, kind gateway.Kind, duration time.Duration) {
	m.requestsTotal.WithLabelValues(string(status), string(kind)).Inc()
	m.requestDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

func (m *Metrics) RecordAdmission(allowed bool, scope gateway.Kind) {
	m.admissionsTotal.WithLabelValues(strconv.FormatBool(allowed), string(scope)).Inc()
}

func (m *Metrics) RecordProviderCall(model string, duration time.Duration, err error) {
	m.providerCallDuration.WithLabelValues(model).Observe(duration.Seconds())
	if err != nil {
		m.providerCallErrors.WithLabelValues(model).Inc()
	}
}

func (m *Metrics) RecordProbe(model string, success bool) {
	m.probesTotal.WithLabelValues(model, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) RecordModelCacheHit() {
	m.modelCacheHitsTotal.Inc()
}

func (m *Metrics) RecordModelCacheMiss() {
	m.modelCacheMissTotal.Inc()
}
