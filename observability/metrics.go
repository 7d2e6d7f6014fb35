package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric names exported on /metrics.
const (
	MetricNormalizeTime     = "receiptkit_normalize_duration_seconds"
	MetricNormalizeFailures = "receiptkit_normalize_failures_total"
	MetricNormalizePixels   = "receiptkit_normalize_pixels_total"
	MetricOCRTime           = "receiptkit_ocr_duration_seconds"
	MetricScans             = "receiptkit_scans_total"
)

// Metrics holds the Prometheus collectors for normalization, OCR and scans.
// All methods are safe on a nil receiver so components can run without
// metrics wired in.
type Metrics struct {
	registry          *prometheus.Registry
	normalizeTime     prometheus.Histogram
	normalizeFailures *prometheus.CounterVec
	normalizePixels   prometheus.Counter
	ocrTime           *prometheus.HistogramVec
	scans             *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		normalizeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricNormalizeTime,
			Help:    "Time spent normalizing a frame, including encoding.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		normalizeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricNormalizeFailures,
			Help: "Normalization failures by error kind.",
		}, []string{"kind"}),
		normalizePixels: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricNormalizePixels,
			Help: "Pixels passed through the threshold transform.",
		}),
		ocrTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricOCRTime,
			Help:    "Time spent in the OCR engine.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricScans,
			Help: "Receipt scans by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.normalizeTime, m.normalizeFailures, m.normalizePixels, m.ocrTime, m.scans)
	return m
}

func (m *Metrics) ObserveNormalize(d time.Duration, pixels int) {
	if m == nil {
		return
	}
	m.normalizeTime.Observe(d.Seconds())
	m.normalizePixels.Add(float64(pixels))
}

func (m *Metrics) NormalizeFailed(kind string) {
	if m == nil {
		return
	}
	m.normalizeFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveOCR(engine string, d time.Duration) {
	if m == nil {
		return
	}
	m.ocrTime.WithLabelValues(engine).Observe(d.Seconds())
}

func (m *Metrics) Scan(outcome string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
