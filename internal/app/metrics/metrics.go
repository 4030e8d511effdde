package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "w2t"

// Metrics holds the transcription collectors. A nil *Metrics is valid and
// records nothing, which is what the CLI uses.
type Metrics struct {
	registry       *prometheus.Registry
	transcriptions *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	uploadBytes    prometheus.Histogram
	queueDepth     prometheus.Gauge
}

// New registers the collectors on registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription requests by outcome kind and device.",
		}, []string{"status", "device"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall time of engine calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"device"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 10),
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Requests waiting for the transcription engine.",
		}),
	}
	registry.MustRegister(m.transcriptions, m.duration, m.uploadBytes, m.queueDepth)
	return m
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// ObserveTranscription records one finished transcription. status is the
// error kind, or "ok".
func (m *Metrics) ObserveTranscription(status, device string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.transcriptions.WithLabelValues(status, device).Inc()
	if status == "ok" {
		m.duration.WithLabelValues(device).Observe(elapsed.Seconds())
	}
}

// ObserveUpload records the size of a staged upload.
func (m *Metrics) ObserveUpload(size int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(size))
}

// SetQueueDepth records how many callers wait for the engine.
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
