package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	artifactTotal   *prometheus.CounterVec
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intellexa",
			Subsystem: "worker",
			Name:      "material_process_total",
			Help:      "Total processed materials by pipeline outcome.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intellexa",
			Subsystem: "worker",
			Name:      "material_process_duration_seconds",
			Help:      "Material processing duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "intellexa",
			Subsystem: "worker",
			Name:      "material_process_in_flight",
			Help:      "Number of in-flight material processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	artifactTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "intellexa",
			Subsystem: "worker",
			Name:      "artifact_generation_total",
			Help:      "Per-kind artifact generation outcomes.",
		},
		[]string{"service", "kind", "status"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "intellexa",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between material upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, artifactTotal, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		artifactTotal:   artifactTotal,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartMaterial() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishMaterial(service, status string, duration time.Duration) {
	m.processInFlight.Dec()
	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveArtifact(service, kind, status string) {
	m.artifactTotal.WithLabelValues(service, kind, status).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
