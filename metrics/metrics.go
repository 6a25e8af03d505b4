// Package metrics exposes Prometheus metrics for the storage service and
// serves them on a dedicated listener.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer owns the metric registry and the HTTP listener exposing it
// on /metrics. It also carries the storage-operation instruments shared by
// the request handlers.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server

	storageOperations *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates a metrics server for the given namespace, listening on
// listenAddr. An empty listenAddr still yields a usable recorder; only
// serving is disabled.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &MetricsServer{
		registry: registry,
		storageOperations: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations by operation, backend and outcome",
			},
			[]string{"operation", "backend", "outcome"},
		),
		operationDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Duration of storage operations in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"operation", "backend"},
		),
		httpRequests: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of API requests by handler, method and status code",
			},
			[]string{"handler", "code", "method"},
		),
		httpDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"handler", "code", "method"},
		),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.srv = &http.Server{
		Addr:         listenAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return m, nil
}

// RecordStorageOperation counts one storage operation and observes its
// duration. The outcome label is "success" unless err is set.
func (m *MetricsServer) RecordStorageOperation(operation, backend string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.storageOperations.WithLabelValues(operation, backend, outcome).Inc()
	m.operationDuration.WithLabelValues(operation, backend).Observe(duration.Seconds())
}

// InstrumentHandler wraps an HTTP handler with request counting and duration
// observation under the given handler name.
func (m *MetricsServer) InstrumentHandler(name string, next http.HandlerFunc) http.HandlerFunc {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(m.httpDuration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.httpRequests.MustCurryWith(labels), next)).ServeHTTP
}

// ListenAndServe serves the metrics endpoint until Shutdown is called.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv.Addr == "" {
		return fmt.Errorf("no metrics listen address configured")
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
