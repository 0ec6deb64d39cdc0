package service

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appErrors "github.com/noah-isme/sma-classroom/pkg/errors"
)

const outcomeOK = "ok"

// MetricsSnapshot is a point-in-time view of the counters, logged on shutdown.
type MetricsSnapshot struct {
	Mutations       uint64  `json:"mutations"`
	FailedMutations uint64  `json:"failed_mutations"`
	Exports         uint64  `json:"exports"`
	AverageExportMs float64 `json:"average_export_ms"`
}

// MetricsService encapsulates Prometheus instrumentation for mutations and exports.
type MetricsService struct {
	registry       *prometheus.Registry
	mutations      *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec

	mutationCount       uint64
	failedMutationCount uint64
	exportCount         uint64
	exportDurationTotal uint64
}

// NewMetricsService registers the core collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "classroom_mutations_total",
		Help: "Total number of store mutations by operation and outcome",
	}, []string{"operation", "outcome"})

	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classroom_export_render_seconds",
		Help:    "Duration of session document rendering",
		Buckets: prometheus.DefBuckets,
	}, []string{"format", "outcome"})

	registry.MustRegister(mutations, exportDuration)

	return &MetricsService{
		registry:       registry,
		mutations:      mutations,
		exportDuration: exportDuration,
	}
}

// Registry exposes the underlying registry for gathering.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordMutation counts a mutation; the outcome label is the error code or "ok".
func (m *MetricsService) RecordMutation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeLabel(err)
	m.mutations.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.mutationCount, 1)
	if err != nil {
		atomic.AddUint64(&m.failedMutationCount, 1)
	}
}

// ObserveExport records how long rendering a document took.
func (m *MetricsService) ObserveExport(format string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.exportDuration.WithLabelValues(format, outcomeLabel(err)).Observe(duration.Seconds())
	atomic.AddUint64(&m.exportCount, 1)
	atomic.AddUint64(&m.exportDurationTotal, uint64(duration.Nanoseconds()))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	exports := atomic.LoadUint64(&m.exportCount)
	total := atomic.LoadUint64(&m.exportDurationTotal)

	var avgExportMs float64
	if exports > 0 {
		avgExportMs = float64(total) / float64(exports) / float64(time.Millisecond)
	}
	return MetricsSnapshot{
		Mutations:       atomic.LoadUint64(&m.mutationCount),
		FailedMutations: atomic.LoadUint64(&m.failedMutationCount),
		Exports:         exports,
		AverageExportMs: avgExportMs,
	}
}

func outcomeLabel(err error) string {
	if err == nil {
		return outcomeOK
	}
	return appErrors.FromError(err).Code
}
