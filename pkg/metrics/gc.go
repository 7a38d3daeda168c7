package metrics

import (
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/gc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// gcMetrics is the Prometheus implementation of gc.Recorder.
type gcMetrics struct {
	runsTotal      *prometheus.CounterVec
	reclaimedBytes prometheus.Counter
	phaseDuration  *prometheus.HistogramVec
}

// NewGCMetrics creates a Prometheus-backed recorder for the garbage
// collector.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewGCMetrics() gc.Recorder {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &gcMetrics{
		runsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_gc_runs_total",
				Help: "Total number of garbage collection phase runs by phase and outcome",
			},
			[]string{"phase", "outcome"},
		),
		reclaimedBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "juststorage_gc_reclaimed_bytes_total",
				Help: "Total bytes reclaimed by the orphan scan",
			},
		),
		phaseDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "juststorage_gc_phase_duration_milliseconds",
				Help: "Duration of garbage collection phases in milliseconds",
				Buckets: []float64{
					10,     // 10ms - empty scan
					100,    // 100ms
					1000,   // 1s
					10000,  // 10s
					60000,  // 1m - large orphan backlog
					300000, // 5m - filesystem reconciliation
				},
			},
			[]string{"phase"},
		),
	}
}

func (m *gcMetrics) RecordRun(phase, outcome string) {
	m.runsTotal.WithLabelValues(phase, outcome).Inc()
}

func (m *gcMetrics) RecordReclaimed(bytes int64) {
	m.reclaimedBytes.Add(float64(bytes))
}

func (m *gcMetrics) ObserveDuration(phase string, elapsed time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(float64(elapsed.Milliseconds()))
}
