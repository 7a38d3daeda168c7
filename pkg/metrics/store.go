package metrics

import (
	"strconv"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/objectstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics is the Prometheus implementation of objectstore.Recorder.
type storeMetrics struct {
	uploadsTotal      *prometheus.CounterVec
	uploadBytes       *prometheus.CounterVec
	downloadsTotal    *prometheus.CounterVec
	downloadBytes     *prometheus.CounterVec
	deletesTotal      *prometheus.CounterVec
	queriesTotal      *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// operationBuckets covers the object-store latency range, from a
// dedup fast path to a large streamed upload.
var operationBuckets = []float64{
	1,     // 1ms - dedup hit, catalog-only work
	10,    // 10ms
	50,    // 50ms - small object writes
	100,   // 100ms
	500,   // 500ms
	1000,  // 1s - medium objects
	5000,  // 5s - large objects
	30000, // 30s - very large streams
}

// NewStoreMetrics creates a Prometheus-backed recorder for the object
// store coordinators.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// A nil recorder makes objectstore.NewStore fall back to its no-op
// recorder, so disabled metrics cost nothing.
func NewStoreMetrics() objectstore.Recorder {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &storeMetrics{
		uploadsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_uploads_total",
				Help: "Total number of committed uploads by storage class and dedup outcome",
			},
			[]string{"storage_class", "dedup"},
		),
		uploadBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_upload_bytes_total",
				Help: "Total bytes accepted by uploads, including deduplicated content",
			},
			[]string{"storage_class"},
		),
		downloadsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_downloads_total",
				Help: "Total number of downloads by storage class",
			},
			[]string{"storage_class"},
		),
		downloadBytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_download_bytes_total",
				Help: "Total bytes served by downloads",
			},
			[]string{"storage_class"},
		),
		deletesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_deletes_total",
				Help: "Total number of completed deletes by storage class",
			},
			[]string{"storage_class"},
		),
		queriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "juststorage_queries_total",
				Help: "Total number of list and search queries by operation",
			},
			[]string{"operation"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "juststorage_operation_duration_milliseconds",
				Help:    "Duration of object-store operations in milliseconds",
				Buckets: operationBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *storeMetrics) RecordUpload(class objectstore.StorageClass, dedup bool, size int64, elapsed time.Duration) {
	m.uploadsTotal.WithLabelValues(string(class), strconv.FormatBool(dedup)).Inc()
	m.uploadBytes.WithLabelValues(string(class)).Add(float64(size))
	m.operationDuration.WithLabelValues("upload").Observe(float64(elapsed.Milliseconds()))
}

func (m *storeMetrics) RecordDownload(class objectstore.StorageClass, size int64, elapsed time.Duration) {
	m.downloadsTotal.WithLabelValues(string(class)).Inc()
	m.downloadBytes.WithLabelValues(string(class)).Add(float64(size))
	m.operationDuration.WithLabelValues("download").Observe(float64(elapsed.Milliseconds()))
}

func (m *storeMetrics) RecordDelete(class objectstore.StorageClass, elapsed time.Duration) {
	m.deletesTotal.WithLabelValues(string(class)).Inc()
	m.operationDuration.WithLabelValues("delete").Observe(float64(elapsed.Milliseconds()))
}

func (m *storeMetrics) RecordQuery(op string, elapsed time.Duration) {
	m.queriesTotal.WithLabelValues(op).Inc()
	m.operationDuration.WithLabelValues(op).Observe(float64(elapsed.Milliseconds()))
}
