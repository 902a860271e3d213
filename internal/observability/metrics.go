package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodconnect_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodconnect_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// UploadsTotal counts image uploads by outcome.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodconnect_uploads_total",
		Help: "Total number of image uploads by outcome",
	}, []string{"status"})

	// FileDeletionsTotal counts physical file deletions by outcome.
	FileDeletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodconnect_file_deletions_total",
		Help: "Total number of physical file deletions by outcome",
	}, []string{"status"})

	// OrphanTagsSwept counts tags removed by the orphan sweep.
	OrphanTagsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodconnect_orphan_tags_swept_total",
		Help: "Total number of orphaned tags removed",
	})

	// CacheRequests counts cache lookups by key class and result.
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodconnect_cache_requests_total",
		Help: "Total cache lookups by key class and result",
	}, []string{"key", "result"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
