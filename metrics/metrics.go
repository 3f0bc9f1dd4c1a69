// Package metrics defines the Prometheus collectors of the tower data API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Key constants are exported primarily for documentation reasons. Typically,
// they will not be used programmatically outside of defining the collectors.

// Keys for tower metrics.
const (
	PoolCreateAttemptsTotalKey    = "tower_pool_create_attempts_total"
	PoolAcquireAttemptsTotalKey   = "tower_pool_acquire_attempts_total"
	TableFetchTotalKey            = "tower_table_fetch_total"
	TableFetchRowsTotalKey        = "tower_table_fetch_rows_total"
	DataFileReadsTotalKey         = "tower_data_file_reads_total"
	HTTPRequestsTotalKey          = "tower_http_requests_total"
	HTTPRequestDurationSecondsKey = "tower_http_request_duration_seconds"
	LogRotationsTotalKey          = "tower_log_rotations_total"
	LogRotatedBytesTotalKey       = "tower_log_rotated_bytes_total"

	Fail = "fail"
	Ok   = "ok"
)

// Collectors for tower metrics.
var (
	PoolCreateAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: PoolCreateAttemptsTotalKey,
		Help: "Cumulative number of connection pool creation attempts.",
	}, []string{"status"})
	PoolAcquireAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: PoolAcquireAttemptsTotalKey,
		Help: "Cumulative number of attempts to check out a pooled connection.",
	}, []string{"status"})
	TableFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: TableFetchTotalKey,
		Help: "Cumulative number of full-table reads.",
	}, []string{"table", "status"})
	TableFetchRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: TableFetchRowsTotalKey,
		Help: "Cumulative number of rows returned by full-table reads.",
	}, []string{"table"})
	DataFileReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: DataFileReadsTotalKey,
		Help: "Cumulative number of static data file reads.",
	}, []string{"file", "status"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: HTTPRequestsTotalKey,
		Help: "Cumulative number of served HTTP requests.",
	}, []string{"method", "code"})
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    HTTPRequestDurationSecondsKey,
		Help:    "Duration of served HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	LogRotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: LogRotationsTotalKey,
		Help: "Cumulative number of log file rotations.",
	})
	LogRotatedBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: LogRotatedBytesTotalKey,
		Help: "Cumulative number of bytes moved out of the active log file by rotation.",
	})
)

// TowerCollectors returns all collectors of the tower data API.
func TowerCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		PoolCreateAttemptsTotal,
		PoolAcquireAttemptsTotal,
		TableFetchTotal,
		TableFetchRowsTotal,
		DataFileReadsTotal,
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		LogRotationsTotal,
		LogRotatedBytesTotal,
	}
}
