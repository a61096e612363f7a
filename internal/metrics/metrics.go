package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jukebox_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Library index metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_library_queries_total",
			Help: "Total number of track library queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jukebox_library_query_duration_seconds",
			Help:    "Track library query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_library_connections_open",
			Help: "Number of open library database connections",
		},
	)
)

// Playlist metrics
var (
	PlaylistImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_playlist_imports_total",
			Help: "Total number of playlist file imports",
		},
		[]string{"format", "status"},
	)

	PlaylistExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_playlist_exports_total",
			Help: "Total number of playlist file exports",
		},
		[]string{"format", "status"},
	)

	PlaylistEntriesAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jukebox_playlist_entries_added_total",
			Help: "Total number of entries added across all playlists",
		},
	)

	URLVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jukebox_url_verifications_total",
			Help: "Total number of URL verification attempts",
		},
		[]string{"outcome"}, // "ok", "failed"
	)

	URLVerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jukebox_url_verification_duration_seconds",
			Help:    "URL verification duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jukebox_indexer_runs_total",
			Help: "Total number of music library scan runs",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_indexer_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed library scan",
		},
	)

	IndexerTracksIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_indexer_tracks_indexed",
			Help: "Number of tracks found during the last library scan",
		},
	)

	IndexerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jukebox_indexer_duration_seconds",
			Help:    "Duration of library scan runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jukebox_indexer_running",
			Help: "Whether a library scan is currently in progress (0 or 1)",
		},
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jukebox_indexer_errors_total",
			Help: "Total number of library scan errors",
		},
	)
)
