// Package metrics defines the Prometheus metrics exposed by the jukebox
// service.
//
// All metrics are registered with the default registry via promauto at
// package initialization and are served by the metrics endpoint configured
// in main. Metric names are prefixed with "jukebox_" and grouped by
// subsystem: HTTP, library index, playlists, and the background indexer.
package metrics
