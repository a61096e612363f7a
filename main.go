package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jukebox/internal/handlers"
	"jukebox/internal/indexer"
	"jukebox/internal/library"
	"jukebox/internal/logging"
	"jukebox/internal/memory"
	"jukebox/internal/middleware"
	"jukebox/internal/startup"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	// Set the Go soft memory limit before anything allocates
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize track index
	libStart := time.Now()
	lib, err := library.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize track index: %v", err)
	}
	defer func() {
		if err := lib.Close(); err != nil {
			logging.Error("Failed to close track index: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(libStart))

	// Refresh the connection gauge periodically
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		for range ticker.C {
			lib.UpdateDBMetrics()
		}
	}()

	// Initialize indexer
	startup.LogIndexerInit(config.IndexInterval)
	idx := indexer.New(lib, config.MusicDir, config.IndexInterval)

	// Start indexer in background (non-blocking)
	go func() {
		if err := idx.Start(); err != nil {
			logging.Error("Failed to start indexer: %v", err)
		}
	}()
	startup.LogIndexerStarted()

	// Initialize handlers
	h := handlers.New(lib, idx, config)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	measuredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(measuredHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics are served on their own port so they stay reachable even
	// when the API port is saturated
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", h.MetricsHandler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, idx)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Playlist routes
	pl := r.PathPrefix("/api/playlists").Subrouter()
	pl.HandleFunc("", h.CreatePlaylist).Methods("POST")
	pl.HandleFunc("", h.ListPlaylists).Methods("GET")
	pl.HandleFunc("/{id}", h.GetPlaylist).Methods("GET")
	pl.HandleFunc("/{id}", h.ClosePlaylist).Methods("DELETE")
	pl.HandleFunc("/{id}/import", h.ImportPlaylist).Methods("POST")
	pl.HandleFunc("/{id}/export", h.ExportPlaylist).Methods("GET")
	pl.HandleFunc("/{id}/save", h.SavePlaylist).Methods("POST")
	pl.HandleFunc("/{id}/clear", h.ClearPlaylist).Methods("POST")
	pl.HandleFunc("/{id}/verify", h.VerifyPlaylist).Methods("POST")
	pl.HandleFunc("/{id}/unplayed", h.UnplayedCount).Methods("GET")
	pl.HandleFunc("/{id}/suggest-name", h.SuggestName).Methods("GET")
	pl.HandleFunc("/{id}/update-duration", h.UpdateDuration).Methods("POST")
	pl.HandleFunc("/{id}/merge", h.MergeMetadata).Methods("POST")
	pl.HandleFunc("/{id}/entries", h.AddEntry).Methods("POST")
	pl.HandleFunc("/{id}/entries/{pos}", h.GetEntry).Methods("GET")
	pl.HandleFunc("/{id}/entries/{pos}", h.RemoveEntry).Methods("DELETE")
	pl.HandleFunc("/{id}/entries/{pos}/move", h.MoveEntry).Methods("POST")
	pl.HandleFunc("/{id}/entries/{pos}/verify", h.VerifyEntry).Methods("POST")
	pl.HandleFunc("/{id}/entries/{pos}/played", h.MarkPlayed).Methods("POST")
	pl.HandleFunc("/{id}/entries/{pos}/now-playing", h.SetNowPlayingInfo).Methods("POST")

	// Library routes
	lib := r.PathPrefix("/api/library").Subrouter()
	lib.HandleFunc("/stats", h.GetLibraryStats).Methods("GET")
	lib.HandleFunc("/track", h.GetTrack).Methods("GET")
	lib.HandleFunc("/rename", h.RenameTrack).Methods("POST")
	lib.HandleFunc("/scan", h.TriggerScan).Methods("POST")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server, idx *indexer.Indexer) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	startup.LogShutdownStep("Stopping indexer")
	idx.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Stopping metrics server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Error("Metrics server shutdown error: %v", err)
		}
		cancel()
		startup.LogShutdownStepComplete("Metrics server stopped")
	}

	startup.LogShutdownStep("Stopping HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server stopped")

	startup.LogShutdownComplete()
}
