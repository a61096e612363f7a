package handlers

import (
	"encoding/json"
	"net/http"
)

// GetLibraryStats returns track index statistics
func (h *Handlers) GetLibraryStats(w http.ResponseWriter, r *http.Request) {
	total, err := h.lib.TrackCount(r.Context())
	if err != nil {
		writeJSONError(w, "Failed to query track index", http.StatusInternalServerError)
		return
	}

	progress := h.indexer.GetProgress()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"totalTracks":   total,
		"indexing":      progress.IsIndexing,
		"lastIndexTime": h.indexer.LastIndexTime(),
	})
}

// GetTrack looks up quick info for a track URL
func (h *Handlers) GetTrack(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSONError(w, "Missing track URL", http.StatusBadRequest)
		return
	}

	qi, found, err := h.lib.QuickInfo(r.Context(), url)
	if err != nil {
		writeJSONError(w, "Failed to query track index", http.StatusInternalServerError)
		return
	}
	if !found {
		writeJSONError(w, "Track not found", http.StatusNotFound)
		return
	}

	playCount, _, err := h.lib.PlayCount(r.Context(), url)
	if err != nil {
		writeJSONError(w, "Failed to query track index", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"url":            url,
		"trackName":      qi.TrackName,
		"leadArtistName": qi.LeadArtistName,
		"albumName":      qi.AlbumName,
		"playtimeMs":     qi.PlaytimeMs,
		"playCount":      playCount,
	})
}

// RenameTrack changes a track's URL in the index. The change is broadcast
// to all open playlists, which rename matching entries and drop cached
// metadata so it reloads from the new URL.
func (h *Handlers) RenameTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldURL string `json:"oldUrl"`
		NewURL string `json:"newUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldURL == "" || req.NewURL == "" {
		writeJSONError(w, "Missing oldUrl or newUrl", http.StatusBadRequest)
		return
	}

	// RenameURL broadcasts to OnURLChanged, which takes h.mu; h.mu must
	// not be held here.
	if err := h.lib.RenameURL(r.Context(), req.OldURL, req.NewURL); err != nil {
		writeJSONError(w, "Failed to rename track", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "renamed")
}

// TriggerScan requests a library scan if one is not already running
func (h *Handlers) TriggerScan(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsIndexing() {
		writeJSONStatus(w, "already_indexing")
		return
	}
	h.indexer.TriggerIndex()
	writeJSONStatus(w, "scan_triggered")
}
