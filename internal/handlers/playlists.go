package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"jukebox/internal/playlist"

	"github.com/gorilla/mux"
)

// playlistSummary is the list/detail view of an open playlist.
type playlistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url,omitempty"`
	EntryCount int    `json:"entryCount"`
}

// playlistDetail adds the aggregate names computed over all entries.
type playlistDetail struct {
	playlistSummary
	OverallArtist string      `json:"overallArtist"`
	OverallAlbum  string      `json:"overallAlbum"`
	Entries       []entryView `json:"entries"`
}

// entryView is the JSON shape of a single entry. Building one loads the
// entry's descriptive metadata and play statistics.
type entryView struct {
	Pos            int    `json:"pos"`
	ID             int64  `json:"id"`
	URL            string `json:"url"`
	Verified       bool   `json:"verified"`
	Playable       bool   `json:"playable"`
	TrackName      string `json:"trackName"`
	LeadArtistName string `json:"leadArtistName"`
	AlbumName      string `json:"albumName"`
	PlaytimeMs     int64  `json:"playtimeMs"`
	PlayCount      int    `json:"playCount"`
}

func (h *Handlers) entryView(p *playlist.Playlist, pos int) entryView {
	e := p.At(pos)
	return entryView{
		Pos:            pos,
		ID:             e.ID(),
		URL:            e.URL(),
		Verified:       e.URLVerified(),
		Playable:       !e.URLVerified() || e.URLOk(),
		TrackName:      e.TrackName(h.res),
		LeadArtistName: e.LeadArtistName(h.res),
		AlbumName:      e.AlbumName(h.res),
		PlaytimeMs:     e.PlaytimeMs(h.res),
		PlayCount:      e.PlayCount(h.res),
	}
}

func (h *Handlers) summary(id string, p *playlist.Playlist) playlistSummary {
	return playlistSummary{
		ID:         id,
		Name:       p.Name(),
		URL:        p.URL(),
		EntryCount: p.Len(),
	}
}

// lookupPlaylist resolves the {id} route variable. The caller must hold h.mu.
func (h *Handlers) lookupPlaylist(w http.ResponseWriter, r *http.Request) (string, *playlist.Playlist, bool) {
	id := mux.Vars(r)["id"]
	p, ok := h.open[id]
	if !ok {
		writeJSONError(w, "Playlist not found", http.StatusNotFound)
		return "", nil, false
	}
	return id, p, true
}

// lookupEntry resolves the {pos} route variable against p's bounds.
// The caller must hold h.mu.
func lookupEntry(w http.ResponseWriter, r *http.Request, p *playlist.Playlist) (int, bool) {
	pos, err := strconv.Atoi(mux.Vars(r)["pos"])
	if err != nil || pos < 0 || pos >= p.Len() {
		writeJSONError(w, "Entry position out of range", http.StatusNotFound)
		return 0, false
	}
	return pos, true
}

// resolvePath joins a relative playlist file path onto the playlist
// directory. Absolute paths are used as given.
func (h *Handlers) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.playlistDir, path)
}

// CreatePlaylist opens a new empty playlist and returns its id
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		// An empty body is fine; the playlist gets a name on first save
		// or via SuggestName.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := newPlaylistID()
	p := playlist.New()
	p.SetName(req.Name)
	h.open[id] = p

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.summary(id, p))
}

// ListPlaylists returns summaries of all open playlists
func (h *Handlers) ListPlaylists(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	summaries := make([]playlistSummary, 0, len(h.open))
	for id, p := range h.open {
		summaries = append(summaries, h.summary(id, p))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, summaries)
}

// GetPlaylist returns one playlist with its entries and aggregate names
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	detail := playlistDetail{
		playlistSummary: h.summary(id, p),
		OverallArtist:   p.OverallArtist(h.res),
		OverallAlbum:    p.OverallAlbum(h.res),
		Entries:         make([]entryView, 0, p.Len()),
	}
	for pos := 0; pos < p.Len(); pos++ {
		detail.Entries = append(detail.Entries, h.entryView(p, pos))
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, detail)
}

// ClosePlaylist discards an open playlist
func (h *Handlers) ClosePlaylist(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id, _, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	delete(h.open, id)

	writeJSONStatus(w, "closed")
}

// ImportPlaylist loads a playlist file's entries into an open playlist
func (h *Handlers) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSONError(w, "Missing playlist file path", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	if p.Len() >= h.maxEntries {
		writeJSONError(w, "Playlist is full", http.StatusConflict)
		return
	}

	before := p.Len()
	if err := p.AddFromFile(h.res, h.resolvePath(req.Path), h.maxEntries); err != nil {
		writeJSONError(w, "Failed to import playlist: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// The importer stops at the cap; a playlist filled to the brim means
	// the file likely had more.
	truncated := p.Len() >= h.maxEntries

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"id":           id,
		"name":         p.Name(),
		"entriesAdded": p.Len() - before,
		"truncated":    truncated,
	})
}

// ExportPlaylist renders an open playlist in the requested format and
// returns the text inline
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	format, ok := parseFormat(r.URL.Query().Get("format"))
	if !ok {
		writeJSONError(w, "Unknown playlist format", http.StatusBadRequest)
		return
	}
	var flags playlist.SaveFlags
	if r.URL.Query().Get("noExtinf") == "true" {
		flags |= playlist.SaveM3UNoExtInf
	}

	content := p.Export(h.res, format, "", flags, nil)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(content)); err != nil {
		return
	}
}

// SavePlaylist writes an open playlist to a file in the playlist directory
func (h *Handlers) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	if !h.savingEnabled {
		writeJSONError(w, "Playlist saving is disabled", http.StatusForbidden)
		return
	}

	var req struct {
		Path     string `json:"path"`
		NoExtInf bool   `json:"noExtinf"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSONError(w, "Missing playlist file path", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	var flags playlist.SaveFlags
	if req.NoExtInf {
		flags |= playlist.SaveM3UNoExtInf
	}

	path := h.resolvePath(req.Path)
	if err := p.SaveAsFile(h.res, path, flags, nil); err != nil {
		writeJSONError(w, "Failed to save playlist: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"status": "saved",
		"path":   path,
	})
}

// AddEntry appends a track reference to an open playlist
func (h *Handlers) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL        string `json:"url"`
		Artist     string `json:"artist"`
		Album      string `json:"album"`
		Track      string `json:"track"`
		PlaytimeMs int64  `json:"playtimeMs"`
		Verified   bool   `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSONError(w, "Missing track URL", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	if p.Len() >= h.maxEntries {
		writeJSONError(w, "Playlist is full", http.StatusConflict)
		return
	}

	p.Add(playlist.Ref{
		URL:        req.URL,
		Artist:     req.Artist,
		Album:      req.Album,
		Track:      req.Track,
		PlaytimeMs: req.PlaytimeMs,
	}, req.Verified, -1)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, h.entryView(p, p.Len()-1))
}

// GetEntry returns one entry with its metadata loaded
func (h *Handlers) GetEntry(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.entryView(p, pos))
}

// RemoveEntry deletes the entry at a position
func (h *Handlers) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}

	remaining := p.RemoveAt(pos)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]int{
		"entryCount":   p.Len(),
		"sameUrlCount": remaining,
	})
}

// MoveEntry moves the entry at {pos} to another position
func (h *Handlers) MoveEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Missing destination position", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}
	if req.To < 0 || req.To >= p.Len() {
		writeJSONError(w, "Destination position out of range", http.StatusBadRequest)
		return
	}

	p.MovePos(pos, req.To)

	writeJSONStatus(w, "moved")
}

// VerifyEntry resolves the entry's URL against the filesystem and the
// track index. Verification happens at most once per entry.
func (h *Handlers) VerifyEntry(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}

	e := p.At(pos)
	if !e.URLVerified() {
		e.Verify(h.res)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.entryView(p, pos))
}

// VerifyPlaylist verifies every unverified entry and reports the tally
func (h *Handlers) VerifyPlaylist(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	verified, failed := 0, 0
	for pos := 0; pos < p.Len(); pos++ {
		e := p.At(pos)
		if !e.URLVerified() {
			e.Verify(h.res)
		}
		if e.URLOk() {
			verified++
		} else {
			failed++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]int{
		"verified": verified,
		"failed":   failed,
	})
}

// MarkPlayed bumps the play count for the entry's track
func (h *Handlers) MarkPlayed(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}

	e := p.At(pos)
	if err := h.lib.IncrementPlayCount(r.Context(), e.URL()); err != nil {
		writeJSONError(w, "Failed to record play", http.StatusInternalServerError)
		return
	}
	if count, found, err := h.lib.PlayCount(r.Context(), e.URL()); err == nil && found {
		e.SetPlayCount(count)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.entryView(p, pos))
}

// SetNowPlayingInfo applies a stream's realtime title line to an entry
func (h *Handlers) SetNowPlayingInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Info string `json:"info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Missing realtime info", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	pos, ok := lookupEntry(w, r, p)
	if !ok {
		return
	}

	p.At(pos).SetRealtimeInfo(h.res, req.Info)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.entryView(p, pos))
}

// UnplayedCount counts never-played entries at or after a position
func (h *Handlers) UnplayedCount(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	from := 0
	if s := r.URL.Query().Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeJSONError(w, "Invalid from position", http.StatusBadRequest)
			return
		}
		from = v
	}
	max := p.Len()
	if s := r.URL.Query().Get("max"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeJSONError(w, "Invalid max count", http.StatusBadRequest)
			return
		}
		max = v
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]int{
		"unplayed": p.GetUnplayedCount(h.res, from, max),
	})
}

// SuggestName returns a display name and a filesystem-safe file name
// derived from the playlist's aggregate metadata
func (h *Handlers) SuggestName(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{
		"name":     p.SuggestPlaylistName(h.res),
		"fileName": p.SuggestPlaylistFileName(h.res),
	})
}

// ClearPlaylist removes all entries but keeps the playlist open
func (h *Handlers) ClearPlaylist(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	p.Clear()

	writeJSONStatus(w, "cleared")
}

// UpdateDuration pushes a freshly measured duration to all loaded entries
// referencing a URL
func (h *Handlers) UpdateDuration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL        string `json:"url"`
		PlaytimeMs int64  `json:"playtimeMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSONError(w, "Missing track URL", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	p.UpdateURL(h.res, req.URL, req.PlaytimeMs)

	writeJSONStatus(w, "updated")
}

// MergeMetadata fills this playlist's unset name and URL from another
// open playlist
func (h *Handlers) MergeMetadata(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"sourceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SourceID == "" {
		writeJSONError(w, "Missing source playlist id", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, p, ok := h.lookupPlaylist(w, r)
	if !ok {
		return
	}
	src, found := h.open[req.SourceID]
	if !found {
		writeJSONError(w, "Source playlist not found", http.StatusNotFound)
		return
	}
	p.MergeMetaData(src)

	writeJSONStatus(w, "merged")
}

// parseFormat maps the format query parameter onto a playlist format.
// An empty value defaults to M3U.
func parseFormat(s string) (playlist.Format, bool) {
	switch s {
	case "", "m3u":
		return playlist.FormatM3U, true
	case "m3u8":
		return playlist.FormatM3U8, true
	case "pls":
		return playlist.FormatPLS, true
	case "cue":
		return playlist.FormatCUE, true
	case "xspf":
		return playlist.FormatXSPF, true
	default:
		return playlist.FormatM3U, false
	}
}
