package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"jukebox/internal/indexer"
	"jukebox/internal/library"
	"jukebox/internal/startup"

	"github.com/gorilla/mux"
)

type testEnv struct {
	h           *Handlers
	router      *mux.Router
	lib         *library.Library
	idx         *indexer.Indexer
	musicDir    string
	playlistDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	musicDir := t.TempDir()
	playlistDir := t.TempDir()

	lib, err := library.New(context.Background(), filepath.Join(t.TempDir(), "tracks.db"))
	if err != nil {
		t.Fatalf("Failed to create library: %v", err)
	}
	t.Cleanup(func() {
		if err := lib.Close(); err != nil {
			t.Errorf("Failed to close library: %v", err)
		}
	})

	idx := indexer.New(lib, musicDir, time.Hour)

	config := &startup.Config{
		MusicDir:           musicDir,
		PlaylistDir:        playlistDir,
		MaxPlaylistEntries: 100,
		SavingEnabled:      true,
	}
	h := New(lib, idx, config)

	return &testEnv{
		h:           h,
		router:      newTestRouter(h),
		lib:         lib,
		idx:         idx,
		musicDir:    musicDir,
		playlistDir: playlistDir,
	}
}

// newTestRouter mirrors the route table the server installs.
func newTestRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

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

	lib := r.PathPrefix("/api/library").Subrouter()
	lib.HandleFunc("/stats", h.GetLibraryStats).Methods("GET")
	lib.HandleFunc("/track", h.GetTrack).Methods("GET")
	lib.HandleFunc("/rename", h.RenameTrack).Methods("POST")
	lib.HandleFunc("/scan", h.TriggerScan).Methods("POST")

	return r
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// createPlaylist opens a playlist through the API and returns its id.
func (env *testEnv) createPlaylist(t *testing.T, name string) string {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/playlists", map[string]string{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("CreatePlaylist status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var summary struct {
		ID string `json:"id"`
	}
	decodeJSON(t, rec, &summary)
	if summary.ID == "" {
		t.Fatal("CreatePlaylist returned empty id")
	}
	return summary.ID
}

// addTrack inserts a track row directly into the index.
func (env *testEnv) addTrack(t *testing.T, track library.Track) {
	t.Helper()

	tx, err := env.lib.BeginBatch()
	if err != nil {
		t.Fatalf("Failed to begin batch: %v", err)
	}
	err = env.lib.UpsertTrack(tx, &track)
	if err := env.lib.EndBatch(tx, err); err != nil {
		t.Fatalf("Failed to upsert track: %v", err)
	}
}

func TestGetVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/version", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var info startup.BuildInfo
	decodeJSON(t, rec, &info)
	if info.Version != startup.Version {
		t.Errorf("Version = %q, want %q", info.Version, startup.Version)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}

func TestCreateAndListPlaylists(t *testing.T) {
	env := newTestEnv(t)

	id := env.createPlaylist(t, "Morning Mix")

	rec := env.do(t, http.MethodGet, "/api/playlists", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ListPlaylists status = %d", rec.Code)
	}

	var summaries []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		EntryCount int    `json:"entryCount"`
	}
	decodeJSON(t, rec, &summaries)
	if len(summaries) != 1 {
		t.Fatalf("ListPlaylists returned %d playlists, want 1", len(summaries))
	}
	if summaries[0].ID != id || summaries[0].Name != "Morning Mix" || summaries[0].EntryCount != 0 {
		t.Errorf("Summary = %+v", summaries[0])
	}
}

func TestGetPlaylistNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/playlists/no-such-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestClosePlaylist(t *testing.T) {
	env := newTestEnv(t)

	id := env.createPlaylist(t, "Short lived")

	rec := env.do(t, http.MethodDelete, "/api/playlists/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ClosePlaylist status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/playlists/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Status after close = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
