package handlers

import (
	"sync"

	"jukebox/internal/indexer"
	"jukebox/internal/library"
	"jukebox/internal/playlist"
	"jukebox/internal/startup"

	"github.com/google/uuid"
)

type Handlers struct {
	lib           *library.Library
	indexer       *indexer.Indexer
	res           *playlist.Resolver
	playlistDir   string
	maxEntries    int
	savingEnabled bool

	// mu serializes all access to open playlists; they are
	// single-goroutine objects.
	mu   sync.Mutex
	open map[string]*playlist.Playlist
}

func New(lib *library.Library, idx *indexer.Indexer, config *startup.Config) *Handlers {
	h := &Handlers{
		lib:           lib,
		indexer:       idx,
		res:           lib.PlaylistResolver(),
		playlistDir:   config.PlaylistDir,
		maxEntries:    config.MaxPlaylistEntries,
		savingEnabled: config.SavingEnabled,
		open:          make(map[string]*playlist.Playlist),
	}
	lib.RegisterRenameObserver(h)
	return h
}

// OnURLChanged fans a library rename out to every open playlist.
func (h *Handlers) OnURLChanged(oldURL, newURL string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.open {
		p.OnURLChanged(oldURL, newURL)
	}
}

// newPlaylistID returns a fresh registry key.
func newPlaylistID() string {
	return uuid.New().String()
}
