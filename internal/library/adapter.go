package library

import (
	"context"
	"io"

	"jukebox/internal/logging"
	"jukebox/internal/playlist"
	"jukebox/internal/tags"
	"jukebox/internal/vfs"
)

// indexAdapter exposes the Library through the context-free collaborator
// interface the playlist package consumes. Query errors are logged and
// reported as "not found"; a broken index must never make verification or
// metadata loading fatal.
type indexAdapter struct {
	lib *Library
}

// PlaylistIndex returns the library as a playlist.LibraryIndex.
func (l *Library) PlaylistIndex() playlist.LibraryIndex {
	return &indexAdapter{lib: l}
}

func (a *indexAdapter) QuickInfo(url string) (playlist.TrackInfo, bool) {
	qi, found, err := a.lib.QuickInfo(context.Background(), url)
	if err != nil {
		logging.Error("quick-info lookup for %q: %v", url, err)
		return playlist.TrackInfo{}, false
	}
	if !found {
		return playlist.TrackInfo{}, false
	}
	return playlist.TrackInfo{
		TrackName:      qi.TrackName,
		LeadArtistName: qi.LeadArtistName,
		AlbumName:      qi.AlbumName,
		PlaytimeMs:     qi.PlaytimeMs,
	}, true
}

func (a *indexAdapter) URLByMetadata(artist, album, track string) string {
	url, err := a.lib.URLByMetadata(context.Background(), artist, album, track)
	if err != nil {
		logging.Error("url-by-metadata lookup for %q/%q/%q: %v", artist, album, track, err)
		return ""
	}
	return url
}

func (a *indexAdapter) CanonicalURL(url string) string {
	canonical, err := a.lib.CanonicalURL(context.Background(), url)
	if err != nil {
		logging.Error("canonical-url lookup for %q: %v", url, err)
		return url
	}
	return canonical
}

func (a *indexAdapter) PlayCount(url string) (int, bool) {
	count, found, err := a.lib.PlayCount(context.Background(), url)
	if err != nil {
		logging.Error("play-count lookup for %q: %v", url, err)
		return 0, false
	}
	return count, found
}

// fsOpener narrows *vfs.File to the playlist.File interface.
type fsOpener struct {
	fsys *vfs.FS
}

func (o fsOpener) Open(locator string) (playlist.File, error) {
	return o.fsys.Open(locator)
}

// tagAdapter converts tag reads into the playlist package's metadata type.
type tagAdapter struct {
	reader *tags.Reader
}

func (a tagAdapter) ReadQuickTags(stream io.ReadSeeker) (playlist.TrackInfo, error) {
	qt, err := a.reader.ReadQuickTags(stream)
	if err != nil {
		return playlist.TrackInfo{}, err
	}
	return playlist.TrackInfo{
		TrackName:      qt.TrackName,
		LeadArtistName: qt.LeadArtistName,
		AlbumName:      qt.AlbumName,
		PlaytimeMs:     qt.PlaytimeMs,
	}, nil
}

// PlaylistResolver wires the library, the filesystem, and the tag reader
// into the resolver playlist entries consult.
func (l *Library) PlaylistResolver() *playlist.Resolver {
	return &playlist.Resolver{
		Library: l.PlaylistIndex(),
		FS:      fsOpener{fsys: vfs.New()},
		Tags:    tagAdapter{reader: tags.New()},
	}
}
