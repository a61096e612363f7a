package playlist

import (
	"path/filepath"
	"testing"
)

func TestCheckAddInfoFromLibrary(t *testing.T) {
	idx := newFakeIndex()
	idx.addTrack("file:///music/queen/bohemian.mp3", TrackInfo{
		TrackName:      "Bohemian Rhapsody",
		LeadArtistName: "Queen",
		AlbumName:      "A Night at the Opera",
		PlaytimeMs:     354000,
	})
	idx.plays["file:///music/queen/bohemian.mp3"] = 12
	res := &Resolver{Library: idx}

	e := newEntry(Ref{URL: "file:///music/queen/bohemian.mp3"}, true)

	if got := e.TrackName(res); got != "Bohemian Rhapsody" {
		t.Errorf("TrackName = %q", got)
	}
	if got := e.LeadArtistName(res); got != "Queen" {
		t.Errorf("LeadArtistName = %q", got)
	}
	if got := e.AlbumName(res); got != "A Night at the Opera" {
		t.Errorf("AlbumName = %q", got)
	}
	if got := e.PlaytimeMs(res); got != 354000 {
		t.Errorf("PlaytimeMs = %d", got)
	}
	if got := e.PlayCount(res); got != 12 {
		t.Errorf("PlayCount = %d", got)
	}
}

func TestCheckAddInfoIdempotent(t *testing.T) {
	idx := newFakeIndex()
	idx.addTrack("file:///a.mp3", TrackInfo{TrackName: "First", PlaytimeMs: -1})
	res := &Resolver{Library: idx}

	e := newEntry(Ref{URL: "file:///a.mp3"}, true)
	if got := e.TrackName(res); got != "First" {
		t.Fatalf("TrackName = %q", got)
	}

	// A changed index must not leak into an already-loaded entry.
	idx.addTrack("file:///a.mp3", TrackInfo{TrackName: "Second", PlaytimeMs: -1})
	if got := e.TrackName(res); got != "First" {
		t.Errorf("TrackName after index change = %q, want First", got)
	}
}

func TestCheckAddInfoFromTags(t *testing.T) {
	fs := newFakeFS()
	fs.files["file:///music/song.mp3"] = "song-bytes"
	tags := &fakeTags{byContent: map[string]TrackInfo{
		"song-bytes": {TrackName: "From Tags", LeadArtistName: "Tag Artist", PlaytimeMs: -1},
	}}
	res := &Resolver{Library: newFakeIndex(), FS: fs, Tags: tags}

	e := newEntry(Ref{URL: "file:///music/song.mp3"}, true)

	if got := e.TrackName(res); got != "From Tags" {
		t.Errorf("TrackName = %q, want From Tags", got)
	}
	if got := e.LeadArtistName(res); got != "Tag Artist" {
		t.Errorf("LeadArtistName = %q", got)
	}

	// Loaded once; further accesses must not reopen the file.
	opens := len(fs.opens)
	_ = e.AlbumName(res)
	if len(fs.opens) != opens {
		t.Errorf("Metadata access reopened the file: %d opens, want %d", len(fs.opens), opens)
	}
}

func TestCheckAddInfoRemoteNotOpened(t *testing.T) {
	fs := newFakeFS()
	res := &Resolver{Library: newFakeIndex(), FS: fs, Tags: &fakeTags{}}

	e := newEntry(Ref{URL: "http://radio.example/stream"}, true)
	_ = e.TrackName(res)

	if len(fs.opens) != 0 {
		t.Errorf("Remote URL was opened for tag reading: %v", fs.opens)
	}
}

func TestCheckAddInfoFromHints(t *testing.T) {
	res := &Resolver{Library: newFakeIndex()}
	e := newEntry(Ref{
		URL:        "relative/song.mp3",
		Artist:     "Hint Artist",
		Album:      "Hint Album",
		Track:      "Hint Track",
		PlaytimeMs: 200000,
	}, false)

	if got := e.TrackName(res); got != "Hint Track" {
		t.Errorf("TrackName = %q", got)
	}
	if got := e.LeadArtistName(res); got != "Hint Artist" {
		t.Errorf("LeadArtistName = %q", got)
	}
	if got := e.AlbumName(res); got != "Hint Album" {
		t.Errorf("AlbumName = %q", got)
	}
	if got := e.PlaytimeMs(res); got != 200000 {
		t.Errorf("PlaytimeMs = %d", got)
	}
}

func TestPlaytimeNormalization(t *testing.T) {
	e := newEntry(Ref{URL: "file:///a.mp3"}, true)

	if got := e.PlaytimeMs(nil); got != -1 {
		t.Errorf("Unknown playtime = %d, want -1", got)
	}

	e.SetPlaytimeMs(nil, 0)
	if got := e.PlaytimeMs(nil); got != -1 {
		t.Errorf("Playtime after SetPlaytimeMs(0) = %d, want -1", got)
	}

	e.SetPlaytimeMs(nil, 181000)
	if got := e.PlaytimeMs(nil); got != 181000 {
		t.Errorf("Playtime = %d, want 181000", got)
	}
}

func TestSetRealtimeInfo(t *testing.T) {
	tests := []struct {
		name           string
		info           string
		expectedArtist string
		expectedTrack  string
	}{
		{
			name: "Artist and title", info: "Queen - Bohemian Rhapsody",
			expectedArtist: "Queen", expectedTrack: "Bohemian Rhapsody",
		},
		{
			name: "Title only", info: "Bohemian Rhapsody",
			expectedArtist: "", expectedTrack: "Bohemian Rhapsody",
		},
		{
			name: "All uppercase is recapitalized", info: "QUEEN - BOHEMIAN RHAPSODY",
			expectedArtist: "Queen", expectedTrack: "Bohemian Rhapsody",
		},
		{
			name: "Doubled dashes collapse", info: "Queen -- Bohemian Rhapsody",
			expectedArtist: "Queen", expectedTrack: "Bohemian Rhapsody",
		},
		{
			name: "Surrounding dashes trimmed", info: " - Bohemian Rhapsody",
			expectedArtist: "", expectedTrack: "Bohemian Rhapsody",
		},
		{
			name: "Empty title keeps left part as track", info: "Bohemian Rhapsody - ",
			expectedArtist: "", expectedTrack: "Bohemian Rhapsody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(Ref{URL: "http://radio.example/stream"}, true)
			e.SetRealtimeInfo(nil, tt.info)

			if got := e.LeadArtistName(nil); got != tt.expectedArtist {
				t.Errorf("LeadArtistName = %q, want %q", got, tt.expectedArtist)
			}
			if got := e.TrackName(nil); got != tt.expectedTrack {
				t.Errorf("TrackName = %q, want %q", got, tt.expectedTrack)
			}
		})
	}
}

func TestSetRealtimeInfoKeepsPrevious(t *testing.T) {
	e := newEntry(Ref{URL: "http://radio.example/stream"}, true)
	e.SetRealtimeInfo(nil, "Queen - Bohemian Rhapsody")
	e.SetRealtimeInfo(nil, "   ")

	if got := e.TrackName(nil); got != "Bohemian Rhapsody" {
		t.Errorf("TrackName after empty update = %q, want Bohemian Rhapsody", got)
	}
}

func TestLocalFile(t *testing.T) {
	base := filepath.FromSlash("/music/rock")

	tests := []struct {
		name          string
		url           string
		containerFile string
		expected      string
	}{
		{
			name: "File URL relative to container",
			url:  "file:///music/rock/song.mp3",
			containerFile: filepath.Join(base, "list.m3u"),
			expected:      "song.mp3",
		},
		{
			name: "File URL outside container dir",
			url:  "file:///music/jazz/song.mp3",
			containerFile: filepath.Join(base, "list.m3u"),
			expected:      filepath.FromSlash("../jazz/song.mp3"),
		},
		{
			name:     "No container keeps absolute path",
			url:      "file:///music/rock/song.mp3",
			expected: filepath.FromSlash("/music/rock/song.mp3"),
		},
		{
			name:          "Remote URL unchanged",
			url:           "http://radio.example/stream",
			containerFile: filepath.Join(base, "list.m3u"),
			expected:      "http://radio.example/stream",
		},
		{
			name:          "Stub URL unchanged",
			url:           "stub://queen--bohemian.mp3",
			containerFile: filepath.Join(base, "list.m3u"),
			expected:      "stub://queen--bohemian.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(Ref{URL: tt.url}, true)
			if got := e.LocalFile(tt.containerFile); got != tt.expected {
				t.Errorf("LocalFile(%q) = %q, want %q", tt.containerFile, got, tt.expected)
			}
		})
	}
}

func TestEntryIDsUnique(t *testing.T) {
	a := newEntry(Ref{URL: "file:///a.mp3"}, true)
	b := newEntry(Ref{URL: "file:///a.mp3"}, true)
	if a.ID() == b.ID() {
		t.Errorf("Entries share id %d", a.ID())
	}
	if a.ID() <= 0 || b.ID() <= 0 {
		t.Errorf("Entry ids must be positive: %d, %d", a.ID(), b.ID())
	}
}
