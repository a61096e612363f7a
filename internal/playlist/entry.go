package playlist

import (
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"jukebox/internal/vfs"
)

// InfoCategory selects which lazily-loaded metadata categories an
// operation touches.
type InfoCategory uint8

const (
	// InfoStats covers play-count statistics.
	InfoStats InfoCategory = 1 << iota
	// InfoMisc covers descriptive metadata: track, artist, album, playtime.
	InfoMisc
)

// Entry ids are process-unique and never reused; position lookups by id
// stay stable across reorders.
var nextEntryID atomic.Int64

// addInfo holds the lazily-loaded per-entry metadata. Each category is
// loaded at most once until explicitly invalidated; the fields are only
// trustworthy for categories whose loaded flag is set.
type addInfo struct {
	misc       TrackInfo
	miscLoaded bool

	playCount   int
	statsLoaded bool
}

// Entry is one track reference in a playlist.
type Entry struct {
	id          int64
	ref         Ref
	urlVerified bool
	urlOk       bool
	flags       uint32
	info        addInfo
	owner       *Playlist
}

func newEntry(ref Ref, verified bool) *Entry {
	return &Entry{
		id:          nextEntryID.Add(1),
		ref:         ref,
		urlVerified: verified,
		urlOk:       verified,
	}
}

// ID returns the process-unique entry id.
func (e *Entry) ID() int64 { return e.id }

// URL returns the entry's current URL: raw before verification, canonical
// afterwards.
func (e *Entry) URL() string { return e.ref.URL }

// Ref returns a copy of the entry's raw reference.
func (e *Entry) Ref() Ref { return e.ref }

// URLVerified reports whether resolution has been attempted.
func (e *Entry) URLVerified() bool { return e.urlVerified }

// URLOk reports whether resolution succeeded; callers must check this
// before treating the entry as playable.
func (e *Entry) URLOk() bool { return e.urlOk }

// Flags returns the caller-defined flag bits carried by the entry.
func (e *Entry) Flags() uint32 { return e.flags }

// SetFlags stores caller-defined flag bits on the entry.
func (e *Entry) SetFlags(flags uint32) { e.flags = flags }

// CheckAddInfo loads the requested metadata categories if they have not
// been loaded yet. Already-loaded categories are left untouched, so
// repeated calls never repeat the underlying lookups.
func (e *Entry) CheckAddInfo(res *Resolver, what InfoCategory) {
	if what&InfoStats != 0 && !e.info.statsLoaded {
		e.loadStats(res)
	}
	if what&InfoMisc != 0 && !e.info.miscLoaded {
		e.loadMisc(res)
	}
}

func (e *Entry) loadStats(res *Resolver) {
	if res != nil && res.Library != nil {
		if count, ok := res.Library.PlayCount(e.URL()); ok {
			e.info.playCount = count
		}
	}
	e.info.statsLoaded = true
}

// loadMisc fills the descriptive metadata, trying in order: the library
// index, reading tags from the file itself, and finally the hints packed
// alongside the URL at import time. The category is marked loaded even
// when every lookup fails so a missing file does not re-trigger I/O on
// each access.
func (e *Entry) loadMisc(res *Resolver) {
	m := TrackInfo{PlaytimeMs: -1}
	got := false

	if res != nil && res.Library != nil {
		if qi, ok := res.Library.QuickInfo(e.URL()); ok {
			m = qi
			got = true
		}
	}

	if !got && e.urlVerified && e.urlOk && res != nil && res.FS != nil && res.Tags != nil {
		// Never open network-streaming URLs here: a live stream would
		// stall or loop forever.
		if u := e.URL(); !vfs.IsRemoteURL(u) {
			if f, err := res.FS.Open(u); err == nil {
				if s := f.Stream(); s != nil {
					if qt, err := res.Tags.ReadQuickTags(s); err == nil {
						m = qt
						if m.TrackName == "" {
							m.TrackName = u
						}
						got = true
					}
				}
				_ = f.Close()
			}
		}
	}

	if !got && (e.ref.Track != "" || e.ref.Artist != "" || e.ref.Album != "" || e.ref.PlaytimeMs > 0) {
		m = TrackInfo{
			TrackName:      e.ref.Track,
			LeadArtistName: e.ref.Artist,
			AlbumName:      e.ref.Album,
			PlaytimeMs:     e.ref.PlaytimeMs,
		}
	}

	// -1 is the only "unknown" playtime; never keep zero or negative.
	if m.PlaytimeMs <= 0 {
		m.PlaytimeMs = -1
	}

	e.info.misc = m
	e.info.miscLoaded = true
}

// TrackName returns the track title, loading metadata if needed.
func (e *Entry) TrackName(res *Resolver) string {
	e.CheckAddInfo(res, InfoMisc)
	return e.info.misc.TrackName
}

// LeadArtistName returns the artist, loading metadata if needed.
func (e *Entry) LeadArtistName(res *Resolver) string {
	e.CheckAddInfo(res, InfoMisc)
	return e.info.misc.LeadArtistName
}

// AlbumName returns the album, loading metadata if needed.
func (e *Entry) AlbumName(res *Resolver) string {
	e.CheckAddInfo(res, InfoMisc)
	return e.info.misc.AlbumName
}

// PlaytimeMs returns the playing time in milliseconds, or -1 if unknown.
func (e *Entry) PlaytimeMs(res *Resolver) int64 {
	e.CheckAddInfo(res, InfoMisc)
	return e.info.misc.PlaytimeMs
}

// SetPlaytimeMs overrides the playing time, normalizing non-positive
// values to -1.
func (e *Entry) SetPlaytimeMs(res *Resolver, ms int64) {
	e.CheckAddInfo(res, InfoMisc)
	if ms <= 0 {
		ms = -1
	}
	e.info.misc.PlaytimeMs = ms
}

// PlayCount returns the entry's play count, loading statistics if needed.
func (e *Entry) PlayCount(res *Resolver) int {
	e.CheckAddInfo(res, InfoStats)
	return e.info.playCount
}

// SetPlayCount stores a play count, marking statistics loaded.
func (e *Entry) SetPlayCount(count int) {
	e.info.playCount = count
	e.info.statsLoaded = true
}

var titleCaser = cases.Title(language.Und)

// SetRealtimeInfo normalizes a free-form "now playing" string as
// broadcast by radio streams and stores it as the entry's descriptive
// metadata. Doubled dashes are collapsed, all-uppercase or all-lowercase
// strings are re-capitalized, and surrounding dashes and spaces are
// trimmed. A " - " separator splits artist from title; without one the
// whole string is the title. Play-count statistics are not touched.
func (e *Entry) SetRealtimeInfo(res *Resolver, info string) {
	info = strings.ReplaceAll(info, "--", "-")
	if info == strings.ToUpper(info) || info == strings.ToLower(info) {
		info = titleCaser.String(info)
	}
	info = strings.Trim(info, "- ")

	e.CheckAddInfo(res, InfoMisc)

	if i := strings.Index(info, " - "); i != -1 {
		artist := strings.TrimRight(info[:i], " ")
		track := strings.TrimLeft(info[i+3:], " ")
		switch {
		case artist == "" && track == "":
			// nothing usable
		case track == "":
			e.info.misc.TrackName = artist
		default:
			e.info.misc.LeadArtistName = artist
			e.info.misc.TrackName = track
		}
	} else if info != "" {
		e.info.misc.TrackName = info
	}
}

// LocalFile returns the entry's URL as a local path. When containerFile
// is non-empty the path is made relative to the container's directory,
// which keeps exported playlists movable. Remote and stub URLs are
// returned unchanged.
func (e *Entry) LocalFile(containerFile string) string {
	u := e.URL()
	if vfs.IsRemoteURL(u) || strings.HasPrefix(u, "stub:") {
		return u
	}

	p := u
	if strings.HasPrefix(u, "file:") {
		if fp, err := vfs.URLToFileName(u); err == nil {
			p = fp
		}
	}

	if containerFile != "" {
		if rel, err := filepath.Rel(filepath.Dir(containerFile), p); err == nil {
			p = rel
		}
	}
	return p
}

// renameURL rewrites the entry's reference when its URL matches oldURL
// (case-insensitively). The container path and metadata hints described
// the old file and are dropped with it.
func (e *Entry) renameURL(oldURL, newURL string) {
	if strings.EqualFold(e.ref.URL, oldURL) {
		e.ref = Ref{URL: newURL}
	}
}

// urlChanged forgets everything known about the entry's URL: metadata,
// flags, and verification state. Callers that need to keep entry-local
// statistics across the reset must save and restore them.
func (e *Entry) urlChanged() {
	e.info = addInfo{}
	e.flags = 0
	e.urlVerified = false
	e.urlOk = false
}
