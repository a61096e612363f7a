package playlist

import (
	"fmt"
	"strings"

	"jukebox/internal/logging"
)

// Placeholders used when a playlist spans several artists or albums.
const (
	severalArtists = "Several artists"
	unknownTitle   = "Unknown title"
)

// Playlist is an ordered collection of entries with a case-insensitive
// reference count per URL. Not safe for concurrent use.
type Playlist struct {
	entries   []*Entry
	urlCounts map[string]int

	name string
	url  string

	// version increments on every structural change; caches compare it
	// to decide whether they are stale.
	version uint64

	overall overallCache
}

// overallCache memoizes the playlist-wide artist and album names.
type overallCache struct {
	computedVersion uint64
	valid           bool
	artist          string
	album           string
	// artistFine and albumFine report whether the values are real names
	// rather than placeholders.
	artistFine bool
	albumFine  bool
}

// New returns an empty playlist.
func New() *Playlist {
	return &Playlist{urlCounts: make(map[string]int)}
}

// Name returns the playlist's display name, if any.
func (p *Playlist) Name() string { return p.name }

// SetName sets the playlist's display name.
func (p *Playlist) SetName(name string) { p.name = name }

// URL returns the location the playlist was loaded from or saved to.
func (p *Playlist) URL() string { return p.url }

// SetURL records the playlist's own location.
func (p *Playlist) SetURL(url string) { p.url = url }

// Len returns the number of entries.
func (p *Playlist) Len() int { return len(p.entries) }

// At returns the entry at pos; pos must be in range.
func (p *Playlist) At(pos int) *Entry { return p.entries[pos] }

func urlKey(url string) string { return strings.ToLower(url) }

// Add appends an entry for the given reference. verified marks the URL
// as already resolved; playCount preloads the statistics category when
// non-negative.
func (p *Playlist) Add(ref Ref, verified bool, playCount int) *Entry {
	e := newEntry(ref, verified)
	e.owner = p
	if playCount >= 0 {
		e.SetPlayCount(playCount)
	}
	p.entries = append(p.entries, e)
	p.urlCounts[urlKey(ref.URL)]++
	p.version++
	return e
}

// RemoveAt deletes the entry at pos and returns how many entries with
// the same URL remain.
func (p *Playlist) RemoveAt(pos int) int {
	e := p.entries[pos]
	p.entries = append(p.entries[:pos], p.entries[pos+1:]...)

	key := urlKey(e.ref.URL)
	remaining := p.urlCounts[key] - 1
	if remaining <= 0 {
		delete(p.urlCounts, key)
		remaining = 0
	} else {
		p.urlCounts[key] = remaining
	}
	e.owner = nil
	p.version++
	return remaining
}

// Remove deletes every entry referencing the URL, compared
// case-insensitively, and returns how many were removed.
func (p *Playlist) Remove(url string) int {
	key := urlKey(url)
	if p.urlCounts[key] == 0 {
		return 0
	}

	removed := 0
	kept := p.entries[:0]
	for _, e := range p.entries {
		if strings.EqualFold(e.ref.URL, url) {
			e.owner = nil
			removed++
			continue
		}
		kept = append(kept, e)
	}
	p.entries = kept
	delete(p.urlCounts, key)
	p.version++
	return removed
}

// Clear removes all entries.
func (p *Playlist) Clear() {
	for _, e := range p.entries {
		e.owner = nil
	}
	p.entries = nil
	p.urlCounts = make(map[string]int)
	p.version++
}

// URLCount returns how many entries reference the URL, compared
// case-insensitively.
func (p *Playlist) URLCount(url string) int {
	return p.urlCounts[urlKey(url)]
}

// GetPosByURL returns the position of the first entry with the URL, or
// -1. The refcount index short-circuits the scan for absent URLs.
func (p *Playlist) GetPosByURL(url string) int {
	if p.urlCounts[urlKey(url)] == 0 {
		return -1
	}
	for i, e := range p.entries {
		if strings.EqualFold(e.ref.URL, url) {
			return i
		}
	}
	// Index said the URL is present; the scan must find it.
	panic("playlist: url refcount out of sync")
}

// GetPosByID returns the position of the entry with the id, or -1.
func (p *Playlist) GetPosByID(id int64) int {
	for i, e := range p.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

// MovePos moves the entry at srcPos so it ends up at destPos. Moving an
// entry onto itself is a no-op.
func (p *Playlist) MovePos(srcPos, destPos int) {
	if srcPos == destPos {
		return
	}
	e := p.entries[srcPos]
	p.entries = append(p.entries[:srcPos], p.entries[srcPos+1:]...)
	p.entries = append(p.entries, nil)
	copy(p.entries[destPos+1:], p.entries[destPos:])
	p.entries[destPos] = e
	p.version++
}

// RehashURL moves refcounts from oldURL's key to newURL's key. Only the
// index is touched; entries are not rewritten. Called by entries when
// verification canonicalizes their URL.
func (p *Playlist) RehashURL(oldURL, newURL string) {
	oldKey, newKey := urlKey(oldURL), urlKey(newURL)
	if oldKey == newKey {
		return
	}
	count := p.urlCounts[oldKey]
	delete(p.urlCounts, oldKey)
	count += p.urlCounts[newKey]
	if count <= 0 {
		panic("playlist: rehash of unreferenced url " + oldURL)
	}
	p.urlCounts[newKey] = count
	p.version++
}

// OnURLChanged reacts to a track being renamed in the library: entries
// referencing oldURL are rewritten to newURL, and entries that had not
// verified yet forget any metadata loaded for the old URL while keeping
// their play counts. An empty newURL leaves URLs alone and only resets
// the unverified entries.
func (p *Playlist) OnURLChanged(oldURL, newURL string) {
	if p.urlCounts[urlKey(oldURL)] == 0 {
		return
	}

	var unverified []*Entry
	for _, e := range p.entries {
		if !e.urlVerified && strings.EqualFold(e.ref.URL, oldURL) {
			unverified = append(unverified, e)
		}
	}

	if newURL != "" {
		for _, e := range p.entries {
			e.renameURL(oldURL, newURL)
		}
		p.RehashURL(oldURL, newURL)
	}

	for _, e := range unverified {
		playCount, statsLoaded := e.info.playCount, e.info.statsLoaded
		flags := e.flags
		e.urlChanged()
		e.flags = flags
		if statsLoaded {
			e.SetPlayCount(playCount)
		}
	}

	if len(unverified) > 0 || newURL != "" {
		logging.Debug("playlist %q: url change %q -> %q touched %d unverified entries",
			p.name, oldURL, newURL, len(unverified))
		p.version++
	}
}

// GetUnplayedCount counts entries with a zero play count at or after
// fromPos, scanning backward from the end, stopping once maxCnt is
// reached. A negative fromPos counts from the start of the playlist.
func (p *Playlist) GetUnplayedCount(res *Resolver, fromPos, maxCnt int) int {
	if fromPos < 0 {
		fromPos = 0
	}
	cnt := 0
	for i := len(p.entries) - 1; i >= fromPos && cnt < maxCnt; i-- {
		if p.entries[i].PlayCount(res) == 0 {
			cnt++
		}
	}
	return cnt
}

// UpdateURL pushes a freshly-measured playing time onto every entry
// referencing the URL. Entries that have not loaded their metadata yet
// are skipped; they will pick up the correct value on their own.
func (p *Playlist) UpdateURL(res *Resolver, url string, playtimeMs int64) {
	if p.urlCounts[urlKey(url)] == 0 {
		return
	}
	for _, e := range p.entries {
		if e.info.miscLoaded && strings.EqualFold(e.ref.URL, url) {
			e.SetPlaytimeMs(res, playtimeMs)
		}
	}
}

// MergeMetaData copies the name and URL from another playlist for any
// field still unset here. Useful when re-importing over an existing
// playlist object.
func (p *Playlist) MergeMetaData(o *Playlist) {
	if p.name == "" {
		p.name = o.name
	}
	if p.url == "" {
		p.url = o.url
	}
}

// loadOverallNames computes the playlist-wide artist and album. The
// result is cached against the version counter, so repeated calls are
// free until the playlist changes.
func (p *Playlist) loadOverallNames(res *Resolver) {
	if p.overall.valid && p.overall.computedVersion == p.version {
		return
	}

	c := overallCache{computedVersion: p.version, valid: true}
	for i, e := range p.entries {
		artist := e.LeadArtistName(res)
		album := e.AlbumName(res)
		if i == 0 {
			c.artist, c.artistFine = artist, artist != ""
			c.album, c.albumFine = album, album != ""
			continue
		}
		if c.artistFine && !strings.EqualFold(c.artist, artist) {
			c.artistFine = false
		}
		if c.albumFine && !strings.EqualFold(c.album, album) {
			c.albumFine = false
		}
		if !c.artistFine && !c.albumFine {
			break
		}
	}
	if !c.artistFine {
		c.artist = severalArtists
	}
	if !c.albumFine {
		c.album = unknownTitle
	}
	p.overall = c
}

// OverallArtist returns the artist shared by every entry, or a
// placeholder when entries disagree.
func (p *Playlist) OverallArtist(res *Resolver) string {
	p.loadOverallNames(res)
	return p.overall.artist
}

// OverallAlbum returns the album shared by every entry, or a placeholder
// when entries disagree.
func (p *Playlist) OverallAlbum(res *Resolver) string {
	p.loadOverallNames(res)
	return p.overall.album
}

// SuggestPlaylistName proposes a display name: the set name if any, then
// "Artist - Album" derived from the entries.
func (p *Playlist) SuggestPlaylistName(res *Resolver) string {
	if p.name != "" {
		return p.name
	}
	if len(p.entries) == 0 {
		return unknownTitle
	}
	p.loadOverallNames(res)
	if p.overall.artistFine {
		return fmt.Sprintf("%s - %s", p.overall.artist, p.overall.album)
	}
	return p.overall.album
}

// SuggestPlaylistFileName is SuggestPlaylistName made safe for use as a
// file name.
func (p *Playlist) SuggestPlaylistFileName(res *Resolver) string {
	return sanitizeFileName(p.SuggestPlaylistName(res))
}
