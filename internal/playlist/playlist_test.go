package playlist

import (
	"testing"
)

func TestAddRemoveRefCounts(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///music/a.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///Music/A.MP3"}, true, -1)
	p.Add(Ref{URL: "file:///music/b.mp3"}, true, -1)

	if got := p.URLCount("FILE:///MUSIC/A.MP3"); got != 2 {
		t.Errorf("URLCount(a) = %d, want 2", got)
	}
	if got := p.URLCount("file:///music/b.mp3"); got != 1 {
		t.Errorf("URLCount(b) = %d, want 1", got)
	}

	if remaining := p.RemoveAt(0); remaining != 1 {
		t.Errorf("RemoveAt returned %d remaining, want 1", remaining)
	}
	if remaining := p.RemoveAt(1); remaining != 0 {
		t.Errorf("RemoveAt returned %d remaining, want 0", remaining)
	}
	if got := p.URLCount("file:///music/b.mp3"); got != 0 {
		t.Errorf("URLCount(b) after removal = %d, want 0", got)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
}

func TestRemoveAllByURL(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///music/a.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///music/b.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///Music/A.MP3"}, true, -1)

	if removed := p.Remove("FILE:///MUSIC/A.MP3"); removed != 2 {
		t.Errorf("Remove = %d, want 2", removed)
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
	if got := p.URLCount("file:///music/a.mp3"); got != 0 {
		t.Errorf("URLCount after Remove = %d, want 0", got)
	}
	if p.At(0).URL() != "file:///music/b.mp3" {
		t.Errorf("Remaining entry URL = %q", p.At(0).URL())
	}

	if removed := p.Remove("file:///missing.mp3"); removed != 0 {
		t.Errorf("Remove of absent URL = %d, want 0", removed)
	}
}

func TestGetPosByURL(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///a.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///b.mp3"}, true, -1)

	if pos := p.GetPosByURL("file:///B.MP3"); pos != 1 {
		t.Errorf("GetPosByURL = %d, want 1", pos)
	}
	if pos := p.GetPosByURL("file:///missing.mp3"); pos != -1 {
		t.Errorf("GetPosByURL for missing URL = %d, want -1", pos)
	}
}

func TestGetPosByID(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///a.mp3"}, true, -1)
	e := p.Add(Ref{URL: "file:///b.mp3"}, true, -1)

	if pos := p.GetPosByID(e.ID()); pos != 1 {
		t.Errorf("GetPosByID = %d, want 1", pos)
	}
	if pos := p.GetPosByID(-5); pos != -1 {
		t.Errorf("GetPosByID for unknown id = %d, want -1", pos)
	}
}

func TestMovePos(t *testing.T) {
	urls := func(p *Playlist) []string {
		out := make([]string, p.Len())
		for i := range out {
			out[i] = p.At(i).URL()
		}
		return out
	}

	tests := []struct {
		name     string
		src, dst int
		expected []string
	}{
		{"Forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"Backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"Identity", 2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New()
			for _, u := range []string{"a", "b", "c", "d"} {
				p.Add(Ref{URL: u}, true, -1)
			}
			p.MovePos(tt.src, tt.dst)
			got := urls(p)
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Fatalf("After MovePos(%d, %d) order = %v, want %v", tt.src, tt.dst, got, tt.expected)
				}
			}
		})
	}
}

func TestRehashURL(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///old.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///new.mp3"}, true, -1)

	p.RehashURL("file:///old.mp3", "file:///new.mp3")

	if got := p.URLCount("file:///old.mp3"); got != 0 {
		t.Errorf("URLCount(old) = %d, want 0", got)
	}
	if got := p.URLCount("file:///new.mp3"); got != 2 {
		t.Errorf("URLCount(new) = %d, want 2", got)
	}
}

func TestRehashURLCaseOnlyChange(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///Track.mp3"}, true, -1)

	// Differs only in case; the index key is identical and must survive.
	p.RehashURL("file:///Track.mp3", "file:///track.MP3")

	if got := p.URLCount("file:///track.mp3"); got != 1 {
		t.Errorf("URLCount after case-only rehash = %d, want 1", got)
	}
}

func TestClear(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///a.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///b.mp3"}, true, -1)

	p.Clear()

	if p.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", p.Len())
	}
	if got := p.URLCount("file:///a.mp3"); got != 0 {
		t.Errorf("URLCount after Clear = %d, want 0", got)
	}
}

func TestGetUnplayedCount(t *testing.T) {
	p := New()
	for i, plays := range []int{1, 0, 0, 1, 0} {
		e := p.Add(Ref{URL: string(rune('a'+i)) + ".mp3"}, true, -1)
		e.SetPlayCount(plays)
	}

	res := &Resolver{}
	if got := p.GetUnplayedCount(res, -1, 100); got != 3 {
		t.Errorf("GetUnplayedCount(-1) = %d, want 3", got)
	}
	// The position itself is counted, so starting on an unplayed entry
	// includes it.
	if got := p.GetUnplayedCount(res, 2, 100); got != 2 {
		t.Errorf("GetUnplayedCount(2) = %d, want 2", got)
	}
	if got := p.GetUnplayedCount(res, 4, 100); got != 1 {
		t.Errorf("GetUnplayedCount(4) = %d, want 1", got)
	}
	if got := p.GetUnplayedCount(res, 3, 100); got != 1 {
		t.Errorf("GetUnplayedCount(3) = %d, want 1", got)
	}
	if got := p.GetUnplayedCount(res, -1, 2); got != 2 {
		t.Errorf("GetUnplayedCount capped = %d, want 2", got)
	}
}

func TestOnURLChanged(t *testing.T) {
	p := New()
	e := p.Add(Ref{URL: "file:///old.mp3", Track: "Old Hint"}, false, -1)
	e.SetPlayCount(7)
	e.SetFlags(3)

	// Force the hint metadata to load so the reset is observable.
	if got := e.TrackName(nil); got != "Old Hint" {
		t.Fatalf("TrackName before rename = %q", got)
	}

	p.OnURLChanged("file:///old.mp3", "file:///new.mp3")

	if got := e.URL(); got != "file:///new.mp3" {
		t.Errorf("URL after rename = %q, want file:///new.mp3", got)
	}
	if got := p.URLCount("file:///new.mp3"); got != 1 {
		t.Errorf("URLCount(new) = %d, want 1", got)
	}
	if got := p.URLCount("file:///old.mp3"); got != 0 {
		t.Errorf("URLCount(old) = %d, want 0", got)
	}
	if e.URLVerified() {
		t.Error("Entry should stay unverified after rename")
	}
	if got := e.PlayCount(nil); got != 7 {
		t.Errorf("PlayCount after rename = %d, want 7", got)
	}
	if got := e.Flags(); got != 3 {
		t.Errorf("Flags after rename = %d, want 3", got)
	}
	if got := e.TrackName(nil); got != "" {
		t.Errorf("TrackName after rename = %q, want empty (hints dropped)", got)
	}
}

func TestOnURLChangedUnknownURL(t *testing.T) {
	p := New()
	p.Add(Ref{URL: "file:///a.mp3"}, true, -1)

	// Renames for URLs the playlist does not reference are ignored.
	p.OnURLChanged("file:///other.mp3", "file:///moved.mp3")

	if got := p.URLCount("file:///a.mp3"); got != 1 {
		t.Errorf("URLCount = %d, want 1", got)
	}
}

func TestUpdateURL(t *testing.T) {
	p := New()
	loaded := p.Add(Ref{URL: "file:///a.mp3", Track: "A"}, true, -1)
	lazy := p.Add(Ref{URL: "file:///a.mp3"}, true, -1)
	_ = loaded.TrackName(nil)

	p.UpdateURL(nil, "file:///A.MP3", 123000)

	if got := loaded.PlaytimeMs(nil); got != 123000 {
		t.Errorf("Loaded entry playtime = %d, want 123000", got)
	}
	if lazy.info.miscLoaded {
		t.Error("Entry without loaded metadata must not be touched")
	}
}

func TestOverallNames(t *testing.T) {
	idx := newFakeIndex()
	idx.addTrack("file:///1.mp3", TrackInfo{TrackName: "One", LeadArtistName: "ABBA", AlbumName: "Arrival", PlaytimeMs: -1})
	idx.addTrack("file:///2.mp3", TrackInfo{TrackName: "Two", LeadArtistName: "abba", AlbumName: "ARRIVAL", PlaytimeMs: -1})
	idx.addTrack("file:///3.mp3", TrackInfo{TrackName: "Three", LeadArtistName: "Queen", AlbumName: "Jazz", PlaytimeMs: -1})
	res := &Resolver{Library: idx}

	p := New()
	p.Add(Ref{URL: "file:///1.mp3"}, true, -1)
	p.Add(Ref{URL: "file:///2.mp3"}, true, -1)

	if got := p.OverallArtist(res); got != "ABBA" {
		t.Errorf("OverallArtist = %q, want ABBA", got)
	}
	if got := p.OverallAlbum(res); got != "Arrival" {
		t.Errorf("OverallAlbum = %q, want Arrival", got)
	}
	if got := p.SuggestPlaylistName(res); got != "ABBA - Arrival" {
		t.Errorf("SuggestPlaylistName = %q", got)
	}

	// Adding a disagreeing entry invalidates the cache.
	p.Add(Ref{URL: "file:///3.mp3"}, true, -1)

	if got := p.OverallArtist(res); got != "Several artists" {
		t.Errorf("OverallArtist after mixed add = %q", got)
	}
	if got := p.OverallAlbum(res); got != "Unknown title" {
		t.Errorf("OverallAlbum after mixed add = %q", got)
	}
}

func TestSuggestPlaylistName(t *testing.T) {
	p := New()
	if got := p.SuggestPlaylistName(nil); got != "Unknown title" {
		t.Errorf("Empty playlist name = %q", got)
	}

	p.SetName("Road Trip")
	if got := p.SuggestPlaylistName(nil); got != "Road Trip" {
		t.Errorf("Named playlist suggestion = %q", got)
	}
}

func TestSuggestPlaylistFileName(t *testing.T) {
	p := New()
	p.SetName("AC/DC: Live?")
	if got := p.SuggestPlaylistFileName(nil); got != "AC_DC_ Live_" {
		t.Errorf("SuggestPlaylistFileName = %q", got)
	}
}

func TestMergeMetaData(t *testing.T) {
	p := New()
	o := New()
	o.SetName("Other")
	o.SetURL("file:///other.m3u")

	p.MergeMetaData(o)
	if p.Name() != "Other" || p.URL() != "file:///other.m3u" {
		t.Errorf("MergeMetaData did not fill empty fields: %q %q", p.Name(), p.URL())
	}

	p.SetName("Mine")
	p.MergeMetaData(o)
	if p.Name() != "Mine" {
		t.Errorf("MergeMetaData overwrote a set name: %q", p.Name())
	}
}
