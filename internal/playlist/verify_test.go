package playlist

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVerifyLocalFile(t *testing.T) {
	fs := newFakeFS()
	fs.files["/music/Song.mp3"] = "bytes"
	idx := newFakeIndex()
	idx.addTrack("file:///music/Song.mp3", TrackInfo{TrackName: "Song", PlaytimeMs: -1})
	res := &Resolver{Library: idx, FS: fs}

	p := New()
	e := p.Add(Ref{URL: "/music/Song.mp3", Track: "Hint"}, false, -1)

	e.Verify(res)

	if !e.URLVerified() || !e.URLOk() {
		t.Fatalf("Verify state = (%v, %v), want (true, true)", e.URLVerified(), e.URLOk())
	}
	if got := e.URL(); got != "file:///music/Song.mp3" {
		t.Errorf("URL = %q, want file:///music/Song.mp3", got)
	}
	if got := e.Ref(); got.Track != "" || got.ContainerPath != "" {
		t.Errorf("Hints survived verification: %+v", got)
	}
	if got := p.URLCount("file:///music/Song.mp3"); got != 1 {
		t.Errorf("URLCount(new) = %d, want 1", got)
	}
	if got := p.URLCount("/music/Song.mp3"); got != 0 {
		t.Errorf("URLCount(raw) = %d, want 0", got)
	}
}

func TestVerifyCanonicalizesCase(t *testing.T) {
	fs := newFakeFS()
	fs.files["/Music/ABBA/Dancing-Queen.mp3"] = "bytes"
	idx := newFakeIndex()
	idx.addTrack("file:///Music/ABBA/Dancing-Queen.mp3", TrackInfo{TrackName: "Dancing Queen", PlaytimeMs: -1})
	res := &Resolver{Library: idx, FS: fs}

	e := New().Add(Ref{URL: "/Music/ABBA/Dancing-Queen.mp3"}, false, -1)
	e.Verify(res)

	if got := e.URL(); got != "file:///Music/ABBA/Dancing-Queen.mp3" {
		t.Errorf("URL = %q, want stored library casing", got)
	}
}

func TestVerifyContainerRelative(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(song, []byte("bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := newFakeFS()
	fs.files[song] = "bytes"
	res := &Resolver{FS: fs}

	e := New().Add(Ref{
		URL:           "song.mp3",
		ContainerPath: filepath.Join(dir, "list.m3u"),
	}, false, -1)
	e.Verify(res)

	if !e.URLOk() {
		t.Fatal("Expected container-relative reference to resolve")
	}
	expected := "file://" + filepath.ToSlash(song)
	if got := e.URL(); got != expected {
		t.Errorf("URL = %q, want %q", got, expected)
	}
}

func TestVerifyFailure(t *testing.T) {
	res := &Resolver{Library: newFakeIndex(), FS: newFakeFS()}

	p := New()
	e := p.Add(Ref{URL: "missing.mp3", Artist: "A", Track: "T"}, false, -1)
	e.Verify(res)

	if !e.URLVerified() {
		t.Error("Entry must be marked verified even on failure")
	}
	if e.URLOk() {
		t.Error("URLOk must be false for an unresolvable reference")
	}
	if got := e.URL(); got != "missing.mp3" {
		t.Errorf("URL = %q, want raw URL kept", got)
	}
	if got := e.Ref(); got.Artist != "" || got.Track != "" {
		t.Errorf("Hints survived failed verification: %+v", got)
	}
	if got := p.URLCount("missing.mp3"); got != 1 {
		t.Errorf("URLCount = %d, want 1", got)
	}
}

func TestVerifyMetadataFallback(t *testing.T) {
	fs := newFakeFS()
	fs.files["file:///library/queen/bohemian.mp3"] = "bytes"
	idx := newFakeIndex()
	idx.addTrack("file:///library/queen/bohemian.mp3", TrackInfo{
		TrackName:      "Bohemian Rhapsody",
		LeadArtistName: "Queen",
		PlaytimeMs:     -1,
	})
	res := &Resolver{Library: idx, FS: fs}

	p := New()
	e := p.Add(Ref{
		URL:    "stub://queen--bohemian-rhapsody.mp3",
		Artist: "Queen",
		Track:  "Bohemian Rhapsody",
	}, false, -1)
	e.Verify(res)

	if !e.URLOk() {
		t.Fatal("Expected metadata fallback to resolve the stub")
	}
	if got := e.URL(); got != "file:///library/queen/bohemian.mp3" {
		t.Errorf("URL = %q", got)
	}
	if got := p.URLCount("file:///library/queen/bohemian.mp3"); got != 1 {
		t.Errorf("URLCount(resolved) = %d, want 1", got)
	}
	if got := p.URLCount("stub://queen--bohemian-rhapsody.mp3"); got != 0 {
		t.Errorf("URLCount(stub) = %d, want 0", got)
	}
}

func TestVerifyStubNotOpened(t *testing.T) {
	fs := newFakeFS()
	res := &Resolver{FS: fs}

	e := New().Add(Ref{URL: "stub://a--b.mp3"}, false, -1)
	e.Verify(res)

	if e.URLOk() {
		t.Error("Stub without library match must fail verification")
	}
	if len(fs.opens) != 0 {
		t.Errorf("Stub URL was passed to the filesystem: %v", fs.opens)
	}
}

func TestVerifyTwicePanics(t *testing.T) {
	e := newEntry(Ref{URL: "file:///a.mp3"}, false)
	e.Verify(&Resolver{})

	defer func() {
		if recover() == nil {
			t.Error("Second Verify did not panic")
		}
	}()
	e.Verify(&Resolver{})
}

func TestVerifyMergesDuplicateURLs(t *testing.T) {
	fs := newFakeFS()
	fs.files["/music/a.mp3"] = "bytes"
	res := &Resolver{FS: fs}

	p := New()
	p.Add(Ref{URL: "file:///music/a.mp3"}, true, -1)
	e := p.Add(Ref{URL: "/music/a.mp3"}, false, -1)
	e.Verify(res)

	if got := p.URLCount("file:///music/a.mp3"); got != 2 {
		t.Errorf("URLCount after merge = %d, want 2", got)
	}
	if got := p.URLCount("/music/a.mp3"); got != 0 {
		t.Errorf("URLCount(raw) = %d, want 0", got)
	}
}
