package playlist

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"jukebox/internal/logging"
	"jukebox/internal/metrics"
	"jukebox/internal/vfs"
)

// Verify resolves the entry's raw reference to a canonical URL. It is a
// one-shot operation: calling it on an already-verified entry is a
// programming error and panics. After return the reference is reduced to
// the bare URL; the container path and inline metadata hints are gone
// either way.
//
// On success the URL is absolute, in URL form, case-corrected against the
// library index, and URLOk reports true. On failure the raw URL is kept
// as-is and URLOk reports false.
func (e *Entry) Verify(res *Resolver) {
	if e.urlVerified {
		panic("playlist: entry verified twice")
	}
	e.urlVerified = true

	start := time.Now()
	ok := e.verify(res)
	e.urlOk = ok

	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	metrics.URLVerificationsTotal.WithLabelValues(outcome).Inc()
	metrics.URLVerificationDuration.Observe(time.Since(start).Seconds())
}

func (e *Entry) verify(res *Resolver) bool {
	rawURL := e.ref.URL

	loc := rawURL
	if strings.HasPrefix(loc, "file:") {
		if p, err := vfs.URLToFileName(loc); err == nil {
			loc = p
		}
	}

	// Relative references resolve against the directory of the playlist
	// file they came from.
	if e.ref.ContainerPath != "" && !vfs.IsURLForm(loc) && !filepath.IsAbs(loc) {
		joined := filepath.Join(filepath.Dir(e.ref.ContainerPath), loc)
		if _, err := os.Stat(joined); err == nil {
			loc = joined
		}
	}

	opened := ""
	if openable(loc) && res != nil && res.FS != nil {
		if f, err := res.FS.Open(loc); err == nil {
			opened = f.Location()
			_ = f.Close()
		}
	}

	// When the reference cannot be opened, fall back to finding the track
	// by the metadata hints the playlist file carried.
	if opened == "" && res != nil && res.Library != nil &&
		e.ref.Artist != "" && e.ref.Track != "" {
		if u := res.Library.URLByMetadata(e.ref.Artist, e.ref.Album, e.ref.Track); u != "" {
			if res.FS != nil {
				if f, err := res.FS.Open(u); err == nil {
					opened = f.Location()
					_ = f.Close()
				}
			}
		}
	}

	if opened == "" {
		logging.Debug("verify: %q unresolvable", rawURL)
		e.setRef(Ref{URL: rawURL})
		return false
	}

	if !vfs.IsURLForm(opened) {
		opened = vfs.FileNameToURL(opened)
	}
	if res != nil && res.Library != nil {
		opened = res.Library.CanonicalURL(opened)
	}

	e.setRef(Ref{URL: opened})
	return true
}

// setRef replaces the entry's reference, keeping the owning playlist's
// URL refcount index in sync.
func (e *Entry) setRef(ref Ref) {
	if e.owner != nil && ref.URL != e.ref.URL {
		e.owner.RehashURL(e.ref.URL, ref.URL)
	}
	e.ref = ref
}

// openable filters out references that cannot possibly be opened:
// leftover relative paths and stub URLs synthesized for tracks that were
// never files in the first place.
func openable(loc string) bool {
	for _, prefix := range []string{"..", "./", ".\\", "stub:"} {
		if strings.HasPrefix(loc, prefix) {
			return false
		}
	}
	return true
}
