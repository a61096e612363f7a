package vfs

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"jukebox/internal/logging"
)

// zipSeparator splits an archive locator into the archive path and the
// path of the embedded file, e.g. "/music/album.zip#zip:01 - intro.mp3".
const zipSeparator = "#zip:"

// File is an opened locator: a readable stream plus the canonical location
// the locator resolved to.
type File struct {
	r        io.ReadSeeker
	closer   io.Closer
	location string
}

// Location returns the canonical location of the opened locator.
// Local files report an absolute filesystem path; archive members and
// remote locators report URL form.
func (f *File) Location() string { return f.location }

// Stream returns the underlying stream. It is nil for remote locators,
// which are location-normalized but never fetched.
func (f *File) Stream() io.ReadSeeker { return f.r }

// Close releases the underlying file handle, if any.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// FS opens locators against the local filesystem and zip archives.
type FS struct{}

// New returns a filesystem accessor.
func New() *FS { return &FS{} }

// Open resolves and opens a locator. Supported forms:
//   - absolute or relative filesystem paths
//   - file: URLs
//   - zip archive members ("archive.zip#zip:inner/track.mp3")
//   - http/https/ftp locators, which are accepted without network I/O
func (fs *FS) Open(locator string) (*File, error) {
	if IsRemoteURL(locator) {
		return &File{location: locator}, nil
	}

	p := locator
	if strings.HasPrefix(p, "file:") {
		var err error
		p, err = URLToFileName(p)
		if err != nil {
			return nil, err
		}
	}

	if archive, member, ok := splitZipLocator(p); ok {
		return openZipMember(archive, member)
	}

	return openLocal(p)
}

func openLocal(p string) (*File, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	var f *os.File
	err = withRetry(func() error {
		var openErr error
		f, openErr = os.Open(abs)
		return openErr
	})
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%q is a directory", abs)
	}

	return &File{r: f, closer: f, location: abs}, nil
}

func openZipMember(archive, member string) (*File, error) {
	abs, err := filepath.Abs(archive)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", archive, err)
	}

	zr, err := zip.OpenReader(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive %q: %w", abs, err)
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			logging.Warn("closing archive %q: %v", abs, cerr)
		}
	}()

	want := filepath.ToSlash(member)
	for _, zf := range zr.File {
		if zf.Name != want {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot open %q in %q: %w", member, abs, err)
		}
		// Zip streams are not seekable; buffer the member so tag readers
		// can seek within it.
		data, err := io.ReadAll(rc)
		closeErr := rc.Close()
		if err != nil {
			return nil, fmt.Errorf("cannot read %q in %q: %w", member, abs, err)
		}
		if closeErr != nil {
			logging.Warn("closing %q in %q: %v", member, abs, closeErr)
		}
		return &File{
			r:        bytes.NewReader(data),
			location: FileNameToURL(abs) + zipSeparator + want,
		}, nil
	}

	return nil, fmt.Errorf("%q not found in archive %q", member, abs)
}

func splitZipLocator(p string) (archive, member string, ok bool) {
	i := strings.Index(p, zipSeparator)
	if i < 0 {
		return "", "", false
	}
	return p[:i], p[i+len(zipSeparator):], true
}

// IsRemoteURL reports whether the locator uses a network-streaming scheme.
func IsRemoteURL(locator string) bool {
	return strings.HasPrefix(locator, "http:") ||
		strings.HasPrefix(locator, "https:") ||
		strings.HasPrefix(locator, "ftp:")
}

// IsURLForm reports whether the locator already carries one of the
// recognized URL schemes.
func IsURLForm(locator string) bool {
	return strings.HasPrefix(locator, "file:") || IsRemoteURL(locator)
}

// FileNameToURL converts an absolute filesystem path to a file: URL.
func FileNameToURL(p string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}

// URLToFileName converts a file: URL back to a filesystem path.
func URLToFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("bad file URL %q: %w", rawURL, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URL: %q", rawURL)
	}
	p := u.Path
	if u.Host != "" && u.Host != "localhost" {
		// UNC-style file URL
		p = "//" + u.Host + u.Path
	}
	return filepath.FromSlash(p), nil
}
