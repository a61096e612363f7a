package playlist

import "io"

// TrackInfo is the descriptive metadata carried by an entry once its
// "misc" category has been loaded. PlaytimeMs is -1 when unknown.
type TrackInfo struct {
	TrackName      string `json:"trackName"`
	LeadArtistName string `json:"leadArtistName"`
	AlbumName      string `json:"albumName"`
	PlaytimeMs     int64  `json:"playtimeMs"`
}

// Ref is a raw, possibly unverified track reference: the URL as it
// appeared in a playlist file plus the path of the containing playlist
// (for resolving relative URLs) and any inline metadata hints the file
// carried. The hints are one-shot; verification drops them.
type Ref struct {
	URL           string
	ContainerPath string
	Artist        string
	Album         string
	Track         string
	// PlaytimeMs is a duration hint from the container file (e.g. the
	// seconds field of #EXTINF). 0 means no hint.
	PlaytimeMs int64
}

// LibraryIndex is the track library consulted during verification and
// lazy metadata loads. Implementations report "not found" rather than
// errors; a broken index must never make these operations fatal.
type LibraryIndex interface {
	// QuickInfo looks up descriptive metadata by URL.
	QuickInfo(url string) (TrackInfo, bool)
	// URLByMetadata finds a URL by artist and track name; album narrows
	// the match only when non-empty. Returns "" when nothing matches.
	URLByMetadata(artist, album, track string) string
	// CanonicalURL returns the index's stored casing for a known URL, or
	// the input unchanged.
	CanonicalURL(url string) string
	// PlayCount returns the play count recorded for a URL.
	PlayCount(url string) (int, bool)
}

// File is an opened locator.
type File interface {
	// Location is the canonical location the locator resolved to.
	Location() string
	// Stream is the readable content; nil for remote locators.
	Stream() io.ReadSeeker
	// Close releases the underlying handle.
	Close() error
}

// Opener is the filesystem abstraction used to open locators.
type Opener interface {
	Open(locator string) (File, error)
}

// TagReader extracts quick tags from an audio stream.
type TagReader interface {
	ReadQuickTags(stream io.ReadSeeker) (TrackInfo, error)
}

// Resolver bundles the collaborators entries resolve themselves against.
// Any field may be nil; the corresponding lookup is then skipped.
type Resolver struct {
	Library LibraryIndex
	FS      Opener
	Tags    TagReader
}
