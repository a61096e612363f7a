// Package playlist implements the in-memory playlist: an ordered
// collection of track entries with lazy URL verification, lazily-loaded
// descriptive metadata, a case-insensitive URL reference-count index, and
// import/export codecs for the M3U/M3U8, PLS, CUE, and XSPF/XML/WPL
// playlist formats.
//
// Imports are deliberately fast and non-validating: codecs only parse the
// container format and record raw references (URL plus container path and
// any inline artist/album/title hints). Each entry verifies its URL
// lazily, at most once, through the Resolver's collaborators: the track
// library index, the filesystem abstraction, and the tag reader.
//
// A Playlist is not safe for concurrent use. All mutation and
// verification is expected to happen on one designated goroutine; callers
// that share a playlist across goroutines must serialize access
// themselves.
package playlist
