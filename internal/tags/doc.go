// Package tags wraps the dhowden/tag library behind the quick-tag
// interface the playlist package consumes: track, artist, and album
// names read directly from an audio stream.
package tags
