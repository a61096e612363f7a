// Package vfs provides the filesystem abstraction used to open track
// locators. A locator may be a plain filesystem path, a file: URL, a
// member of a zip archive ("album.zip#zip:track.mp3"), or a remote
// http/https/ftp URL. Remote locators are accepted and normalized but
// never fetched; callers decide whether to stream them.
//
// Opening returns both a stream and the canonical location the locator
// resolved to, which the playlist verifier records as the entry's
// verified URL.
package vfs
