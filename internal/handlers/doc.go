// Package handlers implements the HTTP API: playlist management (create,
// import, export, entry operations), library lookups and renames, and the
// health, readiness, and version endpoints.
//
// Playlists are not safe for concurrent use, so every request that touches
// the open-playlist registry runs under a single mutex. Library renames are
// broadcast back into the registry so open playlists stay consistent with
// the track index.
package handlers
