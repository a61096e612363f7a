// Package library implements the SQL-backed track index the playlist
// subsystem consults: quick-info lookups by URL, reverse lookups by
// artist/album/track metadata, canonical URL casing, and play counts.
//
// The index is populated by the background indexer and queried lazily by
// playlist entries. Track renames are broadcast to registered observers
// (open playlists) so reference counts and cached metadata stay
// consistent.
package library
