// Package mediatypes classifies files found in the music directory by
// extension: audio tracks, playlist containers, and everything else.
// It also provides extension-to-MIME-type mapping for serving files.
package mediatypes
