// Package indexer scans the music directory for audio files, extracts
// their tags, and keeps the track library in sync. Scans run in the
// background: an initial scan at startup, lightweight change-detection
// polling, and a periodic full re-scan.
package indexer
