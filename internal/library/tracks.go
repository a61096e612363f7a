package library

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"jukebox/internal/logging"
)

// Track is one row of the track index.
type Track struct {
	ID             int64
	URL            string
	TrackName      string
	LeadArtistName string
	AlbumName      string
	PlaytimeMs     int64
	PlayCount      int
}

// QuickInfo is the subset of track metadata the playlist subsystem reads
// during lazy metadata loads.
type QuickInfo struct {
	TrackName      string
	LeadArtistName string
	AlbumName      string
	PlaytimeMs     int64
}

// UpsertTrack inserts or updates a track within an indexing transaction.
func (l *Library) UpsertTrack(tx *sql.Tx, t *Track) error {
	query := `
	INSERT INTO tracks (url, track_name, lead_artist_name, album_name, playtime_ms, updated_at)
	VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(url) DO UPDATE SET
		track_name = excluded.track_name,
		lead_artist_name = excluded.lead_artist_name,
		album_name = excluded.album_name,
		playtime_ms = excluded.playtime_ms,
		updated_at = strftime('%s', 'now')
	`
	_, err := tx.ExecContext(context.Background(), query,
		t.URL, t.TrackName, t.LeadArtistName, t.AlbumName, t.PlaytimeMs)
	return err
}

// DeleteStaleTracks removes tracks not seen since cutoff. Must be called
// within an indexing transaction.
func (l *Library) DeleteStaleTracks(tx *sql.Tx, cutoff time.Time) (int64, error) {
	result, err := tx.ExecContext(context.Background(),
		"DELETE FROM tracks WHERE updated_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// QuickInfo looks up track metadata by URL. The lookup is case-insensitive.
func (l *Library) QuickInfo(ctx context.Context, url string) (QuickInfo, bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("quick_info", start, err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var qi QuickInfo
	err = l.db.QueryRowContext(ctx, `
		SELECT track_name, lead_artist_name, album_name, playtime_ms
		FROM tracks WHERE url = ? COLLATE NOCASE
	`, url).Scan(&qi.TrackName, &qi.LeadArtistName, &qi.AlbumName, &qi.PlaytimeMs)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return QuickInfo{}, false, nil
	}
	if err != nil {
		return QuickInfo{}, false, err
	}
	return qi, true, nil
}

// URLByMetadata finds the URL of a track by artist and track name; the
// album narrows the match only when non-empty (M3U/PLS hints carry no
// album). Returns "" when no track matches.
func (l *Library) URLByMetadata(ctx context.Context, artist, album, track string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("url_by_metadata", start, err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
		SELECT url FROM tracks
		WHERE lead_artist_name = ? COLLATE NOCASE
		  AND track_name = ? COLLATE NOCASE
	`
	args := []interface{}{artist, track}
	if album != "" {
		query += " AND album_name = ? COLLATE NOCASE"
		args = append(args, album)
	}
	query += " LIMIT 1"

	var url string
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

// CanonicalURL returns the stored casing for a URL already present in the
// index. Case-only duplicates between playlists and the index trip up
// the reference-count bookkeeping, so verification prefers the known
// casing. Unknown URLs are returned unchanged.
func (l *Library) CanonicalURL(ctx context.Context, url string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("canonical_url", start, err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// Exact match first: the given casing is already canonical.
	var stored string
	err = l.db.QueryRowContext(ctx, "SELECT url FROM tracks WHERE url = ?", url).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return url, err
	}

	err = l.db.QueryRowContext(ctx,
		"SELECT url FROM tracks WHERE url = ? COLLATE NOCASE", url).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return url, nil
	}
	if err != nil {
		return url, err
	}
	if strings.EqualFold(stored, url) {
		return stored, nil
	}
	return url, nil
}

// PlayCount returns the play count recorded for a URL.
func (l *Library) PlayCount(ctx context.Context, url string) (int, bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("play_count", start, err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = l.db.QueryRowContext(ctx,
		"SELECT play_count FROM tracks WHERE url = ? COLLATE NOCASE", url).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// IncrementPlayCount bumps the play count for a URL after playback.
func (l *Library) IncrementPlayCount(ctx context.Context, url string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("increment_play_count", start, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = l.db.ExecContext(ctx,
		"UPDATE tracks SET play_count = play_count + 1 WHERE url = ? COLLATE NOCASE", url)
	return err
}

// TrackCount returns the number of tracks in the index.
func (l *Library) TrackCount(ctx context.Context) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("track_count", start, err) }()

	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	err = l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&count)
	return count, err
}

// RenameURL updates a track's URL and broadcasts the change to registered
// observers (open playlists) so their entries and reference counts stay
// consistent.
func (l *Library) RenameURL(ctx context.Context, oldURL, newURL string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("rename_url", start, err) }()

	l.mu.Lock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var result sql.Result
	result, err = l.db.ExecContext(ctx,
		"UPDATE tracks SET url = ?, updated_at = strftime('%s', 'now') WHERE url = ?",
		newURL, oldURL)
	l.mu.Unlock()
	if err != nil {
		return err
	}

	// Broadcast even when the index had no such row: open playlists may
	// still reference the old URL and need to reload metadata.
	if rows, raErr := result.RowsAffected(); raErr == nil {
		logging.Debug("renamed %d track(s): %s -> %s", rows, oldURL, newURL)
	}
	l.notifyRename(oldURL, newURL)
	return nil
}
