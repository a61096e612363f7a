package library

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"jukebox/internal/logging"
	"jukebox/internal/metrics"
)

// Default timeout for library queries
const defaultTimeout = 5 * time.Second

// Library is the SQL-backed track index. It answers quick-info lookups by
// URL, reverse lookups by metadata, and keeps the canonical casing of every
// known URL. Renames are broadcast to registered observers so open
// playlists stay consistent.
type Library struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex

	obsMu     sync.Mutex
	observers []RenameObserver
}

// RenameObserver is notified after a track URL changes in the index.
type RenameObserver interface {
	OnURLChanged(oldURL, newURL string)
}

// New opens (and if needed creates) the track index at dbPath.
// The parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Library, error) {
	logging.Info("Track index path: %s", dbPath)

	// WAL mode and a busy timeout prevent "database is locked" errors when
	// the indexer writes while lookups run.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open track index: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close track index after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to track index: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	l := &Library{
		db:     db,
		dbPath: dbPath,
	}

	if err := l.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close track index after schema failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize track index schema: %w", err)
	}

	logging.Info("Track index initialized at %s", dbPath)
	return l, nil
}

func (l *Library) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		track_name TEXT NOT NULL DEFAULT '',
		lead_artist_name TEXT NOT NULL DEFAULT '',
		album_name TEXT NOT NULL DEFAULT '',
		playtime_ms INTEGER NOT NULL DEFAULT -1,
		play_count INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_tracks_url_nocase ON tracks(url COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_tracks_metadata ON tracks(
		lead_artist_name COLLATE NOCASE,
		album_name COLLATE NOCASE,
		track_name COLLATE NOCASE
	);
	`

	_, err := l.db.ExecContext(ctx, schema)
	return err
}

// Close closes the track index.
func (l *Library) Close() error {
	return l.db.Close()
}

// RegisterRenameObserver subscribes an observer to URL rename broadcasts.
func (l *Library) RegisterRenameObserver(o RenameObserver) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	l.observers = append(l.observers, o)
}

func (l *Library) notifyRename(oldURL, newURL string) {
	l.obsMu.Lock()
	observers := make([]RenameObserver, len(l.observers))
	copy(observers, l.observers)
	l.obsMu.Unlock()

	for _, o := range observers {
		o.OnURLChanged(oldURL, newURL)
	}
}

// BeginBatch starts a transaction for batch upserts during indexing.
// The caller must finish it with EndBatch.
func (l *Library) BeginBatch() (*sql.Tx, error) {
	l.mu.Lock()
	tx, err := l.db.BeginTx(context.Background(), nil)
	l.mu.Unlock()
	return tx, err
}

// EndBatch commits the transaction, or rolls it back if err is non-nil.
func (l *Library) EndBatch(tx *sql.Tx, err error) error {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// UpdateDBMetrics refreshes the connection gauge.
func (l *Library) UpdateDBMetrics() {
	stats := l.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// recordQuery records library query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}
