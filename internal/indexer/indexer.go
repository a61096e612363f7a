package indexer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jukebox/internal/library"
	"jukebox/internal/logging"
	"jukebox/internal/mediatypes"
	"jukebox/internal/metrics"
	"jukebox/internal/tags"
	"jukebox/internal/vfs"
)

const (
	// Number of tracks to upsert before committing a batch
	batchSize = 500

	// Minimum tracks to index before marking the server as ready
	minTracksForReady = 100

	// Delay between batches to let playlist queries through
	batchDelay = 10 * time.Millisecond

	// Default polling interval for change detection
	defaultPollInterval = 30 * time.Second
)

// Indexer scans the music directory and keeps the track library current.
type Indexer struct {
	lib           *library.Library
	fsys          *vfs.FS
	tagReader     *tags.Reader
	musicDir      string
	indexInterval time.Duration
	pollInterval  time.Duration
	stopChan      chan struct{}

	indexMu              sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	tracksIndexed atomic.Int64
	indexProgress atomic.Value

	// Callback when a scan completes
	onIndexComplete func()

	// Last known state for lightweight change detection
	stateMu            sync.RWMutex
	lastRootModTime    time.Time
	lastTopLevelCount  int
	lastSubdirModTimes map[string]time.Time
}

// IndexProgress tracks the current scan progress
type IndexProgress struct {
	TracksIndexed int64     `json:"tracksIndexed"`
	IsIndexing    bool      `json:"isIndexing"`
	StartedAt     time.Time `json:"startedAt,omitempty"`
}

// New creates a new Indexer instance.
func New(lib *library.Library, musicDir string, indexInterval time.Duration) *Indexer {
	idx := &Indexer{
		lib:                lib,
		fsys:               vfs.New(),
		tagReader:          tags.New(),
		musicDir:           musicDir,
		indexInterval:      indexInterval,
		pollInterval:       defaultPollInterval,
		stopChan:           make(chan struct{}),
		startTime:          time.Now(),
		lastSubdirModTimes: make(map[string]time.Time),
	}
	idx.indexProgress.Store(IndexProgress{})
	return idx
}

// SetPollInterval sets the interval for polling-based change detection.
func (idx *Indexer) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		idx.pollInterval = interval
	}
}

// SetOnIndexComplete sets a callback to be invoked when a scan completes.
func (idx *Indexer) SetOnIndexComplete(callback func()) {
	idx.onIndexComplete = callback
}

// Start begins the scanning process.
func (idx *Indexer) Start() error {
	go func() {
		logging.Info("Starting initial library scan in background...")
		if err := idx.Index(); err != nil {
			logging.Error("Initial scan error: %v", err)
			idx.indexMu.Lock()
			idx.initialIndexError = err
			idx.indexMu.Unlock()
		}
	}()

	go idx.pollForChanges()
	go idx.periodicIndex()

	return nil
}

// Stop stops the scanning process.
func (idx *Indexer) Stop() {
	close(idx.stopChan)
}

// IsReady returns true if the server is ready to accept traffic.
func (idx *Indexer) IsReady() bool {
	if idx.tracksIndexed.Load() >= minTracksForReady {
		return true
	}

	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.initialIndexComplete
}

func (idx *Indexer) getProgress() IndexProgress {
	if progress, ok := idx.indexProgress.Load().(IndexProgress); ok {
		return progress
	}
	return IndexProgress{}
}

// GetProgress returns the current scan progress.
func (idx *Indexer) GetProgress() IndexProgress {
	return idx.getProgress()
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool           `json:"ready"`
	Indexing          bool           `json:"indexing"`
	StartTime         time.Time      `json:"startTime"`
	Uptime            string         `json:"uptime"`
	LastIndexed       time.Time      `json:"lastIndexed,omitempty"`
	InitialIndexError string         `json:"initialIndexError,omitempty"`
	TracksIndexed     int64          `json:"tracksIndexed"`
	IndexProgress     *IndexProgress `json:"indexProgress,omitempty"`
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	progress := idx.getProgress()

	status := HealthStatus{
		Ready:         idx.initialIndexComplete || idx.tracksIndexed.Load() >= minTracksForReady,
		Indexing:      idx.isIndexing,
		StartTime:     idx.startTime,
		Uptime:        time.Since(idx.startTime).String(),
		LastIndexed:   idx.lastIndexTime,
		TracksIndexed: idx.tracksIndexed.Load(),
	}

	if idx.isIndexing {
		status.IndexProgress = &progress
	}

	if idx.initialIndexError != nil {
		status.InitialIndexError = idx.initialIndexError.Error()
	}

	return status
}

// pollForChanges periodically checks for file changes.
func (idx *Indexer) pollForChanges() {
	// Wait for the initial scan to complete
	for !idx.IsReady() {
		select {
		case <-time.After(1 * time.Second):
		case <-idx.stopChan:
			return
		}
	}

	logging.Info("Starting change detection polling (interval: %v)", idx.pollInterval)

	ticker := time.NewTicker(idx.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			changed, err := idx.detectChanges()
			if err != nil {
				logging.Error("Error detecting changes: %v", err)
				continue
			}
			if changed {
				logging.Info("Music directory changes detected, triggering re-scan")
				if err := idx.Index(); err != nil {
					logging.Error("Re-scan after change detection failed: %v", err)
				}
			}
		case <-idx.stopChan:
			logging.Info("Change detection polling stopped")
			return
		}
	}
}

// detectChanges performs a lightweight check to detect if files changed.
// It only checks the root directory's modification time and a quick count
// of top-level entries, avoiding expensive recursive walks on NFS.
func (idx *Indexer) detectChanges() (bool, error) {
	rootInfo, err := os.Stat(idx.musicDir)
	if err != nil {
		return false, fmt.Errorf("failed to stat music directory: %w", err)
	}

	idx.stateMu.RLock()
	lastRootModTime := idx.lastRootModTime
	lastTopLevelCount := idx.lastTopLevelCount
	idx.stateMu.RUnlock()

	if rootInfo.ModTime().After(lastRootModTime) {
		logging.Debug("Root directory modified: %v > %v", rootInfo.ModTime(), lastRootModTime)
		return true, nil
	}

	entries, err := os.ReadDir(idx.musicDir)
	if err != nil {
		return false, fmt.Errorf("failed to read music directory: %w", err)
	}

	topLevelCount := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ".") {
			topLevelCount++
		}
	}

	if topLevelCount != lastTopLevelCount {
		logging.Debug("Top-level count changed: %d -> %d", lastTopLevelCount, topLevelCount)
		return true, nil
	}

	return idx.checkSubdirectorySample(entries), nil
}

// checkSubdirectorySample checks modification times of top-level
// subdirectories, catching changes in nested album folders without
// walking the entire tree.
func (idx *Indexer) checkSubdirectorySample(entries []fs.DirEntry) bool {
	idx.stateMu.RLock()
	lastSubdirModTimes := idx.lastSubdirModTimes
	idx.stateMu.RUnlock()

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(idx.musicDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if lastMod, exists := lastSubdirModTimes[entry.Name()]; exists {
			if info.ModTime().After(lastMod) {
				logging.Debug("Subdirectory %s modified: %v > %v", entry.Name(), info.ModTime(), lastMod)
				return true
			}
		} else {
			logging.Debug("New subdirectory detected: %s", entry.Name())
			return true
		}
	}

	return false
}

// updateLastKnownState updates the cached state after a scan.
func (idx *Indexer) updateLastKnownState() {
	rootInfo, err := os.Stat(idx.musicDir)
	if err != nil {
		logging.Warn("Failed to stat music directory for state update: %v", err)
		return
	}

	entries, err := os.ReadDir(idx.musicDir)
	if err != nil {
		logging.Warn("Failed to read music directory for state update: %v", err)
		return
	}

	topLevelCount := 0
	subdirModTimes := make(map[string]time.Time)

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topLevelCount++

		if entry.IsDir() {
			path := filepath.Join(idx.musicDir, entry.Name())
			if info, err := os.Stat(path); err == nil {
				subdirModTimes[entry.Name()] = info.ModTime()
			}
		}
	}

	idx.stateMu.Lock()
	idx.lastRootModTime = rootInfo.ModTime()
	idx.lastTopLevelCount = topLevelCount
	idx.lastSubdirModTimes = subdirModTimes
	idx.stateMu.Unlock()
}

// Index performs a full scan of the music directory.
func (idx *Indexer) Index() error {
	if !idx.tryStartIndexing() {
		logging.Info("Scan already in progress, skipping...")
		return nil
	}
	defer idx.finishIndexing()

	metrics.IndexerIsRunning.Set(1)
	defer metrics.IndexerIsRunning.Set(0)
	metrics.IndexerRunsTotal.Inc()

	startTime := time.Now()
	logging.Info("Starting music library scan...")

	idx.tracksIndexed.Store(0)
	idx.indexProgress.Store(IndexProgress{IsIndexing: true, StartedAt: startTime})

	scanTime := time.Now()

	total, err := idx.walkAndIndex(startTime)
	if err != nil {
		metrics.IndexerErrors.Inc()
		return err
	}

	if err := idx.cleanupStaleTracks(scanTime); err != nil {
		logging.Error("Error cleaning up stale tracks: %v", err)
		metrics.IndexerErrors.Inc()
	}

	idx.finalizeIndex(startTime, total)
	idx.updateLastKnownState()

	duration := time.Since(startTime)
	metrics.IndexerLastRunTimestamp.Set(float64(time.Now().Unix()))
	metrics.IndexerDuration.Observe(duration.Seconds())
	metrics.IndexerTracksIndexed.Set(float64(total))

	return nil
}

// tryStartIndexing attempts to start a scan, returns false if one is
// already in progress.
func (idx *Indexer) tryStartIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

func (idx *Indexer) finishIndexing() {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()

	idx.isIndexing = false
	idx.initialIndexComplete = true
}

// walkAndIndex walks the music directory and upserts tracks in batches.
func (idx *Indexer) walkAndIndex(startTime time.Time) (int64, error) {
	var currentBatch []library.Track
	var total int64

	err := filepath.Walk(idx.musicDir, func(path string, info os.FileInfo, err error) error {
		select {
		case <-idx.stopChan:
			return fs.SkipAll
		default:
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(info.Name()))
		if mediatypes.GetFileType(ext) != mediatypes.FileTypeAudio {
			return nil
		}

		currentBatch = append(currentBatch, idx.readTrack(path, info))
		total++
		idx.tracksIndexed.Add(1)

		if len(currentBatch) >= batchSize {
			if err := idx.processBatch(currentBatch); err != nil {
				logging.Error("Error processing batch: %v", err)
			}
			currentBatch = currentBatch[:0]

			idx.updateProgress(startTime)
			time.Sleep(batchDelay)

			if total%5000 == 0 {
				logging.Info("Scanned %d tracks...", total)
			}
		}

		return nil
	})

	if err != nil && !errors.Is(err, fs.SkipAll) {
		return total, fmt.Errorf("walk error: %w", err)
	}

	if len(currentBatch) > 0 {
		if err := idx.processBatch(currentBatch); err != nil {
			logging.Error("Error processing final batch: %v", err)
		}
	}

	return total, nil
}

// readTrack builds a library row for an audio file, reading its tags.
// Files without readable tags still get a row; the title falls back to
// the file name so the track stays findable.
func (idx *Indexer) readTrack(path string, info os.FileInfo) library.Track {
	track := library.Track{
		URL:        vfs.FileNameToURL(path),
		TrackName:  strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
		PlaytimeMs: -1,
	}

	f, err := idx.fsys.Open(path)
	if err != nil {
		logging.Debug("Cannot open %s for tag reading: %v", path, err)
		return track
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn("closing %s: %v", path, cerr)
		}
	}()

	qt, err := idx.tagReader.ReadQuickTags(f.Stream())
	if err != nil {
		logging.Debug("No readable tags in %s: %v", path, err)
		return track
	}

	if qt.TrackName != "" {
		track.TrackName = qt.TrackName
	}
	track.LeadArtistName = qt.LeadArtistName
	track.AlbumName = qt.AlbumName
	if qt.PlaytimeMs > 0 {
		track.PlaytimeMs = qt.PlaytimeMs
	}
	return track
}

func (idx *Indexer) updateProgress(startTime time.Time) {
	idx.indexProgress.Store(IndexProgress{
		TracksIndexed: idx.tracksIndexed.Load(),
		IsIndexing:    true,
		StartedAt:     startTime,
	})
}

// finalizeIndex completes the scan and updates stats.
func (idx *Indexer) finalizeIndex(startTime time.Time, total int64) {
	duration := time.Since(startTime)

	idx.indexMu.Lock()
	idx.lastIndexTime = time.Now()
	idx.indexMu.Unlock()

	idx.indexProgress.Store(IndexProgress{
		TracksIndexed: total,
		IsIndexing:    false,
	})

	logging.Info("Library scan complete: %d tracks in %v", total, duration)

	if idx.onIndexComplete != nil {
		idx.onIndexComplete()
	}
}

// processBatch upserts a batch of tracks in a single transaction.
func (idx *Indexer) processBatch(tracks []library.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := idx.lib.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}

	for i := range tracks {
		if err := idx.lib.UpsertTrack(tx, &tracks[i]); err != nil {
			logging.Warn("Error upserting track %s: %v", tracks[i].URL, err)
		}
	}

	if err := idx.lib.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// cleanupStaleTracks removes tracks whose files disappeared since the
// previous scan.
func (idx *Indexer) cleanupStaleTracks(scanTime time.Time) error {
	tx, err := idx.lib.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}

	deleted, err := idx.lib.DeleteStaleTracks(tx, scanTime)
	if err != nil {
		if endErr := idx.lib.EndBatch(tx, err); endErr != nil {
			logging.Error("failed to end batch after cleanup error: %v", endErr)
		}
		return err
	}

	if err := idx.lib.EndBatch(tx, nil); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if deleted > 0 {
		logging.Info("Removed %d stale tracks from the library", deleted)
	}

	return nil
}

func (idx *Indexer) periodicIndex() {
	ticker := time.NewTicker(idx.indexInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logging.Debug("Periodic re-scan triggered")
			if err := idx.Index(); err != nil {
				logging.Error("periodic re-scan failed: %v", err)
			}
		case <-idx.stopChan:
			return
		}
	}
}

// IsIndexing returns whether a scan is currently in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns the time of the last completed scan.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.indexMu.Lock()
	defer idx.indexMu.Unlock()
	return idx.lastIndexTime
}

// TriggerIndex manually triggers a re-scan.
func (idx *Indexer) TriggerIndex() {
	go func() {
		if err := idx.Index(); err != nil {
			logging.Error("manually triggered re-scan failed: %v", err)
		}
	}()
}
