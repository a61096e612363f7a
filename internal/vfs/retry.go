package vfs

import (
	"errors"
	"syscall"
	"time"

	"jukebox/internal/logging"
)

const (
	maxRetries = 3
	retryDelay = 50 * time.Millisecond
)

// isTransient reports whether an error is worth retrying. Interrupted
// syscalls and stale NFS handles both clear up on a subsequent attempt.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.ESTALE)
}

// withRetry runs op, retrying transient filesystem errors with a short
// linear backoff.
func withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = op()
		if err == nil || !isTransient(err) {
			return err
		}
		logging.Debug("transient filesystem error (attempt %d/%d): %v", attempt+1, maxRetries, err)
		time.Sleep(retryDelay * time.Duration(attempt+1))
	}
	return err
}
