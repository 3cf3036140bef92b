package fsutil

import (
	"os"
	"time"
)

// RenameRetryOptions configures AtomicRenameRetry's backoff schedule.
type RenameRetryOptions struct {
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxAttempts caps how many rename attempts are made in total.
	MaxAttempts int
}

// DefaultRenameRetryOptions is the compaction commit-point retry schedule:
// exponential backoff starting at 100ms, doubling, capped at 10 attempts.
// It absorbs transient filesystem races such as Windows handle caching.
func DefaultRenameRetryOptions() RenameRetryOptions {
	return RenameRetryOptions{
		InitialBackoff: 100 * time.Millisecond,
		MaxAttempts:    10,
	}
}

// AtomicRenameRetry renames oldpath to newpath, retrying with exponential
// backoff on failure per opts. It returns the number of attempts made and
// the last error if every attempt failed.
func AtomicRenameRetry(oldpath, newpath string, opts RenameRetryOptions) (attempts int, err error) {
	backoff := opts.InitialBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	for attempts = 1; attempts <= maxAttempts; attempts++ {
		err = os.Rename(oldpath, newpath)
		if err == nil {
			return attempts, nil
		}
		if attempts == maxAttempts {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	return attempts, err
}
