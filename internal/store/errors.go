package store

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrClosed is returned by mutating calls after Close.
	ErrClosed = errors.New("store: closed")
	// ErrNotOpened is returned by mutating calls before Open, which would
	// otherwise overwrite durable snapshots with empty state.
	ErrNotOpened = errors.New("store: not opened")
)

// StorageReadError wraps a failed snapshot load.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError wraps a failed snapshot write. The in-memory state is
// unchanged when it is returned from Record or RecordReading.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// StorageTimeoutError is returned when a backend call outlives the store
// timeout. Op is "read" or "write".
type StorageTimeoutError struct {
	Op      string
	Key     string
	Timeout time.Duration
	Err     error
}

func (e *StorageTimeoutError) Error() string {
	return fmt.Sprintf("%s %s: timed out after %s", e.Op, e.Key, e.Timeout)
}

func (e *StorageTimeoutError) Unwrap() error { return e.Err }

// ErrorKind labels a storage error for metrics: "timeout", "read", "write",
// "closed", "not_opened", or "other".
func ErrorKind(err error) string {
	var (
		timeoutErr *StorageTimeoutError
		readErr    *StorageReadError
		writeErr   *StorageWriteError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &readErr):
		return "read"
	case errors.As(err, &writeErr):
		return "write"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, ErrNotOpened):
		return "not_opened"
	default:
		return "other"
	}
}

// IsStorageError reports whether err came from the store.
func IsStorageError(err error) bool {
	return ErrorKind(err) != "other"
}
