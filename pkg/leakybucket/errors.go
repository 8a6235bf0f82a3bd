package leakybucket

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive fill amount. Returned before
	// any I/O; the bucket is left untouched.
	ErrInvalidAmount = errors.New("fill amount must be positive")

	// ErrInvalidSettings indicates a non-positive capacity or leak rate.
	ErrInvalidSettings = errors.New("invalid bucket settings")

	// ErrStorage indicates the adapter failed during a load, save, or reset.
	// The wrapped error names the bucket key and carries the backend cause.
	ErrStorage = errors.New("bucket storage operation failed")
)
