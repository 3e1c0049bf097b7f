//go:build !linux

// Package rt applies process-wide latency hints for the filter loop.
package rt

import "errors"

// LockMemory is not supported on non-Linux platforms.
func LockMemory() error {
	return errors.New("rt: memory locking requires Linux")
}

// UnlockMemory is a no-op on non-Linux platforms.
func UnlockMemory() error {
	return nil
}
