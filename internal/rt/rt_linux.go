//go:build linux

// Package rt applies process-wide latency hints for the filter loop.
package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// LockMemory locks current and future pages in RAM so that handling an edge
// never waits on a page fault. Usually needs CAP_IPC_LOCK or a raised
// RLIMIT_MEMLOCK.
func LockMemory() error {
	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		return fmt.Errorf("mlockall: %w", err)
	}
	return nil
}

// UnlockMemory undoes LockMemory.
func UnlockMemory() error {
	if err := unix.Munlockall(); err != nil {
		return fmt.Errorf("munlockall: %w", err)
	}
	return nil
}
