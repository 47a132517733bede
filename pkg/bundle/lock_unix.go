// SPDX-License-Identifier: MPL-2.0

//go:build unix

package bundle

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fileLock holds a blocking exclusive flock on a well-known file path,
// serializing assemblies of the same destination across processes.
type fileLock struct {
	file *os.File
}

// acquireFileLock opens (or creates) the lock file and acquires a blocking
// exclusive flock. The call blocks until the lock is available.
func acquireFileLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &fileLock{file: f}, nil
}

// release unlocks the flock and closes the file descriptor. Safe to call
// multiple times.
func (l *fileLock) release() {
	if l == nil || l.file == nil {
		return
	}
	// LOCK_UN before Close for explicitness; Close also releases the flock.
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
