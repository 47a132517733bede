// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Concurrent assemblies into the same destination must be serialized so two
// staging attempts cannot race on the final atomic-replace step. Two layers
// provide that: an in-process named mutex (always), and a cross-process
// flock on a well-known temp file (unix only; see lock_unix.go). The
// zero-byte lock file is harmless if orphaned; the kernel releases the
// flock automatically when the fd is closed, including on process crash.

var (
	destMutexesMu sync.Mutex
	destMutexes   = make(map[string]*sync.Mutex)
)

// destinationLock holds the serialization locks for one destination path.
type destinationLock struct {
	mu    *sync.Mutex
	flock *fileLock
}

// lockDestination acquires the in-process mutex for the destination and,
// where supported, a blocking exclusive flock shared across processes.
// The destination must already be an absolute, cleaned path.
func lockDestination(dest string) (*destinationLock, error) {
	destMutexesMu.Lock()
	mu, ok := destMutexes[dest]
	if !ok {
		mu = &sync.Mutex{}
		destMutexes[dest] = mu
	}
	destMutexesMu.Unlock()

	mu.Lock()

	fl, err := acquireFileLock(lockFilePath(dest))
	if err != nil {
		mu.Unlock()
		return nil, fmt.Errorf("lock destination %s: %w", dest, err)
	}

	return &destinationLock{mu: mu, flock: fl}, nil
}

// release unlocks both layers. Safe to call multiple times.
func (l *destinationLock) release() {
	if l == nil || l.mu == nil {
		return
	}
	l.flock.release()
	l.flock = nil
	l.mu.Unlock()
	l.mu = nil
}

// lockFilePath returns the cross-process lock file path for a destination.
// The file lives in $XDG_RUNTIME_DIR (per-user tmpfs, auto-cleaned) with a
// fallback to os.TempDir(), named by the destination's fingerprint so
// distinct destinations never contend.
func lockFilePath(dest string) string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	name := "archbundle-" + FingerprintBytes([]byte(dest)).Hex()[:16] + ".lock"
	return filepath.Join(dir, name)
}
