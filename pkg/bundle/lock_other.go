// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package bundle

// fileLock is the non-unix stub. Windows has no flock; the in-process
// named mutex in lock.go is the only serialization layer there.
type fileLock struct{}

// acquireFileLock is a no-op on platforms without flock.
func acquireFileLock(path string) (*fileLock, error) {
	return nil, nil
}

// release is a no-op on platforms without flock.
func (l *fileLock) release() {}
