// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Fingerprint is a 32-byte BLAKE3 digest of an artifact's file bytes. It is
// used for idempotence checks and to verify copies into the staging area.
type Fingerprint [32]byte

// FingerprintBytes computes the fingerprint of the given data.
func FingerprintBytes(data []byte) Fingerprint {
	return Fingerprint(blake3.Sum256(data))
}

// FingerprintFile computes the fingerprint of the file at path by streaming
// its contents, so large libraries are not held in memory.
func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("open %s for fingerprinting: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprint %s: %w", path, err)
	}

	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// Hex returns the lowercase hex encoding of the fingerprint.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters of the fingerprint, for logs
// and progress output.
func (f Fingerprint) Short() string {
	return f.Hex()[:12]
}

// IsZero reports whether the fingerprint is the zero value (never a valid
// digest of real content for practical purposes).
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}
