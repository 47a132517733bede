// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestLockDestinationSequential(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "peer.bundle")

	l1, err := lockDestination(dest)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	l1.release()
	// release is idempotent.
	l1.release()

	l2, err := lockDestination(dest)
	if err != nil {
		t.Fatalf("second lock after release: %v", err)
	}
	l2.release()
}

func TestLockFilePathDistinctPerDestination(t *testing.T) {
	a := lockFilePath("/tmp/a.bundle")
	b := lockFilePath("/tmp/b.bundle")
	if a == b {
		t.Errorf("distinct destinations share lock file %q", a)
	}
	if filepath.Base(a) == "" || !filepath.IsAbs(a) {
		t.Errorf("lock file path %q is not absolute", a)
	}
}

func TestConcurrentAssembliesSerialized(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "peer.bundle")
	a := &Assembler{Validator: testValidator()}

	// Two goroutines repeatedly reassembling the same destination with
	// different contents. Serialization means every observation of the
	// published bundle is internally consistent.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 2; g++ {
		contents := []string{"AAAA", "BBBB"}[g]
		srcDir := t.TempDir()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 4; i++ {
				path := filepath.Join(srcDir, "lib.a")
				if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
					errs <- err
					return
				}
				art := Artifact{
					Target:      deviceArm64(),
					Path:        path,
					Fingerprint: FingerprintBytes([]byte(contents)),
				}
				if _, err := a.Assemble(context.Background(), AssembleRequest{
					Name:        "peer",
					Artifacts:   []Artifact{art},
					Destination: dest,
				}); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Assemble: %v", err)
	}

	// Final state is one of the two complete bundles.
	data, err := os.ReadFile(filepath.Join(dest, "device-arm64", "libpeer.a"))
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); s != "AAAA" && s != "BBBB" {
		t.Errorf("published library = %q, want a complete write from one assembler", s)
	}
}

func TestFingerprint(t *testing.T) {
	if FingerprintBytes([]byte("A")) == FingerprintBytes([]byte("B")) {
		t.Error("distinct contents share a fingerprint")
	}

	path := filepath.Join(t.TempDir(), "lib.a")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := FingerprintFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile != FingerprintBytes([]byte("hello")) {
		t.Error("streaming and in-memory fingerprints disagree")
	}
	if fromFile.IsZero() {
		t.Error("fingerprint of real content is zero")
	}
	if len(fromFile.Hex()) != 64 || len(fromFile.Short()) != 12 {
		t.Errorf("unexpected encoding lengths: hex=%d short=%d", len(fromFile.Hex()), len(fromFile.Short()))
	}
}
