// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"archbundle-cli/pkg/bundle"
)

// fakeInvoker records every invocation and delegates to a build func.
type fakeInvoker struct {
	mu    sync.Mutex
	outs  []string
	build func(ctx context.Context, target bundle.BuildTarget, out string) error
}

func (f *fakeInvoker) Build(ctx context.Context, target bundle.BuildTarget, out string) error {
	f.mu.Lock()
	f.outs = append(f.outs, out)
	f.mu.Unlock()
	return f.build(ctx, target, out)
}

func writeOutput(t bundle.BuildTarget, out string) error {
	return os.WriteFile(out, []byte("lib-"+t.Identifier()), 0o644)
}

func testTargets() []bundle.BuildTarget {
	return []bundle.BuildTarget{
		{Triple: bundle.Triple{Architecture: "x86_64", Platform: bundle.PlatformSimulator}, MinOSVersion: "14.0"},
		{Triple: bundle.Triple{Architecture: "arm64", Platform: bundle.PlatformDevice}, MinOSVersion: "14.0"},
	}
}

func TestResolveOrdersArtifactsByInput(t *testing.T) {
	invoker := &fakeInvoker{build: func(_ context.Context, target bundle.BuildTarget, out string) error {
		return writeOutput(target, out)
	}}
	resolver := &Resolver{Invoker: invoker, LibraryName: "peer", Concurrency: 2}

	targets := testTargets()
	res, err := resolver.Resolve(context.Background(), targets)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	defer res.Discard()

	if len(res.Artifacts) != len(targets) {
		t.Fatalf("got %d artifacts, want %d", len(res.Artifacts), len(targets))
	}
	for n, art := range res.Artifacts {
		if art.Target.Triple != targets[n].Triple {
			t.Errorf("artifact %d is for %s, want %s", n, art.Target.Identifier(), targets[n].Identifier())
		}
		if filepath.Base(art.Path) != "libpeer.a" {
			t.Errorf("artifact %d path = %q, want libpeer.a basename", n, art.Path)
		}
		data, err := os.ReadFile(art.Path)
		if err != nil {
			t.Fatalf("read artifact %d: %v", n, err)
		}
		want := "lib-" + targets[n].Identifier()
		if string(data) != want {
			t.Errorf("artifact %d contents = %q, want %q", n, data, want)
		}
		if art.Fingerprint != bundle.FingerprintBytes(data) {
			t.Errorf("artifact %d fingerprint does not match contents", n)
		}
	}
}

func TestResolveFailureCancelsSiblingsAndDiscards(t *testing.T) {
	started := make(chan struct{})
	canceled := make(chan struct{})
	failing := bundle.Triple{Architecture: "arm64", Platform: bundle.PlatformDevice}

	invoker := &fakeInvoker{build: func(ctx context.Context, target bundle.BuildTarget, _ string) error {
		if target.Triple == failing {
			<-started
			return errors.New("compiler crashed")
		}
		close(started)
		<-ctx.Done()
		close(canceled)
		return ctx.Err()
	}}
	resolver := &Resolver{Invoker: invoker, LibraryName: "peer", Concurrency: 2}

	_, err := resolver.Resolve(context.Background(), testTargets())
	if err == nil {
		t.Fatal("Resolve() succeeded, want build failure")
	}
	if !errors.Is(err, ErrBuild) {
		t.Errorf("error does not match ErrBuild: %v", err)
	}
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("error is not a *BuildError: %v", err)
	}
	if buildErr.Target.Triple != failing {
		t.Errorf("BuildError target = %s, want %s", buildErr.Target.Identifier(), failing.Identifier())
	}
	<-canceled

	invoker.mu.Lock()
	defer invoker.mu.Unlock()
	for _, out := range invoker.outs {
		root := filepath.Dir(filepath.Dir(out))
		if _, err := os.Stat(root); !os.IsNotExist(err) {
			t.Errorf("scratch directory %s survived a failed resolution", root)
		}
	}
}

func TestResolveMissingOutput(t *testing.T) {
	invoker := &fakeInvoker{build: func(context.Context, bundle.BuildTarget, string) error {
		return nil
	}}
	resolver := &Resolver{Invoker: invoker, LibraryName: "peer"}

	_, err := resolver.Resolve(context.Background(), testTargets()[:1])
	if err == nil {
		t.Fatal("Resolve() succeeded despite missing output file")
	}
	if !errors.Is(err, ErrBuild) {
		t.Errorf("error does not match ErrBuild: %v", err)
	}
}

func TestResolveRejectsDuplicateTargets(t *testing.T) {
	invoker := &fakeInvoker{build: func(_ context.Context, target bundle.BuildTarget, out string) error {
		return writeOutput(target, out)
	}}
	resolver := &Resolver{Invoker: invoker, LibraryName: "peer"}

	target := testTargets()[0]
	_, err := resolver.Resolve(context.Background(), []bundle.BuildTarget{target, target})
	if !errors.Is(err, bundle.ErrDuplicateSlice) {
		t.Fatalf("Resolve() error = %v, want ErrDuplicateSlice", err)
	}
	if len(invoker.outs) != 0 {
		t.Error("invoker ran despite duplicate targets")
	}
}

func TestResolveRejectsEmptyTargets(t *testing.T) {
	resolver := &Resolver{Invoker: &fakeInvoker{}, LibraryName: "peer"}
	if _, err := resolver.Resolve(context.Background(), nil); err == nil {
		t.Fatal("Resolve() succeeded with no targets")
	}
}

func TestResolutionDiscard(t *testing.T) {
	invoker := &fakeInvoker{build: func(_ context.Context, target bundle.BuildTarget, out string) error {
		return writeOutput(target, out)
	}}
	resolver := &Resolver{Invoker: invoker, LibraryName: "peer"}

	res, err := resolver.Resolve(context.Background(), testTargets())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	root := filepath.Dir(filepath.Dir(res.Artifacts[0].Path))
	if err := res.Discard(); err != nil {
		t.Fatalf("Discard() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("scratch directory %s survived Discard", root)
	}
	if err := res.Discard(); err != nil {
		t.Errorf("second Discard() error = %v", err)
	}
}
