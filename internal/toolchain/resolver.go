// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"archbundle-cli/pkg/bundle"
)

// Resolver turns an ordered list of build targets into artifacts by
// running the configured invoker once per target, in parallel up to the
// concurrency limit. Resolution is all-or-nothing: the first failure
// cancels in-flight sibling builds and discards every output of the
// attempt, so a later assembly can never mix stale and fresh artifacts.
type Resolver struct {
	// Invoker runs the external toolchain. Required.
	Invoker Invoker
	// LibraryName names the expected output file ("lib<LibraryName>.a").
	// Required.
	LibraryName string
	// Concurrency bounds parallel toolchain invocations. Defaults to the
	// number of CPUs.
	Concurrency int
	// Timeout bounds each individual invocation. Zero means no timeout.
	Timeout time.Duration
	// Logger receives per-target progress. Optional.
	Logger *log.Logger
}

// Resolution holds the artifacts of one successful resolution attempt.
// The artifact files live in a scratch directory owned by the Resolution;
// call Discard once the artifacts have been consumed.
type Resolution struct {
	// Artifacts are ordered by the input target positions.
	Artifacts []bundle.Artifact

	root string
}

// Discard removes the scratch directory holding the artifact files. Safe
// to call multiple times.
func (r *Resolution) Discard() error {
	if r == nil || r.root == "" {
		return nil
	}
	err := os.RemoveAll(r.root)
	r.root = ""
	return err
}

// Resolve builds every target and returns one artifact per target, in
// input order. Duplicate triples are rejected before any build starts.
func (r *Resolver) Resolve(ctx context.Context, targets []bundle.BuildTarget) (*Resolution, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no build targets given")
	}
	seen := make(map[bundle.Triple]bool, len(targets))
	for _, t := range targets {
		if ok, errs := t.Triple.IsValid(); !ok {
			return nil, fmt.Errorf("target %s: %v", t.Identifier(), errs[0])
		}
		if seen[t.Triple] {
			return nil, &bundle.DuplicateSliceError{Triple: t.Triple}
		}
		seen[t.Triple] = true
	}

	root, err := os.MkdirTemp("", "archbundle-build-")
	if err != nil {
		return nil, fmt.Errorf("create build scratch directory: %w", err)
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	artifacts := make([]bundle.Artifact, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for idx, target := range targets {
		g.Go(func() error {
			art, err := r.buildOne(gctx, target, root)
			if err != nil {
				return &BuildError{Target: target, Err: err}
			}
			artifacts[idx] = art
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Discard partial outputs: a failed attempt contributes nothing.
		os.RemoveAll(root)
		return nil, err
	}

	return &Resolution{Artifacts: artifacts, root: root}, nil
}

// buildOne runs the toolchain for a single target and fingerprints its
// output.
func (r *Resolver) buildOne(ctx context.Context, target bundle.BuildTarget, root string) (bundle.Artifact, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	outDir := filepath.Join(root, target.Identifier())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return bundle.Artifact{}, fmt.Errorf("create output directory: %w", err)
	}
	out := filepath.Join(outDir, bundle.LibraryFileName(r.LibraryName))

	if r.Logger != nil {
		r.Logger.Info("building", "target", target.Identifier())
	}

	if err := r.Invoker.Build(ctx, target, out); err != nil {
		return bundle.Artifact{}, err
	}

	info, err := os.Stat(out)
	if err != nil {
		if os.IsNotExist(err) {
			return bundle.Artifact{}, fmt.Errorf("toolchain reported success but produced no file at %s", out)
		}
		return bundle.Artifact{}, fmt.Errorf("stat toolchain output: %w", err)
	}
	if info.IsDir() {
		return bundle.Artifact{}, fmt.Errorf("toolchain output %s is a directory", out)
	}

	fp, err := bundle.FingerprintFile(out)
	if err != nil {
		return bundle.Artifact{}, err
	}

	if r.Logger != nil {
		r.Logger.Info("built", "target", target.Identifier(), "size", info.Size(), "fingerprint", fp.Short())
	}

	return bundle.Artifact{Target: target, Path: out, Fingerprint: fp}, nil
}
