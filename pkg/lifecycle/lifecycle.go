// SPDX-License-Identifier: MPL-2.0

// Package lifecycle provides a minimal start/stop capability surface for
// long-lived services plus a Guard that makes the transitions safe to drive
// from concurrent callers. Unlike a package-level singleton, every Guard
// owns exactly one Service instance, so independent services can coexist in
// one process.
package lifecycle

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyRunning is returned by Guard.Start when the service is
	// already running.
	ErrAlreadyRunning = errors.New("service is already running")
)

// Service is anything with a bounded running lifetime. Start must not block
// for the lifetime of the service; it launches the service and returns.
// Stop blocks until the service has shut down or ctx is done.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Guard serializes lifecycle transitions for one Service. The zero value is
// not usable; construct with NewGuard.
type Guard struct {
	svc Service

	mu      sync.Mutex
	running bool
}

// NewGuard wraps svc in a Guard.
func NewGuard(svc Service) *Guard {
	return &Guard{svc: svc}
}

// Start launches the service. A second Start while the service is running
// returns ErrAlreadyRunning; a failed Start leaves the guard stopped so the
// caller can retry.
func (g *Guard) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return ErrAlreadyRunning
	}
	if err := g.svc.Start(ctx); err != nil {
		return err
	}
	g.running = true
	return nil
}

// Stop shuts the service down. Stopping a service that is not running is a
// no-op, so Stop can be deferred unconditionally.
func (g *Guard) Stop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return nil
	}
	err := g.svc.Stop(ctx)
	g.running = false
	return err
}

// Running reports whether the service is currently running.
func (g *Guard) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}
