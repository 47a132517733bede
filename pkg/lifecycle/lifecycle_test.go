// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// countingService records lifecycle transitions and can be told to fail.
type countingService struct {
	mu       sync.Mutex
	starts   int
	stops    int
	startErr error
	stopErr  error
}

func (s *countingService) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.starts++
	return nil
}

func (s *countingService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return s.stopErr
}

func TestGuardStartStop(t *testing.T) {
	svc := &countingService{}
	g := NewGuard(svc)
	ctx := context.Background()

	if g.Running() {
		t.Fatal("new guard reports running")
	}
	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !g.Running() {
		t.Fatal("guard not running after Start")
	}
	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if g.Running() {
		t.Fatal("guard still running after Stop")
	}
	if svc.starts != 1 || svc.stops != 1 {
		t.Errorf("starts = %d, stops = %d, want 1 and 1", svc.starts, svc.stops)
	}
}

func TestGuardDoubleStart(t *testing.T) {
	g := NewGuard(&countingService{})
	ctx := context.Background()

	if err := g.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := g.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestGuardStopWhenStoppedIsNoOp(t *testing.T) {
	svc := &countingService{}
	g := NewGuard(svc)
	ctx := context.Background()

	if err := g.Stop(ctx); err != nil {
		t.Fatalf("Stop() on stopped guard: %v", err)
	}
	if svc.stops != 0 {
		t.Errorf("Stop() reached the service %d times, want 0", svc.stops)
	}
}

func TestGuardFailedStartAllowsRetry(t *testing.T) {
	svc := &countingService{startErr: errors.New("bind: address in use")}
	g := NewGuard(svc)
	ctx := context.Background()

	if err := g.Start(ctx); err == nil {
		t.Fatal("Start() succeeded, want failure")
	}
	if g.Running() {
		t.Fatal("guard reports running after failed Start")
	}

	svc.mu.Lock()
	svc.startErr = nil
	svc.mu.Unlock()
	if err := g.Start(ctx); err != nil {
		t.Fatalf("retried Start() error = %v", err)
	}
	if !g.Running() {
		t.Fatal("guard not running after retried Start")
	}
}

func TestGuardRestartCycle(t *testing.T) {
	svc := &countingService{}
	g := NewGuard(svc)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := g.Start(ctx); err != nil {
			t.Fatalf("cycle %d: Start() error = %v", i, err)
		}
		if err := g.Stop(ctx); err != nil {
			t.Fatalf("cycle %d: Stop() error = %v", i, err)
		}
	}
	if svc.starts != 3 || svc.stops != 3 {
		t.Errorf("starts = %d, stops = %d, want 3 and 3", svc.starts, svc.stops)
	}
}

func TestGuardConcurrentStarts(t *testing.T) {
	svc := &countingService{}
	g := NewGuard(svc)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Start(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyRunning) {
			t.Errorf("unexpected Start() error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d concurrent Starts succeeded, want exactly 1", succeeded)
	}
	if svc.starts != 1 {
		t.Errorf("service started %d times, want 1", svc.starts)
	}
}
