package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeRecalculator struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRecalculator) RecalculateAll(ctx context.Context) (*RecalculationResult, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &RecalculationResult{RunID: "run", WalletsUpdated: int(n)}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRecalculationScheduler_RunsOnStartAndTicks(t *testing.T) {
	rec := &fakeRecalculator{}
	s := NewRecalculationScheduler(rec, 20*time.Millisecond, true, zap.NewNop())

	s.Start(context.Background())
	waitFor(t, func() bool { return rec.calls.Load() >= 3 })
	s.Stop()

	status := s.Status()
	if status.Runs < 3 {
		t.Errorf("expected at least 3 runs, got %d", status.Runs)
	}
	if status.LastRunID != "run" {
		t.Errorf("expected last run ID, got %q", status.LastRunID)
	}

	// Stopping twice is safe
	s.Stop()
}

func TestRecalculationScheduler_SkipsStartupRun(t *testing.T) {
	rec := &fakeRecalculator{}
	s := NewRecalculationScheduler(rec, time.Hour, false, zap.NewNop())

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if rec.calls.Load() != 0 {
		t.Errorf("expected no runs, got %d", rec.calls.Load())
	}
}

func TestRecalculationScheduler_CountsFailures(t *testing.T) {
	rec := &fakeRecalculator{err: errors.New("database down")}
	s := NewRecalculationScheduler(rec, time.Hour, true, zap.NewNop())

	s.Start(context.Background())
	waitFor(t, func() bool { return s.Status().Runs == 1 })
	s.Stop()

	if s.Status().Failures != 1 {
		t.Errorf("expected 1 failure, got %d", s.Status().Failures)
	}
}

func TestRecalculationScheduler_StopsOnContextCancel(t *testing.T) {
	rec := &fakeRecalculator{}
	s := NewRecalculationScheduler(rec, time.Hour, false, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
