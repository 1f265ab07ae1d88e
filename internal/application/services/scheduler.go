package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RecalculationScheduler runs periodic full recalculations
type RecalculationScheduler struct {
	recalculator Recalculator
	interval     time.Duration
	runOnStart   bool
	logger       *zap.Logger
	status       *SchedulerStatus
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// SchedulerStatus tracks the outcome of the most recent runs
type SchedulerStatus struct {
	mu             sync.RWMutex
	Runs           int64
	Failures       int64
	LastRunID      string
	LastRunAt      time.Time
	LastDuration   time.Duration
	WalletsUpdated int
	WalletsFailed  int
}

// NewRecalculationScheduler creates a new scheduler
func NewRecalculationScheduler(
	recalculator Recalculator,
	interval time.Duration,
	runOnStart bool,
	logger *zap.Logger,
) *RecalculationScheduler {
	return &RecalculationScheduler{
		recalculator: recalculator,
		interval:     interval,
		runOnStart:   runOnStart,
		logger:       logger,
		status:       &SchedulerStatus{},
		stopCh:       make(chan struct{}),
	}
}

// Start launches the scheduling loop
func (s *RecalculationScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting recalculation scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_start", s.runOnStart),
	)

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop waits for the in-flight run to finish and stops the loop
func (s *RecalculationScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping recalculation scheduler")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// Status returns a snapshot of the scheduler status
func (s *RecalculationScheduler) Status() SchedulerStatus {
	s.status.mu.RLock()
	defer s.status.mu.RUnlock()
	return SchedulerStatus{
		Runs:           s.status.Runs,
		Failures:       s.status.Failures,
		LastRunID:      s.status.LastRunID,
		LastRunAt:      s.status.LastRunAt,
		LastDuration:   s.status.LastDuration,
		WalletsUpdated: s.status.WalletsUpdated,
		WalletsFailed:  s.status.WalletsFailed,
	}
}

func (s *RecalculationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *RecalculationScheduler) run(ctx context.Context) {
	start := time.Now()
	result, err := s.recalculator.RecalculateAll(ctx)

	s.status.mu.Lock()
	defer s.status.mu.Unlock()

	s.status.Runs++
	s.status.LastRunAt = start
	s.status.LastDuration = time.Since(start)

	if err != nil {
		s.status.Failures++
		s.logger.Error("Scheduled recalculation failed", zap.Error(err))
		return
	}

	s.status.LastRunID = result.RunID
	s.status.WalletsUpdated = result.WalletsUpdated
	s.status.WalletsFailed = result.WalletsFailed
}
