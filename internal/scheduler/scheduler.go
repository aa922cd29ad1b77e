package scheduler

import (
	"context"
	"sync"
	"time"

	"rates-service/internal/domain/model"
	"rates-service/internal/metrics"
	"rates-service/pkg/logger"
)

// Refresher is the part of a cache manager the scheduler drives.
type Refresher[T model.Entry] interface {
	IsStale() bool
	RefreshRates(ctx context.Context) ([]T, error)
}

// Scheduler polls a feed's staleness on a fixed cadence and refreshes it in
// the background when due and auto refresh is on.
type Scheduler[T model.Entry] struct {
	feed    model.Feed
	target  Refresher[T]
	log     *logger.Logger
	metrics *metrics.Metrics

	mu          sync.Mutex
	autoRefresh bool
	cancel      context.CancelFunc
	done        chan struct{}
	kick        chan struct{}
}

func New[T model.Entry](feed model.Feed, target Refresher[T], log *logger.Logger, m *metrics.Metrics) *Scheduler[T] {
	return &Scheduler[T]{
		feed:        feed,
		target:      target,
		log:         log.With("feed", feed.String(), "component", "scheduler"),
		metrics:     m,
		autoRefresh: true,
	}
}

// Start begins periodic checks. Calling Start while running, or with a
// non-positive interval, is a no-op.
func (s *Scheduler[T]) Start(ctx context.Context, pollInterval time.Duration) {
	if pollInterval <= 0 {
		s.log.Error("Refresh scheduler not started", "poll_interval", pollInterval)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.kick = make(chan struct{}, 1)

	go s.run(ctx, pollInterval, s.done, s.kick)
	s.log.Info("Refresh scheduler started", "poll_interval", pollInterval)
}

// Stop cancels the periodic check and waits for it to exit. Safe to call
// repeatedly or before Start.
func (s *Scheduler[T]) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done, s.kick = nil, nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Refresh scheduler stopped")
}

// ToggleAutoRefresh suspends or resumes background checks. Resuming runs a
// check right away instead of waiting for the next tick.
func (s *Scheduler[T]) ToggleAutoRefresh(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoRefresh == enabled {
		return
	}
	s.autoRefresh = enabled
	s.log.Info("Auto refresh toggled", "enabled", enabled)

	if enabled && s.kick != nil {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

func (s *Scheduler[T]) AutoRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autoRefresh
}

func (s *Scheduler[T]) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// ManualRefresh forces a refresh regardless of the auto refresh flag and
// returns its error to the caller.
func (s *Scheduler[T]) ManualRefresh(ctx context.Context) ([]T, error) {
	return s.target.RefreshRates(ctx)
}

func (s *Scheduler[T]) run(ctx context.Context, pollInterval time.Duration, done chan struct{}, kick <-chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		case <-kick:
			s.check(ctx)
		}
	}
}

// check refreshes when due. Failures are logged and counted, never returned.
func (s *Scheduler[T]) check(ctx context.Context) {
	if ctx.Err() != nil || !s.AutoRefresh() || !s.target.IsStale() {
		return
	}

	if _, err := s.target.RefreshRates(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.metrics.SchedulerRefreshes.WithLabelValues(s.feed.String(), "error").Inc()
		s.log.Warn("Background refresh failed", "error", err)
		return
	}

	s.metrics.SchedulerRefreshes.WithLabelValues(s.feed.String(), "success").Inc()
	s.log.Debug("Background refresh completed")
}
