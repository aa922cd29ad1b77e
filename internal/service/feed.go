package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"rates-service/internal/domain/model"
	"rates-service/internal/scheduler"
	"rates-service/pkg/logger"
)

// Feed is the consumer boundary of one feed: cache manager, its scheduler,
// and the built-in entries shown when nothing was ever fetched.
type Feed[T model.Entry] struct {
	manager   *CacheManager[T]
	scheduler *scheduler.Scheduler[T]
	defaults  []T
	log       *logger.Logger
}

func NewFeed[T model.Entry](manager *CacheManager[T], sched *scheduler.Scheduler[T], defaults []T, log *logger.Logger) *Feed[T] {
	return &Feed[T]{
		manager:   manager,
		scheduler: sched,
		defaults:  slices.Clone(defaults),
		log:       log.With("feed", manager.Feed().String()),
	}
}

// Entries returns typed entries and where they came from. Built-in defaults
// are the caller's fallback for a cold start; the manager never serves them.
func (f *Feed[T]) Entries(ctx context.Context) ([]T, model.Source, error) {
	wasFresh := f.manager.State() == model.StateFresh

	entries, err := f.manager.GetRates(ctx)
	if err != nil {
		if len(f.defaults) == 0 {
			return nil, "", fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
		}
		f.log.Warn("Serving built-in rates", "error", err)
		return slices.Clone(f.defaults), model.SourceDefaults, nil
	}

	switch {
	case wasFresh:
		return entries, model.SourceCache, nil
	case f.manager.Advisory() != "":
		return entries, model.SourceStale, nil
	default:
		return entries, model.SourceLive, nil
	}
}

func (f *Feed[T]) GetRates(ctx context.Context) (*model.RatesView, error) {
	entries, source, err := f.Entries(ctx)
	if err != nil {
		return nil, err
	}

	view := f.view(entries, source)
	if source == model.SourceDefaults {
		view.Advisory = "live rates unavailable, showing built-in rates: " + f.manager.Advisory()
	}
	return view, nil
}

// RefreshRates forces a fetch. On failure it still returns a view of the best
// known data, alongside the error, so the caller can keep displaying it.
func (f *Feed[T]) RefreshRates(ctx context.Context) (*model.RatesView, error) {
	entries, err := f.scheduler.ManualRefresh(ctx)
	if err == nil {
		return f.view(entries, model.SourceLive), nil
	}

	var view *model.RatesView
	if cached, ok := f.manager.Cached(); ok {
		view = f.view(cached, model.SourceStale)
	} else {
		view = f.view(slices.Clone(f.defaults), model.SourceDefaults)
	}
	return view, fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
}

func (f *Feed[T]) LastUpdateTime() (time.Time, bool) {
	return f.manager.LastUpdateTime()
}

func (f *Feed[T]) IsStale() bool {
	return f.manager.IsStale()
}

func (f *Feed[T]) ToggleAutoRefresh(enabled bool) {
	f.scheduler.ToggleAutoRefresh(enabled)
}

func (f *Feed[T]) Status() model.FeedStatus {
	return model.FeedStatus{
		Feed:        f.manager.Feed(),
		State:       f.manager.State().String(),
		LastUpdated: f.lastUpdated(),
		Stale:       f.manager.IsStale(),
		AutoRefresh: f.scheduler.AutoRefresh(),
		Advisory:    f.manager.Advisory(),
	}
}

func (f *Feed[T]) view(entries []T, source model.Source) *model.RatesView {
	return &model.RatesView{
		Feed:        f.manager.Feed(),
		Entries:     entries,
		Count:       len(entries),
		LastUpdated: f.lastUpdated(),
		Stale:       f.manager.IsStale(),
		AutoRefresh: f.scheduler.AutoRefresh(),
		Source:      source,
		Advisory:    f.manager.Advisory(),
	}
}

func (f *Feed[T]) lastUpdated() *time.Time {
	if t, ok := f.manager.LastUpdateTime(); ok {
		return &t
	}
	return nil
}
