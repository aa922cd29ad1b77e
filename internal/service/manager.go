package service

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"rates-service/internal/domain/model"
	"rates-service/internal/domain/ports"
	"rates-service/internal/metrics"
	"rates-service/pkg/logger"
)

// SnapshotStore is the persistence the manager writes through.
type SnapshotStore[T model.Entry] interface {
	Read(ctx context.Context) (*model.Snapshot[T], bool)
	Write(ctx context.Context, snapshot model.Snapshot[T]) error
}

type ManagerOption func(*managerOptions)

type managerOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for staleness decisions.
func WithClock(now func() time.Time) ManagerOption {
	return func(o *managerOptions) {
		o.now = now
	}
}

// CacheManager decides per request whether a feed is served from its
// snapshot or from the network. Exactly one instance exists per feed and it
// is the only writer of that feed's snapshot.
//
// Writes are ordered by fetch completion: a slow read-path fetch finishing
// after a forced refresh replaces the newer snapshot. Last fetch to complete wins.
type CacheManager[T model.Entry] struct {
	feed          model.Feed
	provider      ports.RateProvider[T]
	store         SnapshotStore[T]
	cacheDuration time.Duration
	now           func() time.Time
	log           *logger.Logger
	metrics       *metrics.Metrics

	mu       sync.Mutex
	current  *model.Snapshot[T]
	advisory string

	fetches singleflight.Group
}

// NewCacheManager loads the persisted snapshot, if any, to pick the initial state.
func NewCacheManager[T model.Entry](
	ctx context.Context,
	feed model.Feed,
	provider ports.RateProvider[T],
	store SnapshotStore[T],
	cacheDuration time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
	opts ...ManagerOption,
) *CacheManager[T] {
	o := managerOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	mgr := &CacheManager[T]{
		feed:          feed,
		provider:      provider,
		store:         store,
		cacheDuration: cacheDuration,
		now:           o.now,
		log:           log.With("feed", feed.String()),
		metrics:       m,
	}

	if snapshot, found := store.Read(ctx); found {
		mgr.current = snapshot
		mgr.metrics.SnapshotLastUpdated.WithLabelValues(feed.String()).Set(float64(snapshot.LastUpdatedAt.Unix()))
	}
	mgr.log.Info("Rate cache manager ready", "state", mgr.State().String())

	return mgr
}

// GetRates serves the snapshot while it is fresh. Otherwise it fetches; if
// that fails and any snapshot exists, the old entries are returned with an
// advisory and no error. Only an empty cache surfaces the ProviderError.
func (m *CacheManager[T]) GetRates(ctx context.Context) ([]T, error) {
	snapshot := m.snapshot()
	if snapshot != nil && !snapshot.IsExpired(m.now()) {
		m.metrics.CacheHitsTotal.WithLabelValues(m.feed.String()).Inc()
		return slices.Clone(snapshot.Entries), nil
	}
	m.metrics.CacheMissesTotal.WithLabelValues(m.feed.String()).Inc()

	// The fetch is shared by every waiting caller, so it must not die with
	// the first caller's context. The provider's client timeout bounds it.
	result, err, shared := m.fetches.Do(m.feed.String(), func() (any, error) {
		return m.fetchAndStore(context.WithoutCancel(ctx))
	})
	if err == nil {
		if shared {
			m.log.Debug("Joined in-flight fetch")
		}
		return slices.Clone(result.([]T)), nil
	}

	// Re-read: a concurrent refresh may have landed while this fetch failed.
	if latest := m.snapshot(); latest != nil {
		m.setAdvisory(fmt.Sprintf("showing rates from %s: %v", latest.LastUpdatedAt.Format(time.RFC3339), err))
		m.metrics.StaleServedTotal.WithLabelValues(m.feed.String()).Inc()
		m.log.Warn("Fetch failed, serving cached rates", "error", err, "last_updated", latest.LastUpdatedAt)
		return slices.Clone(latest.Entries), nil
	}

	m.setAdvisory(err.Error())
	m.log.Error("Fetch failed with no cached rates", "error", err)
	return nil, err
}

// RefreshRates always goes to the network. On failure the current snapshot
// stays authoritative and the error is returned to the caller.
func (m *CacheManager[T]) RefreshRates(ctx context.Context) ([]T, error) {
	entries, err := m.fetchAndStore(ctx)
	if err != nil {
		m.setAdvisory(err.Error())
		m.log.Warn("Forced refresh failed", "error", err)
		return nil, err
	}
	return slices.Clone(entries), nil
}

// Cached returns the current snapshot's entries without touching the network.
func (m *CacheManager[T]) Cached() ([]T, bool) {
	snapshot := m.snapshot()
	if snapshot == nil {
		return nil, false
	}
	return slices.Clone(snapshot.Entries), true
}

func (m *CacheManager[T]) LastUpdateTime() (time.Time, bool) {
	snapshot := m.snapshot()
	if snapshot == nil {
		return time.Time{}, false
	}
	return snapshot.LastUpdatedAt, true
}

// IsStale reports whether a background refresh is due. An empty cache is stale.
func (m *CacheManager[T]) IsStale() bool {
	return m.State() != model.StateFresh
}

func (m *CacheManager[T]) State() model.State {
	snapshot := m.snapshot()
	switch {
	case snapshot == nil:
		return model.StateEmpty
	case snapshot.IsExpired(m.now()):
		return model.StateStale
	default:
		return model.StateFresh
	}
}

// Advisory is the message from the most recent failed fetch, cleared by the
// next successful one.
func (m *CacheManager[T]) Advisory() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advisory
}

func (m *CacheManager[T]) Feed() model.Feed {
	return m.feed
}

func (m *CacheManager[T]) fetchAndStore(ctx context.Context) ([]T, error) {
	start := time.Now()
	entries, err := m.provider.FetchLive(ctx)
	m.metrics.UpstreamFetchTime.WithLabelValues(m.feed.String()).Observe(time.Since(start).Seconds())

	if err == nil && len(entries) == 0 {
		err = model.NewProviderError(m.feed, 0, fmt.Errorf("empty rate set"))
	}
	if err != nil {
		m.metrics.UpstreamFetchTotal.WithLabelValues(m.feed.String(), "error").Inc()
		return nil, err
	}
	m.metrics.UpstreamFetchTotal.WithLabelValues(m.feed.String(), "success").Inc()

	snapshot := model.NewSnapshot(entries, m.now(), m.cacheDuration)
	if err := m.store.Write(ctx, snapshot); err != nil {
		m.log.Error("Failed to persist snapshot", "error", err)
	}

	m.mu.Lock()
	m.current = &snapshot
	m.advisory = ""
	m.mu.Unlock()

	m.metrics.SnapshotLastUpdated.WithLabelValues(m.feed.String()).Set(float64(snapshot.LastUpdatedAt.Unix()))
	m.log.Info("Rates updated", "entries", len(snapshot.Entries), "expires_at", snapshot.ExpiresAt)

	return snapshot.Entries, nil
}

func (m *CacheManager[T]) snapshot() *model.Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *CacheManager[T]) setAdvisory(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advisory = msg
}
