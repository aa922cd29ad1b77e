package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rates-service/internal/domain/model"
	"rates-service/internal/domain/ports"
	"rates-service/pkg/logger"
	"rates-service/pkg/utils"
)

const (
	CurrencyKey = "convertly_currency_rates"
	CryptoKey   = "convertly_crypto_rates"
)

// KeyFor returns the storage key owned by feed.
func KeyFor(feed model.Feed) string {
	if feed == model.FeedCrypto {
		return CryptoKey
	}
	return CurrencyKey
}

var errCorruptSnapshot = errors.New("corrupt snapshot")

// persistedSnapshot is the stored document. Timestamps are Unix milliseconds.
type persistedSnapshot[T model.Entry] struct {
	Rates       []T   `json:"rates"`
	LastUpdated int64 `json:"lastUpdated"`
	NextUpdate  int64 `json:"nextUpdate"`
}

// SnapshotStore persists exactly one snapshot per feed under a fixed key.
type SnapshotStore[T model.Entry] struct {
	storage ports.Storage
	key     string
	log     *logger.Logger
}

func NewSnapshotStore[T model.Entry](storage ports.Storage, key string, log *logger.Logger) *SnapshotStore[T] {
	return &SnapshotStore[T]{
		storage: storage,
		key:     key,
		log:     log,
	}
}

// Read returns the persisted snapshot. Missing, unreadable and corrupt values
// all read as absent.
func (s *SnapshotStore[T]) Read(ctx context.Context) (*model.Snapshot[T], bool) {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("Failed to read snapshot", "key", s.key, "error", err)
		return nil, false
	}
	if !found {
		s.log.Debug("Snapshot miss", "key", s.key)
		return nil, false
	}

	snapshot, err := decodeSnapshot[T](raw)
	if err != nil {
		s.log.Warn("Ignoring stored snapshot", "key", s.key, "error", err)
		return nil, false
	}

	s.log.Debug("Snapshot hit", "key", s.key, "entries", len(snapshot.Entries))
	return snapshot, true
}

func (s *SnapshotStore[T]) Write(ctx context.Context, snapshot model.Snapshot[T]) error {
	data, err := json.Marshal(persistedSnapshot[T]{
		Rates:       snapshot.Entries,
		LastUpdated: utils.ToMillis(snapshot.LastUpdatedAt),
		NextUpdate:  utils.ToMillis(snapshot.ExpiresAt),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return err
	}

	s.log.Debug("Snapshot written", "key", s.key, "entries", len(snapshot.Entries))
	return nil
}

func decodeSnapshot[T model.Entry](raw string) (*model.Snapshot[T], error) {
	var p persistedSnapshot[T]
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorruptSnapshot, err)
	}
	if len(p.Rates) == 0 || p.LastUpdated <= 0 || p.NextUpdate < p.LastUpdated {
		return nil, fmt.Errorf("%w: missing rates or timestamps", errCorruptSnapshot)
	}

	return &model.Snapshot[T]{
		Entries:       p.Rates,
		LastUpdatedAt: utils.FromMillis(p.LastUpdated),
		ExpiresAt:     utils.FromMillis(p.NextUpdate),
	}, nil
}
