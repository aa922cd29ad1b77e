package storage

import (
	"context"
	"sync"
)

type Memory struct {
	values map[string]string
	mutex  sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		values: make(map[string]string),
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, found := m.values[key]
	return value, found, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.values[key] = value
	return nil
}

// Disabled stands in when persistence is unavailable: nothing is ever found
// and writes are dropped.
type Disabled struct{}

func (Disabled) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (Disabled) Set(ctx context.Context, key, value string) error {
	return nil
}
