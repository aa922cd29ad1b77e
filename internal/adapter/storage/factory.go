package storage

import (
	"fmt"

	"rates-service/internal/config"
	"rates-service/internal/domain/ports"
)

// New opens the backend named in cfg. The returned close func is never nil.
func New(cfg config.StorageConfig) (ports.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return NewMemory(), noop, nil
	case "none":
		return Disabled{}, noop, nil
	case "file":
		s, err := NewFile(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case "redis":
		s, err := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case "badger":
		s, err := NewBadger(cfg.BadgerPath)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
