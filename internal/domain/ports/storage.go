package ports

import "context"

// Storage is the persisted key/value port the snapshot stores write through.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
