package ports

import (
	"context"

	"rates-service/internal/domain/model"
)

// RateProvider fetches one feed from its upstream. One call is one request.
type RateProvider[T model.Entry] interface {
	FetchLive(ctx context.Context) ([]T, error)
}
