package ports

import (
	"context"
	"time"

	"rates-service/internal/domain/model"
)

// FeedService is the full boundary the presentation layer may call for one feed.
type FeedService interface {
	GetRates(ctx context.Context) (*model.RatesView, error)
	RefreshRates(ctx context.Context) (*model.RatesView, error)
	LastUpdateTime() (time.Time, bool)
	IsStale() bool
	ToggleAutoRefresh(enabled bool)
	Status() model.FeedStatus
}

type ConversionService interface {
	Convert(ctx context.Context, request model.ConversionRequest) (*model.ConversionResult, error)
}
