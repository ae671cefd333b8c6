package repository

import (
	"context"
	"time"

	"oddsengine/internal/models"
)

// Repository is the persistence boundary for generated signals and feed
// health. The odds history itself is held in memory by the buffer.
type Repository interface {
	InsertSignal(ctx context.Context, item *models.TradingSignal) error
	ListSignals(ctx context.Context, params ListSignalsParams) ([]models.TradingSignal, error)
	DeleteExpiredSignals(ctx context.Context, before time.Time) (int64, error)

	UpsertFeedSource(ctx context.Context, item *models.FeedSource) error
	ListFeedSources(ctx context.Context) ([]models.FeedSource, error)
}

type ListSignalsParams struct {
	Limit      int
	Offset     int
	Type       *string
	MarketID   *string
	Urgency    *string
	Since      *time.Time
	ActiveOnly bool
	OrderBy    string
	Asc        *bool
}
