package repository

import (
	"context"
	"time"

	"EquityLens/internal/domain/models"
)

// BarStore reads stored daily bars for analysis.
type BarStore interface {
	GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.DailyBar, error)
	ListSymbols(ctx context.Context) ([]string, error)
}

type Publisher interface {
	Publish(ctx context.Context, b *models.DailyBar) error
	PublishBatch(ctx context.Context, bars []*models.DailyBar) error
	Close() error
}

type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.DailyBar) error
	StoreBatch(ctx context.Context, bars []*models.DailyBar) error
	Health(ctx context.Context) error // ping
	Close() error
}

type Metrics interface {
	RecordBarsStored(backend, symbol string)
	RecordError(kind string)
	RecordLastClose(symbol string, close float64)
	RecordLatency(op string, seconds float64)
}
