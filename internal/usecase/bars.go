package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
)

// BarsUseCase provides business logic for retrieving stored daily bars.
type BarsUseCase struct {
	store domrepo.BarStore
}

func NewBarsUseCase(store domrepo.BarStore) *BarsUseCase {
	return &BarsUseCase{store: store}
}

type GetBarsParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetBarsResult struct {
	Symbol string
	From   time.Time
	To     time.Time
	Count  int
	Bars   []models.DailyBar
}

func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (*GetBarsResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	if p.Limit > 10000 {
		p.Limit = 10000
	}

	bars, err := uc.store.GetDailyBars(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[:p.Limit]
	}

	return &GetBarsResult{
		Symbol: p.Symbol,
		From:   p.From,
		To:     p.To,
		Count:  len(bars),
		Bars:   bars,
	}, nil
}

// ListSymbols returns every symbol present in storage.
func (uc *BarsUseCase) ListSymbols(ctx context.Context) ([]string, error) {
	syms, err := uc.store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return syms, nil
}
