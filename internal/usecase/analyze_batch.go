package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"EquityLens/internal/analytics"
	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
)

// BatchAnalyzeUseCase fans out the metric pipeline across every stored
// symbol. A failed symbol lands in the Errors map and never aborts the rest
// of the batch.
type BatchAnalyzeUseCase struct {
	store   domrepo.BarStore
	windows analytics.Windows
	timeout time.Duration
	workers int
}

func NewBatchAnalyzeUseCase(store domrepo.BarStore, windows analytics.Windows) *BatchAnalyzeUseCase {
	return &BatchAnalyzeUseCase{
		store:   store,
		windows: windows,
		timeout: 30 * time.Second,
		workers: 8,
	}
}

func (uc *BatchAnalyzeUseCase) AnalyzeAll(ctx context.Context) (*models.BatchSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	symbols, err := uc.store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	res := &models.BatchSummary{
		GeneratedAt: time.Now(),
		Errors:      map[string]string{},
	}

	type item struct {
		symbol string
		sum    models.SymbolSummary
		rows   int
		err    error
	}
	ch := make(chan item, len(symbols))
	sem := make(chan struct{}, uc.workers)
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			sum, rows, err := uc.analyzeOne(ctx, sym)
			ch <- item{symbol: sym, sum: sum, rows: rows, err: err}
		}(sym)
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			continue
		}
		res.Symbols = append(res.Symbols, it.sum)
		res.Rows += it.rows
	}

	sort.Slice(res.Symbols, func(i, j int) bool {
		return res.Symbols[i].Symbol < res.Symbols[j].Symbol
	})
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func (uc *BatchAnalyzeUseCase) analyzeOne(ctx context.Context, symbol string) (models.SymbolSummary, int, error) {
	var zero models.SymbolSummary

	bars, err := uc.store.GetDailyBars(ctx, symbol, time.Time{}, time.Time{})
	if err != nil {
		return zero, 0, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return zero, 0, analytics.ErrNoData
	}

	series, err := models.NewSymbolSeries(symbol, bars)
	if err != nil {
		return zero, 0, err
	}
	ms, err := analytics.Compute(series, uc.windows)
	if err != nil {
		return zero, 0, err
	}
	return analytics.Summarize(ms), len(bars), nil
}
