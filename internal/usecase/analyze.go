package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EquityLens/internal/analytics"
	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
	"EquityLens/internal/service/cache"
	svcmetrics "EquityLens/internal/service/metrics"
)

// AnalyzeUseCase runs the metric pipeline over stored bars for one symbol.
// Computed summaries are cached with a short TTL since the underlying daily
// data changes at most once per trading day.
type AnalyzeUseCase struct {
	store    domrepo.BarStore
	windows  analytics.Windows
	cache    cache.BytesCache
	cacheTTL time.Duration
}

func NewAnalyzeUseCase(store domrepo.BarStore, windows analytics.Windows, c cache.BytesCache, ttl time.Duration) *AnalyzeUseCase {
	return &AnalyzeUseCase{store: store, windows: windows, cache: c, cacheTTL: ttl}
}

type AnalyzeParams struct {
	Symbol string
	From   time.Time
	To     time.Time
}

// Summary computes the flat per-symbol report, consulting the cache first.
func (uc *AnalyzeUseCase) Summary(ctx context.Context, p AnalyzeParams) (*models.SymbolSummary, error) {
	key := fmt.Sprintf("summary:%s:%d:%d", p.Symbol, p.From.Unix(), p.To.Unix())

	if uc.cache != nil {
		if b, ok, err := uc.cache.GetBytes(key); err == nil && ok {
			svcmetrics.CacheHits.WithLabelValues("hit").Inc()
			var sum models.SymbolSummary
			if err := json.Unmarshal(b, &sum); err == nil {
				return &sum, nil
			}
		} else {
			svcmetrics.CacheHits.WithLabelValues("miss").Inc()
		}
	}

	ms, err := uc.Metrics(ctx, p)
	if err != nil {
		return nil, err
	}
	sum := analytics.Summarize(ms)

	if uc.cache != nil {
		if b, err := json.Marshal(sum); err == nil {
			_ = uc.cache.SetBytes(key, b, uc.cacheTTL)
		}
	}
	return &sum, nil
}

// Metrics computes the full metric set, bypassing the summary cache.
func (uc *AnalyzeUseCase) Metrics(ctx context.Context, p AnalyzeParams) (*models.MetricSet, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	bars, err := uc.store.GetDailyBars(ctx, p.Symbol, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Symbol, analytics.ErrNoData)
	}

	series, err := models.NewSymbolSeries(p.Symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	return analytics.Compute(series, uc.windows)
}

// MetricsLatestN computes the metric set over the most recent n bars.
func (uc *AnalyzeUseCase) MetricsLatestN(ctx context.Context, symbol string, n int) (*models.MetricSet, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = 365
	}

	bars, err := uc.store.GetLatestNBars(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, analytics.ErrNoData)
	}

	series, err := models.NewSymbolSeries(symbol, bars)
	if err != nil {
		return nil, fmt.Errorf("build series: %w", err)
	}
	return analytics.Compute(series, uc.windows)
}
