package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"EquityLens/internal/analytics"
	"EquityLens/internal/domain/models"
	"EquityLens/internal/service/cache"
)

type fakeBarStore struct {
	bars    map[string][]models.DailyBar
	failSym string
	calls   int
}

func (f *fakeBarStore) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.DailyBar, error) {
	f.calls++
	if symbol == f.failSym {
		return nil, errors.New("storage down")
	}
	return f.bars[symbol], nil
}

func (f *fakeBarStore) GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.DailyBar, error) {
	bars := f.bars[symbol]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (f *fakeBarStore) ListSymbols(ctx context.Context) ([]string, error) {
	var out []string
	for s := range f.bars {
		out = append(out, s)
	}
	if f.failSym != "" {
		out = append(out, f.failSym)
	}
	return out, nil
}

func testBars(symbol string, closes ...float64) []models.DailyBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.DailyBar, len(closes))
	for i, c := range closes {
		bars[i] = models.DailyBar{
			Symbol: symbol,
			Date:   base.AddDate(0, 0, i),
			Open:   c, High: c, Low: c, Close: c,
			Volume: 100,
		}
	}
	return bars
}

func TestAnalyzeSummary(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.DailyBar{
		"AAPL": testBars("AAPL", 100, 110, 121, 133.1),
	}}
	uc := NewAnalyzeUseCase(store, analytics.DefaultWindows(), nil, 0)

	sum, err := uc.Summary(context.Background(), AnalyzeParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Signal != models.SignalBuy {
		t.Fatalf("want BUY got %s", sum.Signal)
	}
	if sum.TradingDays != 4 {
		t.Fatalf("want 4 days got %d", sum.TradingDays)
	}
}

func TestAnalyzeSummaryUsesCache(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.DailyBar{
		"AAPL": testBars("AAPL", 100, 110),
	}}
	uc := NewAnalyzeUseCase(store, analytics.DefaultWindows(), cache.NewTTLCache(), time.Minute)

	p := AnalyzeParams{Symbol: "AAPL"}
	if _, err := uc.Summary(context.Background(), p); err != nil {
		t.Fatalf("first call: %v", err)
	}
	before := store.calls
	if _, err := uc.Summary(context.Background(), p); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if store.calls != before {
		t.Fatalf("second call should hit the cache, store calls went %d -> %d", before, store.calls)
	}
}

func TestAnalyzeNoData(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.DailyBar{}}
	uc := NewAnalyzeUseCase(store, analytics.DefaultWindows(), nil, 0)

	_, err := uc.Summary(context.Background(), AnalyzeParams{Symbol: "GHOST"})
	if !errors.Is(err, analytics.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestAnalyzeMissingSymbol(t *testing.T) {
	uc := NewAnalyzeUseCase(&fakeBarStore{}, analytics.DefaultWindows(), nil, 0)
	if _, err := uc.Metrics(context.Background(), AnalyzeParams{}); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestBatchAnalyzeIsolatesFailures(t *testing.T) {
	store := &fakeBarStore{
		bars: map[string][]models.DailyBar{
			"AAPL": testBars("AAPL", 100, 110, 121, 133.1),
			"MSFT": testBars("MSFT", 100, 90, 80),
		},
		failSym: "BROKEN",
	}
	uc := NewBatchAnalyzeUseCase(store, analytics.DefaultWindows())

	res, err := uc.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Symbols) != 2 {
		t.Fatalf("want 2 summaries, got %d", len(res.Symbols))
	}
	if res.Symbols[0].Symbol != "AAPL" || res.Symbols[1].Symbol != "MSFT" {
		t.Fatalf("summaries not sorted: %+v", res.Symbols)
	}
	if res.Symbols[0].Signal != models.SignalBuy {
		t.Fatalf("AAPL: want BUY got %s", res.Symbols[0].Signal)
	}
	if res.Symbols[1].Signal != models.SignalSell {
		t.Fatalf("MSFT: want SELL got %s", res.Symbols[1].Signal)
	}
	if res.Rows != 7 {
		t.Fatalf("want 7 rows got %d", res.Rows)
	}
	if msg, ok := res.Errors["BROKEN"]; !ok || !strings.Contains(msg, "storage down") {
		t.Fatalf("expected BROKEN in errors, got %v", res.Errors)
	}
}
