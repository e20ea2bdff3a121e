package analytics

import (
	"errors"
	"testing"

	"EquityLens/internal/domain/models"
)

func seriesFromCloses(closes ...float64) *models.SymbolSeries {
	s, err := models.NewSymbolSeries("TEST", barsFromCloses(closes...))
	if err != nil {
		panic(err)
	}
	return s
}

func TestComputeSteadyClimb(t *testing.T) {
	ms, err := Compute(seriesFromCloses(100, 110, 121, 133.1), DefaultWindows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.TradingDays != 4 {
		t.Fatalf("want 4 trading days, got %d", ms.TradingDays)
	}
	if !almostEqual(ms.PriceChangePct, 33.1) {
		t.Fatalf("want change 33.1 got %v", ms.PriceChangePct)
	}
	if ms.Trend != models.TrendUpward {
		t.Fatalf("want UPWARD got %s", ms.Trend)
	}
	if ms.VolatilityPct == nil || !almostEqual(*ms.VolatilityPct, 0) {
		t.Fatalf("want zero volatility got %v", ms.VolatilityPct)
	}
	if ms.Signal != models.SignalBuy {
		t.Fatalf("want BUY got %s", ms.Signal)
	}
	for _, p := range ms.MA7 {
		if p.Valid {
			t.Fatalf("ma7 must stay undefined on a 4-day series")
		}
	}
}

func TestComputeDecline(t *testing.T) {
	ms, err := Compute(seriesFromCloses(100, 90, 80), DefaultWindows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ms.PriceChangePct, -20) {
		t.Fatalf("want change -20 got %v", ms.PriceChangePct)
	}
	if ms.Trend != models.TrendDownward {
		t.Fatalf("want DOWNWARD got %s", ms.Trend)
	}
	if ms.Signal != models.SignalSell {
		t.Fatalf("want SELL got %s", ms.Signal)
	}
}

func TestComputeEmptySeries(t *testing.T) {
	s := &models.SymbolSeries{Symbol: "EMPTY"}
	if _, err := Compute(s, DefaultWindows()); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestComputeZeroBaseline(t *testing.T) {
	if _, err := Compute(seriesFromCloses(0, 10, 20), DefaultWindows()); !errors.Is(err, ErrZeroBaseline) {
		t.Fatalf("expected ErrZeroBaseline, got %v", err)
	}
}

func TestComputeWindowAlignment(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	ms, err := Compute(seriesFromCloses(closes...), DefaultWindows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	countValid := func(pts []models.Point) int {
		n := 0
		for _, p := range pts {
			if p.Valid {
				n++
			}
		}
		return n
	}
	if got := countValid(ms.MA7); got != 40-7+1 {
		t.Fatalf("ma7 valid points: want %d got %d", 40-7+1, got)
	}
	if got := countValid(ms.MA30); got != 40-30+1 {
		t.Fatalf("ma30 valid points: want %d got %d", 40-30+1, got)
	}
}

func TestSummarizeLatestWindowValues(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	ms, err := Compute(seriesFromCloses(closes...), DefaultWindows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := Summarize(ms)
	if sum.MA7 == nil {
		t.Fatalf("ma7 should be defined on a 10-day series")
	}
	// latest 7 closes are 4..10, mean 7
	if !almostEqual(*sum.MA7, 7) {
		t.Fatalf("want ma7 7 got %v", *sum.MA7)
	}
	if sum.MA30 != nil {
		t.Fatalf("ma30 must be nil on a 10-day series")
	}
	if sum.TradingDays != 10 {
		t.Fatalf("want 10 trading days got %d", sum.TradingDays)
	}
}

func TestSeriesOrderingRejected(t *testing.T) {
	bars := barsFromCloses(1, 2, 3)
	bars[2].Date = bars[0].Date
	if _, err := models.NewSymbolSeries("TEST", bars); !errors.Is(err, models.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	bars = barsFromCloses(1, 2)
	bars[1].Date = bars[0].Date
	if _, err := models.NewSymbolSeries("TEST", bars); !errors.Is(err, models.ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
}
