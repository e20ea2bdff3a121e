package analytics

import (
	"fmt"

	"EquityLens/internal/domain/models"
)

// Windows configures the moving-average lookbacks used by Compute.
type Windows struct {
	Short int
	Long  int
}

// DefaultWindows returns the standard 7 and 30 day lookbacks.
func DefaultWindows() Windows {
	return Windows{Short: 7, Long: 30}
}

// Compute derives the full metric set for one symbol series. The series must
// be non-empty; metrics that need more history than the series holds come
// back as invalid points or nil scalars rather than fabricated values.
func Compute(series *models.SymbolSeries, w Windows) (*models.MetricSet, error) {
	bars := series.Bars
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", series.Symbol, ErrNoData)
	}

	change, err := PriceChangePct(bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	short, err := MovingAverage(bars, w.Short)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}
	long, err := MovingAverage(bars, w.Long)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	returns := DailyReturns(bars)
	vol := VolatilityPct(returns)

	avgVol, err := AvgVolume(bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	low, high, err := PriceRange(bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Symbol, err)
	}

	return &models.MetricSet{
		Symbol:         series.Symbol,
		TradingDays:    len(bars),
		FirstDay:       bars[0].Date,
		LastDay:        bars[len(bars)-1].Date,
		MA7:            short,
		MA30:           long,
		DailyReturns:   returns,
		PriceChangePct: change,
		VolatilityPct:  vol,
		AvgVolume:      avgVol,
		LowestPrice:    low,
		HighestPrice:   high,
		Trend:          TrendOf(change),
		Signal:         Classify(change, vol),
	}, nil
}

// Summarize condenses a metric set into the flat per-symbol report. Moving
// averages surface as their latest defined value, nil when the series never
// filled the window.
func Summarize(ms *models.MetricSet) models.SymbolSummary {
	return models.SymbolSummary{
		Symbol:         ms.Symbol,
		TradingDays:    ms.TradingDays,
		LowestPrice:    ms.LowestPrice,
		HighestPrice:   ms.HighestPrice,
		MA7:            lastValid(ms.MA7),
		MA30:           lastValid(ms.MA30),
		PriceChangePct: ms.PriceChangePct,
		AvgVolume:      ms.AvgVolume,
		VolatilityPct:  ms.VolatilityPct,
		Trend:          ms.Trend,
		Signal:         ms.Signal,
	}
}

func lastValid(pts []models.Point) *float64 {
	for i := len(pts) - 1; i >= 0; i-- {
		if pts[i].Valid {
			v := pts[i].Value
			return &v
		}
	}
	return nil
}
