package analytics

import (
	"errors"
	"math"

	"EquityLens/internal/domain/models"
)

var (
	ErrNoData       = errors.New("no bars to analyze")
	ErrZeroBaseline = errors.New("first close is zero")
	ErrBadWindow    = errors.New("window must be positive")
)

// MovingAverage computes the trailing simple moving average of closes over
// the given window. The result has one point per bar; the first window-1
// points are marked invalid because the window is not yet full.
func MovingAverage(bars []models.DailyBar, window int) ([]models.Point, error) {
	if window <= 0 {
		return nil, ErrBadWindow
	}
	out := make([]models.Point, len(bars))
	var sum float64
	for i, b := range bars {
		sum += b.Close
		if i >= window {
			sum -= bars[i-window].Close
		}
		out[i].Date = b.Date
		if i >= window-1 {
			out[i].Value = sum / float64(window)
			out[i].Valid = true
		}
	}
	return out, nil
}

// DailyReturns computes day-over-day simple returns from closes. The first
// point has no prior day and is invalid; so is any point whose prior close
// is zero.
func DailyReturns(bars []models.DailyBar) []models.Point {
	out := make([]models.Point, len(bars))
	for i, b := range bars {
		out[i].Date = b.Date
		if i == 0 {
			continue
		}
		prev := bars[i-1].Close
		if prev == 0 {
			continue
		}
		out[i].Value = (b.Close - prev) / prev
		out[i].Valid = true
	}
	return out
}

// PriceChangePct computes the percent change from the first close to the
// last close over the series.
func PriceChangePct(bars []models.DailyBar) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	first := bars[0].Close
	if first == 0 {
		return 0, ErrZeroBaseline
	}
	last := bars[len(bars)-1].Close
	return (last - first) / first * 100, nil
}

// VolatilityPct computes the standard deviation of daily returns, as a
// percentage. Returns nil when the series has no defined returns.
func VolatilityPct(returns []models.Point) *float64 {
	var vals []float64
	for _, p := range returns {
		if p.Valid {
			vals = append(vals, p.Value)
		}
	}
	if len(vals) < 1 {
		return nil
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	vol := math.Sqrt(sq/float64(len(vals))) * 100
	return &vol
}

// AvgVolume computes the mean traded volume over the series.
func AvgVolume(bars []models.DailyBar) (float64, error) {
	if len(bars) == 0 {
		return 0, ErrNoData
	}
	var sum float64
	for _, b := range bars {
		sum += float64(b.Volume)
	}
	return sum / float64(len(bars)), nil
}

// PriceRange returns the lowest low and highest high across the series.
func PriceRange(bars []models.DailyBar) (low, high float64, err error) {
	if len(bars) == 0 {
		return 0, 0, ErrNoData
	}
	low, high = bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	return low, high, nil
}
