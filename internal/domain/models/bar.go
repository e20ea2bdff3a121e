package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutOfOrder    = errors.New("bars out of chronological order")
	ErrDuplicateDate = errors.New("duplicate trading day")
)

// DailyBar represents one symbol's OHLCV record for a single trading day.
type DailyBar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SymbolSeries is a chronologically ordered run of daily bars for one symbol.
type SymbolSeries struct {
	Symbol string
	Bars   []DailyBar
}

// NewSymbolSeries validates ordering before wrapping the bars. Bars must be
// strictly ascending by date with no repeated trading days.
func NewSymbolSeries(symbol string, bars []DailyBar) (*SymbolSeries, error) {
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1].Date, bars[i].Date
		if cur.Equal(prev) {
			return nil, fmt.Errorf("%s at %s: %w", symbol, cur.Format("2006-01-02"), ErrDuplicateDate)
		}
		if cur.Before(prev) {
			return nil, fmt.Errorf("%s at %s: %w", symbol, cur.Format("2006-01-02"), ErrOutOfOrder)
		}
	}
	return &SymbolSeries{Symbol: symbol, Bars: bars}, nil
}

// Closes returns the close column of the series.
func (s *SymbolSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Len returns the number of trading days in the series.
func (s *SymbolSeries) Len() int { return len(s.Bars) }
