package models

import "time"

// Point is one dated value in a derived series. Valid is false where the
// metric is undefined at that position (warm-up rows, zero baselines).
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Valid bool      `json:"valid"`
}

// MetricSet carries every derived series and scalar for one symbol.
// Pointer fields are nil where the underlying metric is undefined.
type MetricSet struct {
	Symbol         string    `json:"symbol"`
	TradingDays    int       `json:"trading_days"`
	FirstDay       time.Time `json:"first_day"`
	LastDay        time.Time `json:"last_day"`
	MA7            []Point   `json:"ma7"`
	MA30           []Point   `json:"ma30"`
	DailyReturns   []Point   `json:"daily_returns"`
	PriceChangePct float64   `json:"price_change_pct"`
	VolatilityPct  *float64  `json:"volatility_pct"`
	AvgVolume      float64   `json:"avg_volume"`
	LowestPrice    float64   `json:"lowest_price"`
	HighestPrice   float64   `json:"highest_price"`
	Trend          Trend     `json:"trend"`
	Signal         Signal    `json:"signal"`
}

// SymbolSummary is the condensed per-symbol report served to clients.
type SymbolSummary struct {
	Symbol         string   `json:"symbol"`
	TradingDays    int      `json:"trading_days"`
	LowestPrice    float64  `json:"lowest_price"`
	HighestPrice   float64  `json:"highest_price"`
	MA7            *float64 `json:"ma7"`
	MA30           *float64 `json:"ma30"`
	PriceChangePct float64  `json:"price_change_pct"`
	AvgVolume      float64  `json:"avg_volume"`
	VolatilityPct  *float64 `json:"volatility_pct"`
	Trend          Trend    `json:"trend"`
	Signal         Signal   `json:"signal"`
}

// BatchSummary aggregates per-symbol summaries for a whole dataset run.
// Errors maps failed symbols to the reason their analysis was skipped.
type BatchSummary struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Symbols     []SymbolSummary   `json:"symbols"`
	Rows        int               `json:"rows"`
	Errors      map[string]string `json:"errors,omitempty"`
}
