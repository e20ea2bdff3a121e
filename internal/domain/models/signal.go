package models

// Signal is the trading recommendation derived from a symbol's metrics.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalHold Signal = "HOLD"
	SignalSell Signal = "SELL"
)

// Trend describes the overall direction of a symbol over the analyzed range.
type Trend string

const (
	TrendUpward   Trend = "UPWARD"
	TrendDownward Trend = "DOWNWARD"
)
