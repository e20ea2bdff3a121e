package analytics

import "EquityLens/internal/domain/models"

// Classify maps overall price change and volatility to a trading signal.
// Branches are evaluated in fixed priority order; the first match wins.
// A nil volatility fails every branch that tests volatility.
func Classify(changePct float64, volPct *float64) models.Signal {
	switch {
	case changePct > 20 && volPct != nil && *volPct < 2:
		return models.SignalBuy
	case changePct > 0 && volPct != nil && *volPct <= 5:
		return models.SignalHold
	case changePct <= 0:
		return models.SignalSell
	default:
		return models.SignalHold
	}
}

// TrendOf labels the overall direction. Zero change counts as downward.
func TrendOf(changePct float64) models.Trend {
	if changePct > 0 {
		return models.TrendUpward
	}
	return models.TrendDownward
}
