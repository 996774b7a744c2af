package outlier

import "OptionSentinel/internal/model"

// Notional tier boundaries in dollars.
const (
	Threshold5M  = 5_000_000
	Threshold10M = 10_000_000
	Threshold50M = 50_000_000
)

// TierFor buckets a notional amount. Total and monotonic.
func TierFor(notional float64) model.Tier {
	switch {
	case notional <= Threshold5M:
		return model.TierBelow5M
	case notional <= Threshold10M:
		return model.Tier5To10M
	case notional <= Threshold50M:
		return model.Tier10To50M
	default:
		return model.TierOver50M
	}
}
