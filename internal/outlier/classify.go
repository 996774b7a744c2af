package outlier

import (
	"math"

	"OptionSentinel/internal/model"
)

// matchDirection tests a rule direction against a fractional change.
// Comparisons are strict, so a change sitting exactly on the threshold is
// flat and matches nothing. In relaxed mode (very large primary delta) the
// band collapses to non-negative / non-positive.
func matchDirection(want Direction, change, threshold float64, relaxed bool) bool {
	switch want {
	case Up:
		if relaxed {
			return change >= 0
		}
		return change > threshold
	case Down:
		if relaxed {
			return change <= 0
		}
		return change < -threshold
	default:
		return false
	}
}

func matchDelta(want Direction, delta float64) bool {
	switch want {
	case Up:
		return delta > 0
	case Down:
		return delta < 0
	default:
		return false
	}
}

// Classify maps one diff to a signal from the variant's closed taxonomy.
// The second return is false when no combination matches: the record carries
// no signal and is dropped. Pure and deterministic.
func (v *Variant) Classify(d *model.Diff) (model.Signal, bool) {
	delta := v.PrimaryDelta(d)
	relaxed := v.SignificantDelta > 0 && math.Abs(delta) > v.SignificantDelta

	for _, r := range v.Rules {
		if r.Kind != d.Kind {
			continue
		}
		if !matchDirection(r.Stock, d.StockPriceChange, v.StockThreshold, false) {
			continue
		}
		if !matchDirection(r.Option, d.OptionPriceChange, v.OptionThreshold, relaxed) {
			continue
		}
		if !matchDelta(r.Delta, delta) {
			continue
		}
		return r.Signal, true
	}
	return model.Signal{}, false
}
