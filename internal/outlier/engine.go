package outlier

import (
	"log"
	"math"
	"sort"

	"OptionSentinel/internal/model"
)

// ContractMultiplier converts per-share option prices to contract dollars.
const ContractMultiplier = 100

// Engine computes and classifies per-contract deltas between two snapshots
// for one variant. Stateless; safe to reuse across cycles.
type Engine struct {
	Variant Variant
}

// NewEngine wraps a variant configuration.
func NewEngine(v Variant) *Engine {
	return &Engine{Variant: v}
}

// stockChanges maps each symbol present in both stock snapshots to its
// fractional close-to-close change. A zero prior close yields a defined 0.
func stockChanges(latest, prev *model.StockSnapshot) map[string]float64 {
	prevClose := make(map[string]float64, len(prev.Stocks))
	for _, s := range prev.Stocks {
		prevClose[s.Symbol] = s.Close
	}
	changes := make(map[string]float64, len(latest.Stocks))
	for _, s := range latest.Stocks {
		old, ok := prevClose[s.Symbol]
		if !ok {
			continue
		}
		if old == 0 {
			changes[s.Symbol] = 0
			continue
		}
		changes[s.Symbol] = (s.Close - old) / old
	}
	return changes
}

// Compute joins the two option snapshots on contract symbol, derives every
// delta, applies the variant's threshold gates, classifies the survivors,
// and returns them sorted by descending notional amount.
//
// Cross-day handling: when the snapshots fall on different calendar dates
// the prior day's volume does not carry over, so the old volume of every
// contract is treated as 0 and a reappearing contract's volume change counts
// as 100%.
func (e *Engine) Compute(latestOpt, prevOpt *model.OptionSnapshot, latestStock, prevStock *model.StockSnapshot, caps model.MarketCapTable) []model.Classified {
	v := &e.Variant
	crossDay := !latestOpt.SameDay(prevOpt)

	changes := stockChanges(latestStock, prevStock)

	prevByContract := make(map[string]*model.OptionRecord, len(prevOpt.Options))
	for i := range prevOpt.Options {
		prevByContract[prevOpt.Options[i].ContractSymbol] = &prevOpt.Options[i]
	}

	var stats struct {
		matched, stockUp, stockDown, optionUp, optionDown int
		deltaUp, deltaDown, aboveMinimum                   int
	}

	out := make([]model.Classified, 0, 64)
	for i := range latestOpt.Options {
		rec := &latestOpt.Options[i]
		old, ok := prevByContract[rec.ContractSymbol]
		if !ok {
			continue // contract only exists in the newer snapshot
		}
		stats.matched++

		volumeOld := old.Volume
		if crossDay {
			volumeOld = 0
		}

		d := model.Diff{
			ContractSymbol:   rec.ContractSymbol,
			Symbol:           rec.Symbol,
			Kind:             rec.Kind,
			Strike:           rec.Strike,
			ExpiryDate:       rec.ExpiryDate,
			OIDelta:          rec.OpenInterest - old.OpenInterest,
			VolumeDelta:      rec.Volume - volumeOld,
			OINew:            rec.OpenInterest,
			OIOld:            old.OpenInterest,
			VolumeNew:        rec.Volume,
			VolumeOld:        volumeOld,
			PriceNew:         rec.LastPrice,
			PriceOld:         old.LastPrice,
			StockPriceChange: changes[rec.Symbol],
			MarketCap:        caps[rec.Symbol],
		}
		if old.LastPrice != 0 {
			d.OptionPriceChange = (rec.LastPrice - old.LastPrice) / old.LastPrice
		}
		switch {
		case volumeOld == 0 && rec.Volume > 0:
			d.VolumeChangePct = 1.0
		case volumeOld != 0:
			d.VolumeChangePct = d.VolumeDelta / volumeOld
		}

		primary := v.PrimaryDelta(&d)
		d.Notional = math.Abs(primary) * d.PriceNew * ContractMultiplier

		if d.StockPriceChange > v.StockThreshold {
			stats.stockUp++
		} else if d.StockPriceChange < -v.StockThreshold {
			stats.stockDown++
		}
		if d.OptionPriceChange > v.OptionThreshold {
			stats.optionUp++
		} else if d.OptionPriceChange < -v.OptionThreshold {
			stats.optionDown++
		}
		if primary > 0 {
			stats.deltaUp++
		} else if primary < 0 {
			stats.deltaDown++
		}

		if v.UsesVolume {
			if d.VolumeNew <= v.MinVolume {
				continue
			}
			if d.VolumeChangePct <= v.MinIncreasePct {
				continue
			}
		}

		// Notional gate is strict: exactly at the minimum is rejected.
		if d.Notional <= v.MinNotional {
			continue
		}
		stats.aboveMinimum++

		// Cross-day reappearance: without a known market cap the size of the
		// change cannot be put in proportion, so the contract is dropped.
		if v.UsesVolume && d.VolumeOld == 0 {
			if d.MarketCap <= 0 {
				continue
			}
			if d.Notional/d.MarketCap <= v.MarketCapRatio {
				continue
			}
		}

		sig, ok := v.Classify(&d)
		if !ok {
			continue
		}

		out = append(out, model.Classified{
			Diff:   d,
			Signal: sig,
			Tier:   TierFor(d.Notional),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Notional > out[j].Notional
	})

	log.Printf("[INFO] %s scan: %d contracts matched, stock up/down %d/%d, option up/down %d/%d, delta up/down %d/%d, %d above minimum, %d classified",
		v.Name, stats.matched, stats.stockUp, stats.stockDown,
		stats.optionUp, stats.optionDown, stats.deltaUp, stats.deltaDown,
		stats.aboveMinimum, len(out))

	return out
}
