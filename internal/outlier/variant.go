// Package outlier turns two option-chain snapshots into a classified set of
// unusual position changes. One parameterized engine serves both scan
// variants: by open-interest change and by volume change.
package outlier

import (
	"OptionSentinel/internal/config"
	"OptionSentinel/internal/model"
)

// Direction of a price or delta move. Flat matches no rule.
type Direction int8

const (
	Flat Direction = iota
	Up
	Down
)

// Rule maps one (option kind, stock, option, delta) direction combination to
// a signal. Rules are tried in order; the first match wins.
type Rule struct {
	Kind   model.OptionKind
	Stock  Direction
	Option Direction
	Delta  Direction
	Signal model.Signal
}

// Variant parameterizes the engine: which delta is primary, the notional
// minimum, extra volume-only gates, and the label table.
type Variant struct {
	Name            model.VariantName
	MinNotional     float64
	StockThreshold  float64
	OptionThreshold float64

	// SignificantDelta relaxes the option-direction test to non-negative /
	// non-positive when |primary delta| exceeds it. 0 disables the relaxation.
	SignificantDelta float64

	// Volume-variant gates. UsesVolume also selects VolumeDelta as primary
	// and enables the cross-day market-cap check.
	UsesVolume     bool
	MinVolume      float64
	MinIncreasePct float64
	MarketCapRatio float64

	Rules []Rule
}

// PrimaryDelta selects the delta this variant keys its notional on.
func (v *Variant) PrimaryDelta(d *model.Diff) float64 {
	if v.UsesVolume {
		return d.VolumeDelta
	}
	return d.OIDelta
}

var oiRules = []Rule{
	{model.Call, Up, Up, Up, model.SignalLongCallOpen},
	{model.Call, Down, Down, Up, model.SignalShortCallOpen},
	{model.Call, Up, Up, Down, model.SignalShortCallCover},
	{model.Call, Down, Down, Down, model.SignalLongCallClose},
	{model.Put, Down, Up, Up, model.SignalLongPutOpen},
	{model.Put, Up, Down, Up, model.SignalShortPutOpen},
	{model.Put, Down, Up, Down, model.SignalShortPutCover},
	{model.Put, Up, Down, Down, model.SignalLongPutClose},
}

// The volume table only labels growing volume; shrinking volume is noise.
var volumeRules = []Rule{
	{model.Call, Up, Up, Up, model.SignalVolBuyCall},
	{model.Call, Up, Down, Up, model.SignalVolSellCallH},
	{model.Call, Down, Up, Up, model.SignalVolCloseCall},
	{model.Call, Down, Down, Up, model.SignalVolSellCall},
	{model.Put, Down, Up, Up, model.SignalVolBuyPut},
	{model.Put, Down, Down, Up, model.SignalVolSellPutH},
	{model.Put, Up, Up, Up, model.SignalVolClosePut},
	{model.Put, Up, Down, Up, model.SignalVolSellPut},
}

// OIVariant builds the open-interest scan from config.
func OIVariant(cfg *config.Config) Variant {
	return Variant{
		Name:             model.VariantOI,
		MinNotional:      cfg.Scan.OIMinNotional,
		StockThreshold:   cfg.Scan.StockChangeThreshold,
		OptionThreshold:  cfg.Scan.OptionChangeThreshold,
		SignificantDelta: cfg.Scan.SignificantOIDelta,
		MarketCapRatio:   cfg.Scan.MarketCapRatio,
		Rules:            oiRules,
	}
}

// VolumeVariant builds the volume scan from config.
func VolumeVariant(cfg *config.Config) Variant {
	return Variant{
		Name:            model.VariantVolume,
		MinNotional:     cfg.Scan.VolumeMinNotional,
		StockThreshold:  cfg.Scan.StockChangeThreshold,
		OptionThreshold: cfg.Scan.OptionChangeThreshold,
		UsesVolume:      true,
		MinVolume:       cfg.Scan.MinVolume,
		MinIncreasePct:  cfg.Scan.MinVolumeIncreasePct,
		MarketCapRatio:  cfg.Scan.MarketCapRatio,
		Rules:           volumeRules,
	}
}
