package model

// Tier buckets a notional amount for prioritization and display.
type Tier string

const (
	TierBelow5M Tier = "<=5M"
	Tier5To10M  Tier = "5M-10M"
	Tier10To50M Tier = "10M-50M"
	TierOver50M Tier = ">50M"
)

// Diff is the per-contract delta between two option snapshots, paired with
// the stock price change for the same underlying.
type Diff struct {
	ContractSymbol string
	Symbol         string
	Kind           OptionKind
	Strike         float64
	ExpiryDate     string

	OIDelta           float64
	VolumeDelta       float64
	VolumeChangePct   float64 // relative to the (possibly reset) prior volume
	OptionPriceChange float64 // fractional, e.g. 0.05 = +5%
	StockPriceChange  float64 // fractional

	OINew     float64
	OIOld     float64
	VolumeNew float64
	VolumeOld float64
	PriceNew  float64
	PriceOld  float64

	// Notional = |primary delta| * latest option price * 100.
	Notional  float64
	MarketCap float64
}

// AmountToMarketCap returns the notional as a fraction of market cap,
// 0 when the cap is unknown.
func (d *Diff) AmountToMarketCap() float64 {
	if d.MarketCap <= 0 {
		return 0
	}
	return d.Notional / d.MarketCap
}

// Classified is a Diff that survived filtering and carries its signal and tier.
type Classified struct {
	Diff
	Signal Signal
	Tier   Tier
}
