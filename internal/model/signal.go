package model

// VariantName identifies which delta drives a scan.
type VariantName string

const (
	VariantOI     VariantName = "oi"
	VariantVolume VariantName = "volume"
)

// Signal is one member of the closed taxonomy of directional trading signals.
// The flags are fixed per label and drive downstream aggregation; labels that
// represent pure closing/volatility trades stay in the report but are not
// countable for bullish/bearish tallies.
type Signal struct {
	Label     string
	Bullish   bool
	Bearish   bool
	Call      bool
	Put       bool
	Countable bool
}

// Open-interest variant taxonomy.
var (
	SignalLongCallOpen   = Signal{Label: "多头买 Call，看涨", Bullish: true, Call: true, Countable: true}
	SignalShortCallOpen  = Signal{Label: "空头卖 Call，看跌/看不涨", Bearish: true, Call: true, Countable: true}
	SignalShortCallCover = Signal{Label: "空头平仓 Call，回补信号，看涨", Bullish: true, Call: true, Countable: true}
	SignalLongCallClose  = Signal{Label: "多头平仓 Call，减仓，看涨减弱", Bearish: true, Call: true, Countable: true}
	SignalLongPutOpen    = Signal{Label: "多头买 Put，看跌", Bearish: true, Put: true, Countable: true}
	SignalShortPutOpen   = Signal{Label: "空头卖 Put，看涨/看不跌", Bullish: true, Put: true, Countable: true}
	SignalShortPutCover  = Signal{Label: "空头平仓 Put，回补，看跌信号减弱", Put: true}
	SignalLongPutClose   = Signal{Label: "多头平仓 Put，减仓，看跌减弱", Bullish: true, Put: true, Countable: true}
)

// Volume variant taxonomy.
var (
	SignalVolBuyCall   = Signal{Label: "买Call，看涨", Bullish: true, Call: true, Countable: true}
	SignalVolSellCallH = Signal{Label: "卖Call，看空 / 价差对冲", Bearish: true, Call: true, Countable: true}
	SignalVolCloseCall = Signal{Label: "买Call 平仓 / 做波动率交易", Call: true}
	SignalVolSellCall  = Signal{Label: "卖Call，看跌", Bearish: true, Call: true, Countable: true}
	SignalVolBuyPut    = Signal{Label: "买Put，看跌", Bearish: true, Put: true, Countable: true}
	SignalVolSellPutH  = Signal{Label: "卖Put，看涨 / 对冲", Bullish: true, Put: true, Countable: true}
	SignalVolClosePut  = Signal{Label: "买Put 平仓 / 做波动率交易", Put: true}
	SignalVolSellPut   = Signal{Label: "卖Put，看涨", Bullish: true, Put: true, Countable: true}
)

// SignalCount aggregates countable signals for one underlying symbol.
type SignalCount struct {
	Bullish int
	Bearish int
}

// Total returns how many countable signals were tallied.
func (c SignalCount) Total() int { return c.Bullish + c.Bearish }
