package model

import "time"

// OptionKind distinguishes calls from puts.
type OptionKind string

const (
	Call OptionKind = "CALL"
	Put  OptionKind = "PUT"
)

// OptionRecord is a single contract row from an option-chain snapshot.
type OptionRecord struct {
	ContractSymbol string
	Symbol         string
	Strike         float64
	Kind           OptionKind
	LastPrice      float64
	OpenInterest   float64
	Volume         float64
	ExpiryDate     string
}

// StockRecord is a single row from a stock-price snapshot.
type StockRecord struct {
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Date   string
}

// OptionSnapshot is a full point-in-time capture of the option chain.
type OptionSnapshot struct {
	Path      string
	Timestamp time.Time
	Options   []OptionRecord
}

// SameDay reports whether both snapshots fall on the same calendar date.
func (s *OptionSnapshot) SameDay(other *OptionSnapshot) bool {
	return s.Timestamp.Format("20060102") == other.Timestamp.Format("20060102")
}

// StockSnapshot is a full point-in-time capture of stock closing prices.
type StockSnapshot struct {
	Path      string
	Timestamp time.Time
	Stocks    []StockRecord
}

// MarketCapTable maps a stock symbol to its market capitalization in dollars.
// A missing symbol means the cap is unknown.
type MarketCapTable map[string]float64
