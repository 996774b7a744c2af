package model

import "time"

// Position is a simulated stock holding. At most one held position exists per
// symbol at any time.
type Position struct {
	Symbol       string    `json:"symbol"`
	BuyPrice     float64   `json:"buy_price"`
	CurrentPrice float64   `json:"current_price"`
	Shares       int       `json:"shares"`
	BuyDate      time.Time `json:"buy_date"`
	IsHold       bool      `json:"is_hold"`
}

// MarketValue returns the current notional of the position.
func (p *Position) MarketValue() float64 {
	return p.CurrentPrice * float64(p.Shares)
}

// Gain returns the unrealized fractional return at the current mark.
func (p *Position) Gain() float64 {
	if p.BuyPrice == 0 {
		return 0
	}
	return (p.CurrentPrice - p.BuyPrice) / p.BuyPrice
}

// TradeState tracks the simulated account between cycles.
type TradeState struct {
	Cash       float64              `json:"cash"`
	StockValue float64              `json:"stock_value"`
	Positions  map[string]*Position `json:"positions"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// TotalValue is cash plus the mark-to-market value of all held positions.
func (s *TradeState) TotalValue() float64 {
	return s.Cash + s.StockValue
}
