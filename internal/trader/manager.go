// Package trader simulates a per-symbol position book driven by aggregated
// outlier signal counts. One decision cycle runs fully serialized: marks are
// refreshed, every sell is evaluated, then buys, then the state is saved.
package trader

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"OptionSentinel/internal/collector"
	"OptionSentinel/internal/model"
)

// Params are the position-management knobs.
type Params struct {
	BuyRatio          float64       // fraction of total account value per buy
	HoldLimit         time.Duration // time stop-loss for positions without signals
	BearishSellCutoff int           // bearish count that forces a sell outright
	FetchWorkers      int           // bounded parallelism for quote refresh
}

// Manager owns the simulated account. All mutation happens under one lock,
// one cycle at a time.
type Manager struct {
	mu       sync.Mutex
	state    *model.TradeState
	filePath string
	quotes   collector.QuoteFetcher
	params   Params
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string, initialCash float64, quotes collector.QuoteFetcher, params Params) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	if state.Cash == 0 && len(state.Positions) == 0 {
		state.Cash = initialCash
	}

	m := &Manager{state: state, filePath: filePath, quotes: quotes, params: params}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// GetState returns a copy of the current account state.
func (m *Manager) GetState() model.TradeState {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *m.state
	cp.Positions = make(map[string]*model.Position, len(m.state.Positions))
	for sym, p := range m.state.Positions {
		pc := *p
		cp.Positions[sym] = &pc
	}
	return cp
}

// CountSignals tallies countable signals per underlying symbol across any
// number of classified sets (typically the OI and volume results of one scan).
func CountSignals(sets ...[]model.Classified) map[string]model.SignalCount {
	counts := make(map[string]model.SignalCount)
	for _, set := range sets {
		for i := range set {
			c := &set[i]
			if c.Symbol == "" || !c.Signal.Countable {
				continue
			}
			count := counts[c.Symbol]
			if c.Signal.Bullish {
				count.Bullish++
			}
			if c.Signal.Bearish {
				count.Bearish++
			}
			counts[c.Symbol] = count
		}
	}
	return counts
}

// Action is one executed buy or sell.
type Action struct {
	Symbol string
	Side   string // "BUY" or "SELL"
	Shares int
	Price  float64
	Amount float64
	Gain   float64 // sells only
	Reason string
}

// CycleReport summarizes one decision cycle.
type CycleReport struct {
	Sells      []Action
	Buys       []Action
	Cash       float64
	StockValue float64
	TotalValue float64
}

// sellDecision applies the holding exit rules in precedence order.
func (m *Manager) sellDecision(count model.SignalCount, heldFor time.Duration) (bool, string) {
	switch {
	case count.Bullish > 0 && count.Bearish > 0:
		if count.Bearish >= m.params.BearishSellCutoff {
			return true, fmt.Sprintf("看跌信号 %d 个，达到强制卖出线", count.Bearish)
		}
		if count.Bullish <= count.Bearish {
			return true, fmt.Sprintf("看涨 %d <= 看跌 %d", count.Bullish, count.Bearish)
		}
		return false, ""
	case count.Bearish > 0:
		return true, fmt.Sprintf("只有看跌信号 %d 个", count.Bearish)
	case count.Bullish > 0:
		return false, ""
	default:
		if heldFor > m.params.HoldLimit {
			return true, fmt.Sprintf("持有 %.1f 小时超过限制", heldFor.Hours())
		}
		return false, ""
	}
}

// RunCycle consumes one aggregated signal set and executes all resulting
// sells, then all buys, re-checking cash after each buy.
func (m *Manager) RunCycle(ctx context.Context, signals map[string]model.SignalCount, now time.Time) *CycleReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Refresh marks for held positions and buy candidates in one batch.
	need := make([]string, 0, len(m.state.Positions)+len(signals))
	for sym := range m.state.Positions {
		need = append(need, sym)
	}
	for sym, count := range signals {
		if _, held := m.state.Positions[sym]; !held && count.Bullish >= 2 && count.Bearish == 0 {
			need = append(need, sym)
		}
	}
	prices := collector.FetchAll(ctx, m.quotes, need, m.params.FetchWorkers)

	for sym, pos := range m.state.Positions {
		if price, ok := prices[sym]; ok {
			pos.CurrentPrice = price
		}
	}

	report := &CycleReport{}

	// Sells first, in stable symbol order.
	held := make([]string, 0, len(m.state.Positions))
	for sym := range m.state.Positions {
		held = append(held, sym)
	}
	sort.Strings(held)
	for _, sym := range held {
		pos := m.state.Positions[sym]
		sell, reason := m.sellDecision(signals[sym], now.Sub(pos.BuyDate))
		if !sell {
			continue
		}
		amount := pos.MarketValue()
		gain := pos.Gain()
		m.state.Cash += amount
		pos.IsHold = false
		delete(m.state.Positions, sym)
		log.Printf("[INFO] 卖出 %s: %d 股 @ %.2f, 金额 %.2f (%s)", sym, pos.Shares, pos.CurrentPrice, amount, reason)
		report.Sells = append(report.Sells, Action{
			Symbol: sym, Side: "SELL", Shares: pos.Shares,
			Price: pos.CurrentPrice, Amount: amount, Gain: gain, Reason: reason,
		})
	}

	// Buys against the post-sell account value.
	m.refreshStockValue()
	buyAmount := m.state.TotalValue() * m.params.BuyRatio

	candidates := make([]string, 0, len(signals))
	for sym := range signals {
		candidates = append(candidates, sym)
	}
	sort.Strings(candidates)
	for _, sym := range candidates {
		count := signals[sym]
		if count.Bullish < 2 || count.Bearish != 0 {
			continue
		}
		if _, alreadyHeld := m.state.Positions[sym]; alreadyHeld {
			continue // one open position per symbol
		}
		if m.state.Cash < buyAmount {
			log.Printf("[INFO] 现金不足，停止买入。现金: %.2f, 需要: %.2f", m.state.Cash, buyAmount)
			break
		}
		price, ok := prices[sym]
		if !ok || price <= 0 {
			log.Printf("[WARN] 无法获取 %s 的当前价格，跳过买入", sym)
			continue
		}
		shares := int(buyAmount / price)
		if shares <= 0 {
			log.Printf("[WARN] 买入金额 %.2f 不足以购买 %s (价格 %.2f)", buyAmount, sym, price)
			continue
		}
		cost := float64(shares) * price
		m.state.Cash -= cost
		m.state.Positions[sym] = &model.Position{
			Symbol:       sym,
			BuyPrice:     price,
			CurrentPrice: price,
			Shares:       shares,
			BuyDate:      now,
			IsHold:       true,
		}
		log.Printf("[INFO] 买入 %s: %d 股 @ %.2f, 金额 %.2f (看涨 %d, 看跌 %d)", sym, shares, price, cost, count.Bullish, count.Bearish)
		report.Buys = append(report.Buys, Action{
			Symbol: sym, Side: "BUY", Shares: shares,
			Price: price, Amount: cost,
			Reason: fmt.Sprintf("看涨 %d 个，无看跌", count.Bullish),
		})
	}

	m.refreshStockValue()
	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save trade state: %v", err)
	}

	report.Cash = m.state.Cash
	report.StockValue = m.state.StockValue
	report.TotalValue = m.state.TotalValue()
	return report
}

// refreshStockValue recomputes the mark-to-market value of all held positions.
// Call with the lock held.
func (m *Manager) refreshStockValue() {
	total := 0.0
	for _, pos := range m.state.Positions {
		total += pos.MarketValue()
	}
	m.state.StockValue = total
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
