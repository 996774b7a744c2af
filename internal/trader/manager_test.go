package trader

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"OptionSentinel/internal/collector"
	"OptionSentinel/internal/model"
)

func newTestManager(t *testing.T, prices map[string]float64) *Manager {
	t.Helper()
	m, err := NewManager(
		filepath.Join(t.TempDir(), "state.json"),
		100_000,
		&collector.MockFetcher{Prices: prices},
		Params{BuyRatio: 0.10, HoldLimit: 24 * time.Hour, BearishSellCutoff: 3, FetchWorkers: 2},
	)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func holdPosition(m *Manager, sym string, price float64, buyDate time.Time) {
	m.state.Positions[sym] = &model.Position{
		Symbol: sym, BuyPrice: price, CurrentPrice: price,
		Shares: 100, BuyDate: buyDate, IsHold: true,
	}
	m.state.Cash -= float64(100) * price
	m.refreshStockValue()
}

func TestSellDecision_Precedence(t *testing.T) {
	m := newTestManager(t, nil)
	tests := []struct {
		name     string
		count    model.SignalCount
		heldFor  time.Duration
		wantSell bool
	}{
		{"bearish at cutoff forces sell", model.SignalCount{Bullish: 5, Bearish: 3}, time.Hour, true},
		{"bullish below bearish", model.SignalCount{Bullish: 1, Bearish: 2}, time.Hour, true},
		{"bullish equals bearish", model.SignalCount{Bullish: 2, Bearish: 2}, time.Hour, true},
		{"bullish dominates", model.SignalCount{Bullish: 4, Bearish: 2}, time.Hour, false},
		{"only bearish", model.SignalCount{Bearish: 1}, time.Hour, true},
		{"only bullish", model.SignalCount{Bullish: 1}, 48 * time.Hour, false},
		{"no signals within limit", model.SignalCount{}, 23 * time.Hour, false},
		{"no signals over limit", model.SignalCount{}, 25 * time.Hour, true},
		{"no signals exactly at limit", model.SignalCount{}, 24 * time.Hour, false},
	}
	for _, tt := range tests {
		sell, _ := m.sellDecision(tt.count, tt.heldFor)
		if sell != tt.wantSell {
			t.Errorf("%s: sell = %v, want %v", tt.name, sell, tt.wantSell)
		}
	}
}

func TestRunCycle_BuyAndHold(t *testing.T) {
	m := newTestManager(t, map[string]float64{"ABC": 50})
	now := time.Now()

	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{
		"ABC": {Bullish: 3},
	}, now)

	if len(rep.Buys) != 1 {
		t.Fatalf("got %d buys, want 1", len(rep.Buys))
	}
	// 10% of 100k = 10k; floor(10000/50) = 200 shares for exactly 10k.
	if rep.Buys[0].Shares != 200 {
		t.Errorf("shares = %d, want 200", rep.Buys[0].Shares)
	}
	if rep.Cash != 90_000 {
		t.Errorf("cash = %.2f, want 90000", rep.Cash)
	}
	if rep.TotalValue != 100_000 {
		t.Errorf("total = %.2f, want 100000", rep.TotalValue)
	}

	// Same signal again: the position is already open, nothing happens.
	rep = m.RunCycle(context.Background(), map[string]model.SignalCount{
		"ABC": {Bullish: 3},
	}, now.Add(time.Hour))
	if len(rep.Buys) != 0 || len(rep.Sells) != 0 {
		t.Errorf("second cycle: %d buys, %d sells, want none", len(rep.Buys), len(rep.Sells))
	}
}

func TestRunCycle_BuyRequiresNoBearish(t *testing.T) {
	m := newTestManager(t, map[string]float64{"ABC": 50, "DEF": 50})
	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{
		"ABC": {Bullish: 3, Bearish: 1}, // mixed, no buy
		"DEF": {Bullish: 1},             // below the 2-signal bar
	}, time.Now())
	if len(rep.Buys) != 0 {
		t.Errorf("got %d buys, want 0", len(rep.Buys))
	}
	if rep.Cash != 100_000 {
		t.Errorf("cash = %.2f, want untouched 100000", rep.Cash)
	}
}

func TestRunCycle_SellOnBearish(t *testing.T) {
	m := newTestManager(t, map[string]float64{"ABC": 60})
	now := time.Now()
	holdPosition(m, "ABC", 50, now.Add(-2*time.Hour))

	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{
		"ABC": {Bearish: 1},
	}, now)

	if len(rep.Sells) != 1 {
		t.Fatalf("got %d sells, want 1", len(rep.Sells))
	}
	s := rep.Sells[0]
	if s.Price != 60 || s.Amount != 6000 {
		t.Errorf("sell price/amount = %.2f/%.2f, want 60/6000", s.Price, s.Amount)
	}
	if s.Gain != 0.2 {
		t.Errorf("gain = %.4f, want 0.2", s.Gain)
	}
	state := m.GetState()
	if len(state.Positions) != 0 {
		t.Errorf("%d positions remain, want 0", len(state.Positions))
	}
	if state.Cash != 95_000+6000 {
		t.Errorf("cash = %.2f, want 101000", state.Cash)
	}
}

func TestRunCycle_TimeStop(t *testing.T) {
	m := newTestManager(t, map[string]float64{"ABC": 50})
	now := time.Now()
	holdPosition(m, "ABC", 50, now.Add(-25*time.Hour))

	// No signal at all for the symbol this cycle: the time stop fires.
	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{}, now)
	if len(rep.Sells) != 1 {
		t.Fatalf("got %d sells, want 1", len(rep.Sells))
	}
}

func TestRunCycle_CashNeverNegative(t *testing.T) {
	m := newTestManager(t, map[string]float64{"AAA": 10, "BBB": 10, "CCC": 10})
	m.state.Cash = 2500
	m.refreshStockValue()

	signals := map[string]model.SignalCount{
		"AAA": {Bullish: 2}, "BBB": {Bullish: 2}, "CCC": {Bullish: 2},
	}
	rep := m.RunCycle(context.Background(), signals, time.Now())

	if rep.Cash < 0 {
		t.Errorf("cash went negative: %.2f", rep.Cash)
	}
	// buyAmount = 250 per position; all three fit within 2500.
	if len(rep.Buys) != 3 {
		t.Errorf("got %d buys, want 3", len(rep.Buys))
	}
	for _, b := range rep.Buys {
		if b.Shares != 25 {
			t.Errorf("%s: shares = %d, want 25", b.Symbol, b.Shares)
		}
	}
}

func TestRunCycle_StopsBuyingWhenCashShort(t *testing.T) {
	m := newTestManager(t, map[string]float64{"AAA": 100, "BBB": 100})
	m.state.Cash = 15

	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{
		"AAA": {Bullish: 2}, "BBB": {Bullish: 2},
	}, time.Now())

	// buyAmount = 1.5, below any whole share of a $100 stock.
	if len(rep.Buys) != 0 {
		t.Errorf("got %d buys, want 0", len(rep.Buys))
	}
	if rep.Cash != 15 {
		t.Errorf("cash = %.2f, want 15", rep.Cash)
	}
}

func TestRunCycle_MissingQuoteSkipsBuy(t *testing.T) {
	m := newTestManager(t, map[string]float64{"BBB": 50})

	rep := m.RunCycle(context.Background(), map[string]model.SignalCount{
		"AAA": {Bullish: 2}, // no quote available
		"BBB": {Bullish: 2},
	}, time.Now())

	if len(rep.Buys) != 1 || rep.Buys[0].Symbol != "BBB" {
		t.Fatalf("buys = %+v, want only BBB", rep.Buys)
	}
}

func TestCountSignals(t *testing.T) {
	oi := []model.Classified{
		{Diff: model.Diff{Symbol: "ABC"}, Signal: model.SignalLongCallOpen},
		{Diff: model.Diff{Symbol: "ABC"}, Signal: model.SignalShortPutOpen},
		{Diff: model.Diff{Symbol: "ABC"}, Signal: model.SignalShortPutCover}, // not countable
		{Diff: model.Diff{Symbol: "DEF"}, Signal: model.SignalLongPutOpen},
	}
	vol := []model.Classified{
		{Diff: model.Diff{Symbol: "ABC"}, Signal: model.SignalVolBuyCall},
		{Diff: model.Diff{Symbol: "DEF"}, Signal: model.SignalVolCloseCall}, // not countable
	}
	counts := CountSignals(oi, vol)

	if c := counts["ABC"]; c.Bullish != 3 || c.Bearish != 0 {
		t.Errorf("ABC = %+v, want {Bullish:3}", c)
	}
	if c := counts["DEF"]; c.Bullish != 0 || c.Bearish != 1 {
		t.Errorf("DEF = %+v, want {Bearish:1}", c)
	}
	if _, ok := counts["GHI"]; ok {
		t.Error("unexpected symbol GHI")
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	m1, err := NewManager(path, 50_000, &collector.MockFetcher{Prices: map[string]float64{"ABC": 20}}, Params{
		BuyRatio: 0.10, HoldLimit: 24 * time.Hour, BearishSellCutoff: 3, FetchWorkers: 1,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m1.RunCycle(context.Background(), map[string]model.SignalCount{"ABC": {Bullish: 2}}, time.Now())

	m2, err := NewManager(path, 50_000, &collector.MockFetcher{}, Params{
		BuyRatio: 0.10, HoldLimit: 24 * time.Hour, BearishSellCutoff: 3, FetchWorkers: 1,
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	state := m2.GetState()
	pos, ok := state.Positions["ABC"]
	if !ok {
		t.Fatal("position ABC not restored")
	}
	if pos.Shares != 250 || pos.BuyPrice != 20 {
		t.Errorf("restored position = %+v", pos)
	}
	if state.Cash != 45_000 {
		t.Errorf("restored cash = %.2f, want 45000", state.Cash)
	}
}
