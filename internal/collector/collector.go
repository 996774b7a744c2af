package collector

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MockFetcher returns controllable fixed quotes for development and testing.
type MockFetcher struct {
	Prices map[string]float64
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchClose(symbol string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Prices[symbol], nil
}

// FetchAll fetches current prices for all symbols with a bounded worker pool.
// Per-symbol failures are logged and skipped; the returned map only holds
// symbols that resolved to a positive price.
func FetchAll(ctx context.Context, fetcher QuoteFetcher, symbols []string, workers int) map[string]float64 {
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	prices := make(map[string]float64, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			price, err := fetcher.FetchClose(symbol)
			if err != nil {
				log.Printf("[WARN] fetch price for %s: %v", symbol, err)
				return nil
			}
			if price <= 0 {
				return nil
			}
			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are per-symbol
	return prices
}
