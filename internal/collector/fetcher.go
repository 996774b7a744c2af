package collector

// QuoteFetcher fetches the current trade price for a stock symbol.
type QuoteFetcher interface {
	FetchClose(symbol string) (float64, error)
	Name() string
}
