package snapshot

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"OptionSentinel/internal/model"
)

// header maps column names to positions, so extra columns pass through harmlessly.
type header map[string]int

func readCSV(path string) (header, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return header{}, nil, nil
	}

	h := make(header, len(rows[0]))
	for i, name := range rows[0] {
		h[strings.TrimSpace(name)] = i
	}
	return h, rows[1:], nil
}

func (h header) require(path string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Path: path, Columns: missing}
	}
	return nil
}

func (h header) str(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// num parses a numeric cell leniently: malformed or empty values become 0
// so classification stays total over dirty rows.
func (h header) num(row []string, col string) float64 {
	v := h.str(row, col)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// LoadOptions reads an option-chain snapshot CSV.
func LoadOptions(path string) (*model.OptionSnapshot, error) {
	h, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "contractSymbol", "openInterest", "lastPrice", "option_type", "symbol"); err != nil {
		return nil, err
	}

	snap := &model.OptionSnapshot{
		Path:      path,
		Timestamp: ParseTimestamp(path),
		Options:   make([]model.OptionRecord, 0, len(rows)),
	}
	for _, row := range rows {
		contract := h.str(row, "contractSymbol")
		if contract == "" {
			continue
		}
		snap.Options = append(snap.Options, model.OptionRecord{
			ContractSymbol: contract,
			Symbol:         h.str(row, "symbol"),
			Strike:         h.num(row, "strike"),
			Kind:           model.OptionKind(strings.ToUpper(h.str(row, "option_type"))),
			LastPrice:      h.num(row, "lastPrice"),
			OpenInterest:   h.num(row, "openInterest"),
			Volume:         h.num(row, "volume"),
			ExpiryDate:     h.str(row, "expiry_date"),
		})
	}
	return snap, nil
}

// LoadStocks reads a stock-price snapshot CSV.
func LoadStocks(path string) (*model.StockSnapshot, error) {
	h, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "symbol", "Close"); err != nil {
		return nil, err
	}

	snap := &model.StockSnapshot{
		Path:      path,
		Timestamp: ParseTimestamp(path),
		Stocks:    make([]model.StockRecord, 0, len(rows)),
	}
	for _, row := range rows {
		symbol := h.str(row, "symbol")
		if symbol == "" {
			continue
		}
		snap.Stocks = append(snap.Stocks, model.StockRecord{
			Symbol: symbol,
			Open:   h.num(row, "Open"),
			High:   h.num(row, "High"),
			Low:    h.num(row, "Low"),
			Close:  h.num(row, "Close"),
			Volume: h.num(row, "Volume"),
			Date:   h.str(row, "Date"),
		})
	}
	return snap, nil
}

// LoadMarketCap reads the market-capitalization table. The file is optional:
// when it is absent or malformed the cross-day market-cap gate simply has no
// data and rejects reappearing contracts, so this logs and returns an empty
// table instead of failing.
func LoadMarketCap(path string) model.MarketCapTable {
	caps := model.MarketCapTable{}

	h, rows, err := readCSV(path)
	if err != nil {
		log.Printf("[WARN] market cap table unavailable: %v", err)
		return caps
	}
	if err := h.require(path, "Symbol", "Market Cap"); err != nil {
		log.Printf("[WARN] market cap table unusable: %v", err)
		return caps
	}

	for _, row := range rows {
		symbol := h.str(row, "Symbol")
		if symbol == "" {
			continue
		}
		if mc := h.num(row, "Market Cap"); mc > 0 {
			caps[symbol] = mc
		}
	}
	return caps
}
