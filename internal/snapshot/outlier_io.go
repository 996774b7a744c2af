package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"OptionSentinel/internal/model"
)

// Column order of outlier result files: important columns first, the rest in
// a fixed order so files from different runs diff cleanly.
var outlierColumns = []string{
	"contractSymbol", "strike", "expiry_date", "symbol", "option_type",
	"signal_type", "is_bullish", "is_bearish", "countable", "amount_tier",
	"amount_threshold", "amount_to_market_cap",
	"oi_change", "volume_change", "volume_change_pct",
	"stock_price_change_pct", "option_price_change_pct",
	"openInterest_new", "openInterest_old", "volume_new", "volume_old",
	"lastPrice_new", "lastPrice_old", "market_cap",
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveOutliers writes a classified set to dir as <YYYYMMDD-HHMM>.csv.
// Rows are written in the order given (callers sort by descending notional).
func SaveOutliers(dir string, rows []model.Classified, ts time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create outlier dir: %w", err)
	}
	path := filepath.Join(dir, ts.Format("20060102-1504")+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(outlierColumns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		r := &rows[i]
		record := []string{
			r.ContractSymbol, fnum(r.Strike), r.ExpiryDate, r.Symbol, string(r.Kind),
			r.Signal.Label,
			strconv.FormatBool(r.Signal.Bullish),
			strconv.FormatBool(r.Signal.Bearish),
			strconv.FormatBool(r.Signal.Countable),
			string(r.Tier),
			fnum(r.Notional), fnum(r.AmountToMarketCap()),
			fnum(r.OIDelta), fnum(r.VolumeDelta), fnum(r.VolumeChangePct * 100),
			fnum(r.StockPriceChange * 100), fnum(r.OptionPriceChange * 100),
			fnum(r.OINew), fnum(r.OIOld), fnum(r.VolumeNew), fnum(r.VolumeOld),
			fnum(r.PriceNew), fnum(r.PriceOld), fnum(r.MarketCap),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// LoadOutliers reads a classified result file back. Signal flags come from
// dedicated columns, never from matching label substrings.
func LoadOutliers(path string) ([]model.Classified, error) {
	h, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if err := h.require(path, "contractSymbol", "symbol", "signal_type", "is_bullish", "is_bearish", "countable"); err != nil {
		return nil, err
	}

	out := make([]model.Classified, 0, len(rows))
	for _, row := range rows {
		c := model.Classified{
			Diff: model.Diff{
				ContractSymbol: h.str(row, "contractSymbol"),
				Symbol:         h.str(row, "symbol"),
				Kind:           model.OptionKind(h.str(row, "option_type")),
				Strike:         h.num(row, "strike"),
				ExpiryDate:     h.str(row, "expiry_date"),
				OIDelta:        h.num(row, "oi_change"),
				VolumeDelta:    h.num(row, "volume_change"),
				Notional:       h.num(row, "amount_threshold"),
				MarketCap:      h.num(row, "market_cap"),
			},
			Signal: model.Signal{
				Label:     h.str(row, "signal_type"),
				Bullish:   h.str(row, "is_bullish") == "true",
				Bearish:   h.str(row, "is_bearish") == "true",
				Countable: h.str(row, "countable") == "true",
			},
			Tier: model.Tier(h.str(row, "amount_tier")),
		}
		if c.ContractSymbol == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FindLatestOutlier returns the most recent result file in dir, or ok=false
// when the directory holds none.
func FindLatestOutlier(dir string) (path string, ts time.Time, ok bool) {
	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(files) == 0 {
		return "", time.Time{}, false
	}
	for _, f := range files {
		if t := parseStamp(f); t.After(ts) {
			path, ts = f, t
		}
	}
	return path, ts, path != ""
}
