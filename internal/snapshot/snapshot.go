// Package snapshot reads and writes the CSV files the scanner exchanges with
// the outside world: option-chain and stock-price snapshots named
// all-YYYYMMDD-HHMM.csv, the optional market-cap table, and classified
// outlier result files.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"OptionSentinel/internal/model"
)

var (
	snapshotNameRe = regexp.MustCompile(`^all-(\d{8})-(\d{4})\.csv$`)
	stampRe        = regexp.MustCompile(`(\d{8})-(\d{4})`)
)

// ErrNotEnoughSnapshots is returned when fewer than two option snapshots exist.
var ErrNotEnoughSnapshots = errors.New("need at least two option snapshots to compare")

// MissingColumnError reports required columns absent from a snapshot file.
// It aborts the run for that snapshot; no partial set is produced.
type MissingColumnError struct {
	Path    string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("file %s is missing required columns: %s", e.Path, strings.Join(e.Columns, ", "))
}

// MissingCounterpartError reports that the stock-price file paired with an
// option snapshot timestamp does not exist.
type MissingCounterpartError struct {
	Path string
}

func (e *MissingCounterpartError) Error() string {
	return fmt.Sprintf("stock price file not found: %s", e.Path)
}

// ParseTimestamp extracts the snapshot timestamp from a file name of the form
// all-YYYYMMDD-HHMM.csv. Files without a parseable timestamp fall back to
// their modification time.
func ParseTimestamp(path string) time.Time {
	name := filepath.Base(path)
	m := snapshotNameRe.FindStringSubmatch(name)
	if m == nil {
		if info, err := os.Stat(path); err == nil {
			return info.ModTime()
		}
		return time.Time{}
	}
	ts, err := time.ParseInLocation("200601021504", m[1]+m[2], time.Local)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// parseStamp finds a YYYYMMDD-HHMM stamp anywhere in the file name; outlier
// result files are named <stamp>.csv without the all- prefix.
func parseStamp(path string) time.Time {
	m := stampRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}
	}
	ts, err := time.ParseInLocation("200601021504", m[1]+m[2], time.Local)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Pair names the latest two option snapshots and their paired stock files,
// ordered newest first.
type Pair struct {
	LatestOption   string
	PreviousOption string
	LatestStock    string
	PreviousStock  string
	LatestTS       time.Time
	PreviousTS     time.Time
}

// TimeRange describes the compared window, oldest to newest.
func (p *Pair) TimeRange() string {
	return p.PreviousTS.Format("20060102-1504") + " to " + p.LatestTS.Format("20060102-1504")
}

// FindLatestPair locates the two most recent option snapshots in optionDir
// and the stock-price snapshots sharing their timestamps.
func FindLatestPair(optionDir, stockDir string) (*Pair, error) {
	files, err := filepath.Glob(filepath.Join(optionDir, "all-*.csv"))
	if err != nil {
		return nil, fmt.Errorf("glob option snapshots: %w", err)
	}
	if len(files) < 2 {
		return nil, ErrNotEnoughSnapshots
	}
	sort.Slice(files, func(i, j int) bool {
		return ParseTimestamp(files[i]).After(ParseTimestamp(files[j]))
	})

	p := &Pair{
		LatestOption:   files[0],
		PreviousOption: files[1],
		LatestTS:       ParseTimestamp(files[0]),
		PreviousTS:     ParseTimestamp(files[1]),
	}
	p.LatestStock = filepath.Join(stockDir, fmt.Sprintf("all-%s.csv", p.LatestTS.Format("20060102-1504")))
	p.PreviousStock = filepath.Join(stockDir, fmt.Sprintf("all-%s.csv", p.PreviousTS.Format("20060102-1504")))

	if _, err := os.Stat(p.LatestStock); err != nil {
		return nil, &MissingCounterpartError{Path: p.LatestStock}
	}
	if _, err := os.Stat(p.PreviousStock); err != nil {
		return nil, &MissingCounterpartError{Path: p.PreviousStock}
	}
	return p, nil
}

// Load reads all four snapshot files of the pair.
func (p *Pair) Load() (latestOpt, prevOpt *model.OptionSnapshot, latestStock, prevStock *model.StockSnapshot, err error) {
	if latestOpt, err = LoadOptions(p.LatestOption); err != nil {
		return nil, nil, nil, nil, err
	}
	if prevOpt, err = LoadOptions(p.PreviousOption); err != nil {
		return nil, nil, nil, nil, err
	}
	if latestStock, err = LoadStocks(p.LatestStock); err != nil {
		return nil, nil, nil, nil, err
	}
	if prevStock, err = LoadStocks(p.PreviousStock); err != nil {
		return nil, nil, nil, nil, err
	}
	return latestOpt, prevOpt, latestStock, prevStock, nil
}
