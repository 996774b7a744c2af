package recorder

import (
	"time"

	"OptionSentinel/internal/model"
)

// TradeRecord is one executed simulated trade.
type TradeRecord struct {
	CycleID string
	Symbol  string
	Side    string
	Shares  int
	Price   float64
	Amount  float64
	Gain    float64
	Reason  string
}

// Recorder persists classified outliers and simulated trading history.
// Replaying the same inputs must not duplicate rows: outlier tables are keyed
// by (contract, folder, creation time) and source files by (folder, name),
// both with upsert semantics.
type Recorder interface {
	RecordOutliers(variant model.VariantName, rows []model.Classified, folder, sourceFile string, createdAt time.Time) error
	FileProcessed(folder, filename string, variant model.VariantName) (bool, error)
	MarkFileProcessed(folder, filename string, variant model.VariantName, rowCount int) error
	RecordTrade(rec *TradeRecord) error
	RecordAccount(cycleID string, cash, stock, total float64) error
	CleanupAfterHour(variant model.VariantName, hour int) (int64, error)
	Close() error
}
