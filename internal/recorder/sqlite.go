package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"OptionSentinel/internal/model"
)

// SQLiteRecorder persists classified outliers and trading history to SQLite.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func outlierTableDDL(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			contract_symbol      TEXT NOT NULL,
			symbol               TEXT,
			option_type          TEXT,
			strike               REAL,
			expiry_date          TEXT,
			signal_type          TEXT,
			is_bullish           INTEGER,
			is_bearish           INTEGER,
			countable            INTEGER,
			amount_tier          TEXT,
			amount_threshold     REAL,
			amount_to_market_cap REAL,
			oi_change            REAL,
			volume_change        REAL,
			stock_change_pct     REAL,
			option_change_pct    REAL,
			last_price           REAL,
			market_cap           REAL,
			folder_name          TEXT NOT NULL,
			source_file          TEXT,
			create_time          INTEGER NOT NULL,
			UNIQUE(contract_symbol, folder_name, create_time)
		)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ts ON %s(create_time)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_symbol ON %s(symbol)`, table, table),
	}
}

func (r *SQLiteRecorder) migrate() error {
	stmts := append(outlierTableDDL("oi_outlier"), outlierTableDDL("volume_outlier")...)
	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS processed_files (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			folder_name  TEXT NOT NULL,
			csv_filename TEXT NOT NULL,
			file_type    TEXT,
			row_count    INTEGER,
			processed_at INTEGER NOT NULL,
			UNIQUE(folder_name, csv_filename, file_type)
		)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id   TEXT,
			symbol     TEXT NOT NULL,
			side       TEXT NOT NULL,
			shares     INTEGER,
			price      REAL,
			amount     REAL,
			gain       REAL,
			reason     TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(created_at)`,

		`CREATE TABLE IF NOT EXISTS account_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT,
			cash        REAL,
			stock_value REAL,
			total_value REAL,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_account_ts ON account_history(created_at)`,
	)

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func outlierTable(variant model.VariantName) (string, error) {
	switch variant {
	case model.VariantOI:
		return "oi_outlier", nil
	case model.VariantVolume:
		return "volume_outlier", nil
	default:
		return "", fmt.Errorf("unknown variant %q", variant)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordOutliers stores one classified set inside a transaction. A replay of
// the same (contract, folder, create time) key overwrites the existing row.
func (r *SQLiteRecorder) RecordOutliers(variant model.VariantName, rows []model.Classified, folder, sourceFile string, createdAt time.Time) error {
	table, err := outlierTable(variant)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s
		(contract_symbol, symbol, option_type, strike, expiry_date,
		 signal_type, is_bullish, is_bearish, countable, amount_tier,
		 amount_threshold, amount_to_market_cap, oi_change, volume_change,
		 stock_change_pct, option_change_pct, last_price, market_cap,
		 folder_name, source_file, create_time)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(contract_symbol, folder_name, create_time) DO UPDATE SET
		 signal_type = excluded.signal_type,
		 is_bullish = excluded.is_bullish,
		 is_bearish = excluded.is_bearish,
		 countable = excluded.countable,
		 amount_tier = excluded.amount_tier,
		 amount_threshold = excluded.amount_threshold,
		 amount_to_market_cap = excluded.amount_to_market_cap,
		 oi_change = excluded.oi_change,
		 volume_change = excluded.volume_change,
		 stock_change_pct = excluded.stock_change_pct,
		 option_change_pct = excluded.option_change_pct,
		 last_price = excluded.last_price,
		 market_cap = excluded.market_cap,
		 source_file = excluded.source_file`, table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := createdAt.Unix()
	for i := range rows {
		c := &rows[i]
		if _, err := stmt.Exec(
			c.ContractSymbol, c.Symbol, string(c.Kind), c.Strike, c.ExpiryDate,
			c.Signal.Label, boolInt(c.Signal.Bullish), boolInt(c.Signal.Bearish),
			boolInt(c.Signal.Countable), string(c.Tier),
			c.Notional, c.AmountToMarketCap(), c.OIDelta, c.VolumeDelta,
			c.StockPriceChange*100, c.OptionPriceChange*100, c.PriceNew, c.MarketCap,
			folder, sourceFile, ts,
		); err != nil {
			return fmt.Errorf("insert outlier %s: %w", c.ContractSymbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// FileProcessed reports whether a source file was already consumed for the
// given variant, so a replayed cycle becomes a no-op.
func (r *SQLiteRecorder) FileProcessed(folder, filename string, variant model.VariantName) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM processed_files WHERE folder_name = ? AND csv_filename = ? AND file_type = ?`,
		folder, filename, string(variant),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query processed_files: %w", err)
	}
	return count > 0, nil
}

func (r *SQLiteRecorder) MarkFileProcessed(folder, filename string, variant model.VariantName, rowCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO processed_files
		(folder_name, csv_filename, file_type, row_count, processed_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(folder_name, csv_filename, file_type) DO UPDATE SET
		 row_count = excluded.row_count,
		 processed_at = excluded.processed_at`,
		folder, filename, string(variant), rowCount, time.Now().Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(cycle_id, symbol, side, shares, price, amount, gain, reason, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rec.CycleID, rec.Symbol, rec.Side, rec.Shares, rec.Price,
		rec.Amount, rec.Gain, rec.Reason, time.Now().Unix(),
	)
	return err
}

func (r *SQLiteRecorder) RecordAccount(cycleID string, cash, stock, total float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO account_history
		(cycle_id, cash, stock_value, total_value, created_at)
		VALUES (?,?,?,?,?)`,
		cycleID, cash, stock, total, time.Now().Unix(),
	)
	return err
}

// CleanupAfterHour deletes outlier rows created at or after the given local
// hour of their day. After-close rows carry stale intraday deltas.
func (r *SQLiteRecorder) CleanupAfterHour(variant model.VariantName, hour int) (int64, error) {
	table, err := outlierTable(variant)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(fmt.Sprintf(
		`DELETE FROM %s WHERE CAST(strftime('%%H', create_time, 'unixepoch', 'localtime') AS INTEGER) >= ?`, table),
		hour,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup %s: %w", table, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
