package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Folder string `yaml:"folder"`
	} `yaml:"data"`
	Discord struct {
		WebhookURL string `yaml:"webhook_url"`
	} `yaml:"discord"`
	Scan struct {
		OIMinNotional         float64 `yaml:"oi_min_notional"`
		VolumeMinNotional     float64 `yaml:"volume_min_notional"`
		StockChangeThreshold  float64 `yaml:"stock_change_threshold"`
		OptionChangeThreshold float64 `yaml:"option_change_threshold"`
		SignificantOIDelta    float64 `yaml:"significant_oi_delta"`
		MinVolume             float64 `yaml:"min_volume"`
		MinVolumeIncreasePct  float64 `yaml:"min_volume_increase_pct"`
		MarketCapRatio        float64 `yaml:"market_cap_ratio"`
	} `yaml:"scan"`
	Trade struct {
		InitialCash        float64 `yaml:"initial_cash"`
		BuyRatio           float64 `yaml:"buy_ratio"`
		HoldHoursLimit     float64 `yaml:"hold_hours_limit"`
		FileTimeoutMinutes int     `yaml:"file_timeout_minutes"`
		BearishSellCutoff  int     `yaml:"bearish_sell_cutoff"`
		StateFile          string  `yaml:"state_file"`
	} `yaml:"trade"`
	Schedule struct {
		ScanCron    string `yaml:"scan_cron"`
		TradeCron   string `yaml:"trade_cron"`
		CleanupCron string `yaml:"cleanup_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_FOLDER"); v != "" {
		cfg.Data.Folder = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Discord.WebhookURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("INITIAL_CASH"); v != "" {
		if cash, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trade.InitialCash = cash
		}
	}
	if v := os.Getenv("BUY_RATIO"); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trade.BuyRatio = ratio
		}
	}
	if v := os.Getenv("CRON_SCAN"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("CRON_TRADE"); v != "" {
		cfg.Schedule.TradeCron = v
	}

	// Defaults
	if cfg.Data.Folder == "" {
		cfg.Data.Folder = "data"
	}
	if cfg.Scan.OIMinNotional == 0 {
		cfg.Scan.OIMinNotional = 5_000_000
	}
	if cfg.Scan.VolumeMinNotional == 0 {
		cfg.Scan.VolumeMinNotional = 2_000_000
	}
	if cfg.Scan.StockChangeThreshold == 0 {
		cfg.Scan.StockChangeThreshold = 0.01
	}
	if cfg.Scan.OptionChangeThreshold == 0 {
		cfg.Scan.OptionChangeThreshold = 0.05
	}
	if cfg.Scan.SignificantOIDelta == 0 {
		cfg.Scan.SignificantOIDelta = 1000
	}
	if cfg.Scan.MinVolume == 0 {
		cfg.Scan.MinVolume = 3000
	}
	if cfg.Scan.MinVolumeIncreasePct == 0 {
		cfg.Scan.MinVolumeIncreasePct = 0.30
	}
	if cfg.Scan.MarketCapRatio == 0 {
		cfg.Scan.MarketCapRatio = 0.00001 // 0.001%
	}
	if cfg.Trade.InitialCash == 0 {
		cfg.Trade.InitialCash = 100_000
	}
	if cfg.Trade.BuyRatio == 0 {
		cfg.Trade.BuyRatio = 0.10
	}
	if cfg.Trade.HoldHoursLimit == 0 {
		cfg.Trade.HoldHoursLimit = 24
	}
	if cfg.Trade.FileTimeoutMinutes == 0 {
		cfg.Trade.FileTimeoutMinutes = 20
	}
	if cfg.Trade.BearishSellCutoff == 0 {
		cfg.Trade.BearishSellCutoff = 3
	}
	if cfg.Trade.StateFile == "" {
		cfg.Trade.StateFile = filepath.Join(cfg.Data.Folder, "trade_state.json")
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 */30 6-13 * * 1-5"
	}
	if cfg.Schedule.TradeCron == "" {
		cfg.Schedule.TradeCron = "0 15/30 6-13 * * 1-5"
	}
	if cfg.Schedule.CleanupCron == "" {
		cfg.Schedule.CleanupCron = "0 5 15 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = filepath.Join(cfg.Data.Folder, "option_sentinel.db")
	}

	return cfg, nil
}

// Validate checks that all required fields are set and sane.
func (c *Config) Validate() error {
	if c.Discord.WebhookURL == "" {
		return fmt.Errorf("discord.webhook_url is required")
	}
	if c.Trade.InitialCash <= 0 {
		return fmt.Errorf("trade.initial_cash must be positive")
	}
	if c.Trade.BuyRatio <= 0 || c.Trade.BuyRatio > 1 {
		return fmt.Errorf("trade.buy_ratio must be in (0, 1]")
	}
	if c.Trade.HoldHoursLimit <= 0 {
		return fmt.Errorf("trade.hold_hours_limit must be positive")
	}
	if c.Scan.OIMinNotional <= 0 || c.Scan.VolumeMinNotional <= 0 {
		return fmt.Errorf("scan notional minimums must be positive")
	}
	return nil
}

// OptionDir is where option-chain snapshots live (all-YYYYMMDD-HHMM.csv).
func (c *Config) OptionDir() string { return filepath.Join(c.Data.Folder, "option_data") }

// StockPriceDir is where stock-price snapshots live, named to pair with option snapshots.
func (c *Config) StockPriceDir() string { return filepath.Join(c.Data.Folder, "stock_price") }

// OutlierDir is where classified OI outlier CSVs are written.
func (c *Config) OutlierDir() string { return filepath.Join(c.Data.Folder, "outlier") }

// VolumeOutlierDir is where classified volume outlier CSVs are written.
func (c *Config) VolumeOutlierDir() string { return filepath.Join(c.Data.Folder, "volume_outlier") }

// MarketCapFile is the optional market-capitalization table.
func (c *Config) MarketCapFile() string {
	return filepath.Join(c.Data.Folder, "stock_symbol", "symbol_market.csv")
}
