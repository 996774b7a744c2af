package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_FOLDER", "DISCORD_WEBHOOK_URL", "HTTPS_PROXY", "SQLITE_PATH",
		"INITIAL_CASH", "BUY_RATIO", "CRON_SCAN", "CRON_TRADE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.OIMinNotional != 5_000_000 {
		t.Errorf("oi min notional = %.0f", cfg.Scan.OIMinNotional)
	}
	if cfg.Scan.VolumeMinNotional != 2_000_000 {
		t.Errorf("volume min notional = %.0f", cfg.Scan.VolumeMinNotional)
	}
	if cfg.Scan.StockChangeThreshold != 0.01 || cfg.Scan.OptionChangeThreshold != 0.05 {
		t.Errorf("thresholds = %v / %v", cfg.Scan.StockChangeThreshold, cfg.Scan.OptionChangeThreshold)
	}
	if cfg.Trade.InitialCash != 100_000 || cfg.Trade.BuyRatio != 0.10 {
		t.Errorf("trade defaults = %v / %v", cfg.Trade.InitialCash, cfg.Trade.BuyRatio)
	}
	if cfg.Trade.BearishSellCutoff != 3 {
		t.Errorf("bearish cutoff = %d", cfg.Trade.BearishSellCutoff)
	}
	if cfg.OptionDir() != filepath.Join("data", "option_data") {
		t.Errorf("option dir = %s", cfg.OptionDir())
	}
	if cfg.MarketCapFile() != filepath.Join("data", "stock_symbol", "symbol_market.csv") {
		t.Errorf("market cap file = %s", cfg.MarketCapFile())
	}
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data:
  folder: /srv/market
discord:
  webhook_url: https://discord.com/api/webhooks/x/y
trade:
  initial_cash: 250000
scan:
  oi_min_notional: 8000000
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("INITIAL_CASH", "500000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Folder != "/srv/market" {
		t.Errorf("folder = %s", cfg.Data.Folder)
	}
	if cfg.Scan.OIMinNotional != 8_000_000 {
		t.Errorf("oi min notional = %.0f", cfg.Scan.OIMinNotional)
	}
	// Env wins over the file.
	if cfg.Trade.InitialCash != 500_000 {
		t.Errorf("initial cash = %.0f", cfg.Trade.InitialCash)
	}
	// Untouched values still get defaults.
	if cfg.Trade.StateFile != filepath.Join("/srv/market", "trade_state.json") {
		t.Errorf("state file = %s", cfg.Trade.StateFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		cfg.Discord.WebhookURL = "https://discord.com/api/webhooks/x/y"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg := base()
	cfg.Discord.WebhookURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing webhook accepted")
	}

	cfg = base()
	cfg.Trade.BuyRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("buy ratio above 1 accepted")
	}

	cfg = base()
	cfg.Trade.InitialCash = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative initial cash accepted")
	}
}
