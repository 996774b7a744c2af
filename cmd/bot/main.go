package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OptionSentinel/internal/collector"
	"OptionSentinel/internal/config"
	"OptionSentinel/internal/notifier"
	"OptionSentinel/internal/recorder"
	"OptionSentinel/internal/scheduler"
	"OptionSentinel/internal/trader"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] OptionSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init quote fetcher
	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	log.Printf("[INFO] quote source: %s", fetcher.Name())

	// Init trade manager
	tm, err := trader.NewManager(cfg.Trade.StateFile, cfg.Trade.InitialCash, fetcher, trader.Params{
		BuyRatio:          cfg.Trade.BuyRatio,
		HoldLimit:         time.Duration(cfg.Trade.HoldHoursLimit * float64(time.Hour)),
		BearishSellCutoff: cfg.Trade.BearishSellCutoff,
		FetchWorkers:      4,
	})
	if err != nil {
		log.Fatalf("[FATAL] init trade manager: %v", err)
	}

	// Init Discord notifier
	dn := notifier.NewDiscordNotifier(cfg.Discord.WebhookURL, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cfg, tm, dn, rec)
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan task now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] OptionSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] OptionSentinel stopped")
}
