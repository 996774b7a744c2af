package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"OptionSentinel/internal/config"
	"OptionSentinel/internal/model"
	"OptionSentinel/internal/notifier"
	"OptionSentinel/internal/outlier"
	"OptionSentinel/internal/recorder"
	"OptionSentinel/internal/snapshot"
	"OptionSentinel/internal/trader"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Cfg      *config.Config
	Trader   *trader.Manager
	Notifier *notifier.DiscordNotifier
	Recorder recorder.Recorder
	Ctx      context.Context

	oiEngine  *outlier.Engine
	volEngine *outlier.Engine
}

// NewScheduler creates a new Scheduler with both scan engines wired up.
func NewScheduler(ctx context.Context, cfg *config.Config, tm *trader.Manager, dn *notifier.DiscordNotifier, rec recorder.Recorder) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Cfg:       cfg,
		Trader:    tm,
		Notifier:  dn,
		Recorder:  rec,
		Ctx:       ctx,
		oiEngine:  outlier.NewEngine(outlier.OIVariant(cfg)),
		volEngine: outlier.NewEngine(outlier.VolumeVariant(cfg)),
	}
}

// RegisterAll registers the scan, trade, and cleanup tasks.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.Cfg.Schedule.ScanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(s.Cfg.Schedule.TradeCron, s.tradeTask); err != nil {
		return fmt.Errorf("register trade task: %w", err)
	}
	if _, err := s.Cron.AddFunc(s.Cfg.Schedule.CleanupCron, s.cleanupTask); err != nil {
		return fmt.Errorf("register cleanup task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes the scan task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

// RunTradeNow executes the trade task immediately.
func (s *Scheduler) RunTradeNow() {
	s.tradeTask()
}

func (s *Scheduler) scanTask() {
	log.Println("[INFO] running scan task")
	pair, err := snapshot.FindLatestPair(s.Cfg.OptionDir(), s.Cfg.StockPriceDir())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotEnoughSnapshots) {
			log.Println("[INFO] fewer than two option snapshots, skipping scan")
			return
		}
		log.Printf("[ERROR] find snapshot pair: %v", err)
		s.trySend(fmt.Sprintf("❌ 扫描失败，快照配对错误: %v", err))
		return
	}

	folder := pair.LatestTS.Format("20060102")
	filename := filepath.Base(pair.LatestOption)

	oiDone, err := s.Recorder.FileProcessed(folder, filename, model.VariantOI)
	if err != nil {
		log.Printf("[ERROR] check processed (oi): %v", err)
	}
	volDone, err := s.Recorder.FileProcessed(folder, filename, model.VariantVolume)
	if err != nil {
		log.Printf("[ERROR] check processed (volume): %v", err)
	}
	if oiDone && volDone {
		log.Printf("[INFO] snapshot %s already processed, skipping", filename)
		return
	}

	latestOpt, prevOpt, latestStock, prevStock, err := pair.Load()
	if err != nil {
		log.Printf("[ERROR] load snapshots: %v", err)
		s.trySend(fmt.Sprintf("❌ 扫描失败，快照读取错误: %v", err))
		return
	}
	caps := snapshot.LoadMarketCap(s.Cfg.MarketCapFile())

	type job struct {
		engine *outlier.Engine
		dir    string
		done   bool
	}
	jobs := []job{
		{s.oiEngine, s.Cfg.OutlierDir(), oiDone},
		{s.volEngine, s.Cfg.VolumeOutlierDir(), volDone},
	}
	for _, j := range jobs {
		if j.done {
			continue
		}
		variant := j.engine.Variant.Name
		rows := j.engine.Compute(latestOpt, prevOpt, latestStock, prevStock, caps)

		if _, err := snapshot.SaveOutliers(j.dir, rows, pair.LatestTS); err != nil {
			log.Printf("[ERROR] save %s outliers: %v", variant, err)
			continue
		}
		if err := s.Recorder.RecordOutliers(variant, rows, folder, filename, pair.LatestTS); err != nil {
			log.Printf("[ERROR] record %s outliers: %v", variant, err)
		}
		if err := s.Recorder.MarkFileProcessed(folder, filename, variant, len(rows)); err != nil {
			log.Printf("[ERROR] mark processed (%s): %v", variant, err)
		}

		report := notifier.FormatScanReport(variant, rows, pair.TimeRange())
		if tally := notifier.FormatSymbolTally(trader.CountSignals(rows)); tally != "" {
			report += "\n" + tally
		}
		s.trySend(report)
	}
}

func (s *Scheduler) tradeTask() {
	log.Println("[INFO] running trade task")
	now := time.Now()
	timeout := time.Duration(s.Cfg.Trade.FileTimeoutMinutes) * time.Minute

	loadFresh := func(dir string, variant model.VariantName) []model.Classified {
		path, ts, ok := snapshot.FindLatestOutlier(dir)
		if !ok {
			log.Printf("[WARN] no %s outlier file found", variant)
			return nil
		}
		if now.Sub(ts) > timeout {
			log.Printf("[WARN] %s outlier file %s is stale (%.0f min), ignoring",
				variant, filepath.Base(path), now.Sub(ts).Minutes())
			return nil
		}
		rows, err := snapshot.LoadOutliers(path)
		if err != nil {
			log.Printf("[ERROR] load %s outliers: %v", variant, err)
			return nil
		}
		return rows
	}

	oiRows := loadFresh(s.Cfg.OutlierDir(), model.VariantOI)
	volRows := loadFresh(s.Cfg.VolumeOutlierDir(), model.VariantVolume)
	if oiRows == nil && volRows == nil {
		log.Println("[INFO] no fresh outlier data, skipping trade cycle")
		return
	}

	cycleID := uuid.NewString()
	signals := trader.CountSignals(oiRows, volRows)
	rep := s.Trader.RunCycle(s.Ctx, signals, now)

	for _, actions := range [][]trader.Action{rep.Sells, rep.Buys} {
		for _, a := range actions {
			if err := s.Recorder.RecordTrade(&recorder.TradeRecord{
				CycleID: cycleID,
				Symbol:  a.Symbol,
				Side:    a.Side,
				Shares:  a.Shares,
				Price:   a.Price,
				Amount:  a.Amount,
				Gain:    a.Gain,
				Reason:  a.Reason,
			}); err != nil {
				log.Printf("[ERROR] record trade: %v", err)
			}
		}
	}
	if err := s.Recorder.RecordAccount(cycleID, rep.Cash, rep.StockValue, rep.TotalValue); err != nil {
		log.Printf("[ERROR] record account: %v", err)
	}

	if len(rep.Sells) > 0 || len(rep.Buys) > 0 {
		state := s.Trader.GetState()
		s.trySend(notifier.FormatTradeReport(rep) + "\n" + notifier.FormatAccountStatus(&state))
	}
}

// cleanupHour removes rows written at or after this local hour; late-session
// churn is noise for next-morning review.
const cleanupHour = 15

func (s *Scheduler) cleanupTask() {
	log.Println("[INFO] running cleanup task")
	for _, variant := range []model.VariantName{model.VariantOI, model.VariantVolume} {
		n, err := s.Recorder.CleanupAfterHour(variant, cleanupHour)
		if err != nil {
			log.Printf("[ERROR] cleanup %s: %v", variant, err)
			continue
		}
		log.Printf("[INFO] cleanup %s: %d rows removed", variant, n)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
