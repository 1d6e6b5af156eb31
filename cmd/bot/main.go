package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradePilot/internal/advisor"
	"TradePilot/internal/broker"
	"TradePilot/internal/config"
	"TradePilot/internal/marketdata"
	"TradePilot/internal/model"
	"TradePilot/internal/notifier"
	"TradePilot/internal/recorder"
	"TradePilot/internal/scanner"
	"TradePilot/internal/trader"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TradePilot starting...")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

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

	// Init brokerage connection
	bk := broker.NewAlpacaBroker(cfg.Broker.APIKey, cfg.Broker.APISecret, cfg.Broker.Paper)
	mode := "live"
	if cfg.Broker.Paper {
		mode = "paper"
	}
	log.Printf("[INFO] brokerage: alpaca (%s)", mode)

	// Init market data cache
	cache := marketdata.NewCache(bk,
		time.Duration(cfg.Market.CacheTTLSeconds)*time.Second,
		[]string{cfg.Market.ShortPeriod, cfg.Market.LongPeriod},
		cfg.Market.BarLimit)

	// Init LLM advisor
	adv := advisor.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.Proxy)
	log.Printf("[INFO] advisor model: %s", cfg.LLM.Model)

	// Init trader
	sizer := trader.NewSizer()
	sizer.MinConfidence = cfg.Trading.ConfidenceThreshold
	sizer.MaxSymbolFraction = cfg.Trading.MaxSymbolFraction
	sizer.MaxSymbols = cfg.Trading.MaxSymbols
	tr := trader.New(sizer, bk, cfg.Trading.Enabled)
	if !cfg.Trading.Enabled {
		log.Println("[INFO] trading disabled, orders will be simulated")
	}

	// Init Telegram notifier
	var tn notifier.Notifier = notifier.NoopNotifier{}
	var tg *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tg = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, cfg.Proxy)
		tn = tg
	} else {
		log.Println("[WARN] no Telegram token, reports go to the log only")
	}

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

	// Init scanner
	wl := model.NewWatchList()
	if len(cfg.Scan.Symbols) > 0 {
		symbols := wl.Replace(cfg.Scan.Symbols)
		log.Printf("[INFO] initial watch list: %v", symbols)
	}
	sc := scanner.New(ctx, cache, adv, tr, tn, rec, wl, bk, bk,
		cfg.Market.ShortPeriod, cfg.Market.LongPeriod)
	if err := sc.Register(cfg.Scan.Cron); err != nil {
		log.Fatalf("[FATAL] register scan task: %v", err)
	}
	sc.Start()
	defer sc.Stop()

	// Start Telegram polling
	if tg != nil {
		go tg.StartPolling(ctx, sc.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scanning now")
		go sc.ScanAll(ctx)
	}

	log.Println("[INFO] TradePilot is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TradePilot stopped")
}
