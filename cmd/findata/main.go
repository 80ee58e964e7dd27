package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"findata/internal/api"
	"findata/internal/cache"
	"findata/internal/collector"
	"findata/internal/config"
	"findata/internal/market"
	"findata/internal/metrics"
	"findata/internal/notifier"
	"findata/internal/ratelimit"
	"findata/internal/scheduler"
	"findata/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] FinData starting...")

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

	// Init store
	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Init sources
	primaryEnabled := cfg.PrimaryEnabled()
	av := collector.NewAlphaVantage(cfg.AlphaVantage.BaseURL, cfg.AlphaVantage.APIKey, cfg.Proxy,
		ratelimit.NewCooldown(cfg.Cooldown()))
	yahoo := collector.NewYahoo(cfg.Yahoo.BaseURL, cfg.Yahoo.Suffix, cfg.Proxy)
	resolver := collector.NewResolver(av, collector.NewStoreAdapter(cfg.Database.SQLitePath), yahoo, primaryEnabled, m)
	if primaryEnabled {
		log.Printf("[INFO] primary API enabled (cooldown %v)", cfg.Cooldown())
	} else {
		log.Println("[WARN] primary API key not set, using persisted store and free API only")
	}

	// Init cache
	var (
		seriesCache cache.Cache
		rdb         *goredis.Client
	)
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedis(cfg.Cache.RedisAddr, cfg.CacheTTL())
		defer rc.Close()
		seriesCache, rdb = rc, rc.Client
		log.Printf("[INFO] series cache: redis %s", cfg.Cache.RedisAddr)
	} else {
		seriesCache = cache.NewMemory(cfg.CacheTTL(), cfg.Cache.MaxItems)
		log.Println("[INFO] series cache: in-memory")
	}

	var profiles market.ProfileSource
	if primaryEnabled {
		profiles = av
	}
	svc := market.NewService(resolver, seriesCache, st, profiles, m)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := metrics.NewHealthStatus(primaryEnabled)
	health.StartLivenessChecker(ctx, rdb, st.DB(), 30*time.Second)

	// Init scheduler
	var n scheduler.Notifier
	if cfg.NotifyEnabled() {
		n = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		log.Println("[INFO] Telegram ingest reports enabled")
	}
	ingestResolver := collector.NewIngestResolver(av, yahoo, primaryEnabled, m)
	sched := scheduler.NewScheduler(ctx, ingestResolver, st, n, m, cfg.Schedule.IngestLookbackDays)
	if err := sched.Register(cfg.Schedule.IngestCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing ingest task now")
		go sched.RunIngestNow()
	}

	srv := api.NewHTTPServer(cfg.Server.ListenAddr, api.NewServer(svc, health, m).Handler())
	go func() {
		log.Printf("[INFO] FinData listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] FinData stopped")
}
