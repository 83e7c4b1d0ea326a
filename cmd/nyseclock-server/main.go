package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"nyseclock/internal/api"
	"nyseclock/internal/config"
	"nyseclock/internal/holidays"
	"nyseclock/internal/market"
	"nyseclock/internal/store"
	"nyseclock/internal/util"
	"nyseclock/internal/watch"
)

func main() {
	cfgPath := "config/nyseclock.yaml"
	if p := os.Getenv("NYSECLOCK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := holidays.NewSource(cfg.Holidays)
	if err != nil {
		log.Fatalf("creating holiday source: %v", err)
	}
	cal := market.NewHolidayCalendar(market.CalendarConfig{
		Source:  src,
		Timeout: cfg.Holidays.Timeout,
		Logger:  logger,
	})
	engine := market.NewEngine(cal, nil, cfg.Session.Lookahead, logger)

	// A failed load leaves the engine running on weekends only.
	err = util.Retry(ctx, cfg.Holidays.RetryAttempts, cfg.Holidays.RetryDelay, func() error {
		return engine.Populate(ctx)
	})
	if err != nil {
		logger.Warn("holiday data unavailable, continuing in degraded mode", "error", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
		log.Fatalf("creating storage dir: %v", err)
	}
	journal, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening transition journal: %v", err)
	}
	defer journal.Close()

	hub := api.NewHub(logger)
	watcher := watch.New(engine, watch.Config{
		Interval: cfg.Session.PollInterval,
		Journal:  journal,
		Logger:   logger,
	}, hub)
	srv := api.NewServer(cfg, engine, journal, hub, logger)

	logger.Info("nyseclock-server starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"grpc_port", cfg.Server.GRPCPort,
		"holiday_source", cfg.Holidays.Source,
		"calendar", cal.State(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("nyseclock-server stopped")
}
