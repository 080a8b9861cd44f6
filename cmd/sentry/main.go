// Package main runs the sentry daemon: the wallet-watch loop, the
// token-discovery/classification loop, the budget resetter, the telegram
// front-end, and the HTTP surface (/metrics, /health, websocket feed).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"eth-token-sentry/internal/budget"
	"eth-token-sentry/internal/classify"
	"eth-token-sentry/internal/config"
	"eth-token-sentry/internal/discovery"
	"eth-token-sentry/internal/notify"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/provider"
	"eth-token-sentry/internal/storage/memory"
	"eth-token-sentry/internal/storage/migrations"
	pgstore "eth-token-sentry/internal/storage/postgres"
	"eth-token-sentry/internal/telegram"
	"eth-token-sentry/internal/watch"
)

func main() {
	logger := log.New(os.Stdout, "[sentry] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.Println(cfg.RedactedSummary())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	metrics := observability.NewMetrics("")
	tracker := budget.NewTracker(budget.Options{Logger: logger})

	// Provider clients, all charging the shared quota tracker.
	var etherscanOpts []provider.EtherscanOption
	etherscanOpts = append(etherscanOpts, provider.WithEtherscanBudget(tracker))
	if cfg.EtherscanURL != "" {
		etherscanOpts = append(etherscanOpts, provider.WithEtherscanBaseURL(cfg.EtherscanURL))
	}
	etherscan := provider.NewEtherscan(cfg.EtherscanAPIKey, etherscanOpts...)

	var honeypotOpts []provider.HoneypotOption
	honeypotOpts = append(honeypotOpts, provider.WithHoneypotBudget(tracker))
	if cfg.HoneypotURL != "" {
		honeypotOpts = append(honeypotOpts, provider.WithHoneypotBaseURL(cfg.HoneypotURL))
	}
	honeypot := provider.NewHoneypot(honeypotOpts...)

	var chainbaseOpts []provider.ChainbaseOption
	chainbaseOpts = append(chainbaseOpts, provider.WithChainbaseBudget(tracker))
	if cfg.ChainbaseURL != "" {
		chainbaseOpts = append(chainbaseOpts, provider.WithChainbaseBaseURL(cfg.ChainbaseURL))
	}
	chainbase := provider.NewChainbase(cfg.ChainbaseAPIKey, chainbaseOpts...)

	var alchemyOpts []provider.AlchemyOption
	alchemyOpts = append(alchemyOpts, provider.WithAlchemyBudget(tracker))
	if cfg.AlchemyURL != "" {
		alchemyOpts = append(alchemyOpts, provider.WithAlchemyBaseURL(cfg.AlchemyURL))
	}
	alchemy := provider.NewAlchemy(cfg.AlchemyAPIKey, alchemyOpts...)

	// Shared in-memory state.
	subscribers := memory.NewSubscriberStore()
	cursors := memory.NewCursorStore()

	// Front-end and alert fanout.
	handler, err := telegram.New(cfg.TelegramBotToken, telegram.Options{
		Subscribers: subscribers,
		Node:        alchemy,
		Prices:      etherscan,
		Budget:      tracker,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		logger.Fatalf("telegram: %v", err)
	}
	feed := notify.NewFeed(logger)
	notifier := notify.Multi{handler, feed}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("postgres migrations: %v", err)
		}
		notifier = append(notifier, notify.NewJournal(pgstore.NewAlertJournal(pool)))
		logger.Println("alert journal: postgres")
	} else {
		notifier = append(notifier, notify.NewJournal(memory.NewAlertJournal()))
		logger.Println("alert journal: in-memory")
	}

	// Monitoring loops.
	runner := watch.NewRunner(watch.Options{
		Transfers:   etherscan,
		Subscribers: subscribers,
		Cursors:     cursors,
		Notifier:    notifier,
		Interval:    cfg.WatchInterval,
		Logger:      logger,
		Metrics:     metrics,
	})
	scanner := discovery.NewScanner(discovery.ScannerOptions{
		Internal:   etherscan,
		Meta:       honeypot,
		Creations:  etherscan,
		Factory:    cfg.FactoryAddress,
		FetchCount: cfg.FetchCount,
		Logger:     logger,
		Metrics:    metrics,
	})
	classifier := classify.NewClassifier(classify.Options{
		Meta:      honeypot,
		Holders:   chainbase,
		NormalTxs: etherscan,
		Logger:    logger,
		Metrics:   metrics,
	})
	loop := discovery.NewLoop(discovery.LoopOptions{
		Scanner:     scanner,
		Classifier:  classifier,
		Subscribers: subscribers,
		Notifier:    notifier,
		Interval:    cfg.DiscoveryInterval,
		Logger:      logger,
		Metrics:     metrics,
	})

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.HTTPPort),
		Handler: newMux(feed),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return runner.Run(gctx) })
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return tracker.Run(gctx) })
	g.Go(func() error { return handler.Run(gctx) })
	g.Go(func() error { return mirrorBudgetGauge(gctx, tracker, metrics) })
	g.Go(func() error {
		logger.Printf("http: listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Println("started; awaiting commands")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("shutdown error: %v", err)
	}
	logger.Println("shutdown complete")
}

func newMux(feed *notify.Feed) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.Handle("/feed", feed)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":           "ok",
			"feed_subscribers": feed.ConnCount(),
		})
	})
	return mux
}

// mirrorBudgetGauge keeps the quota gauge in step with the tracker.
func mirrorBudgetGauge(ctx context.Context, tracker *budget.Tracker, metrics *observability.Metrics) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.BudgetUnitsUsed.Set(float64(tracker.Used()))
		}
	}
}
