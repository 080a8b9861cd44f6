package watch

import (
	"context"
	"log"
	"time"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/notify"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/provider"
	"eth-token-sentry/internal/sched"
	"eth-token-sentry/internal/storage"
)

// DefaultInterval is the wallet-watch tick cadence.
const DefaultInterval = 60 * time.Second

// Options configures a Runner. Transfers, Subscribers, Cursors and Notifier
// are required; the rest default.
type Options struct {
	Transfers   provider.TransferSource
	Subscribers storage.SubscriberStore
	Cursors     storage.CursorStore
	Notifier    notify.Notifier

	Interval time.Duration
	Clock    sched.Clock
	Logger   *log.Logger
	Metrics  *observability.Metrics
}

// Runner is the wallet-watch loop. Each tick it snapshots the watch-list,
// fetches recent activity per watched address, and emits the strictly-newer
// events through the notifier. Per-address failures are logged and skipped;
// the loop only stops when its context is cancelled.
type Runner struct {
	transfers   provider.TransferSource
	subscribers storage.SubscriberStore
	diff        *Diff
	notifier    notify.Notifier

	interval time.Duration
	clock    sched.Clock
	logger   *log.Logger
	metrics  *observability.Metrics
}

// NewRunner creates a wallet-watch runner.
func NewRunner(opts Options) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = sched.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Runner{
		transfers:   opts.Transfers,
		subscribers: opts.Subscribers,
		diff:        NewDiff(opts.Cursors),
		notifier:    opts.Notifier,
		interval:    opts.Interval,
		clock:       opts.Clock,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Printf("wallet watch: running every %s", r.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			r.Tick(ctx)
		}
	}
}

// Tick performs one watch cycle. Exported so tests and callers can drive
// cycles without the ticker.
func (r *Runner) Tick(ctx context.Context) {
	subs := r.subscribers.Snapshot()
	if len(subs) == 0 {
		return
	}

	if r.metrics != nil {
		r.metrics.WatchTicks.Inc()
	}

	for _, sub := range subs {
		for _, address := range sub.Addresses {
			r.watchOne(ctx, sub.Subscriber, address)
		}
	}

	if r.metrics != nil {
		r.metrics.LastSuccessfulWatchTick.Set(float64(r.clock.Now().Unix()))
	}
}

func (r *Runner) watchOne(ctx context.Context, sub domain.SubscriberID, address string) {
	fresh, err := r.transfers.RecentTokenTransfers(ctx, address)
	if err != nil {
		r.logger.Printf("wallet watch: fetch for %s failed: %v", address, err)
		if r.metrics != nil {
			r.metrics.WalletFetchErrors.Inc()
		}
		return
	}

	events := r.diff.Advance(sub, address, fresh)
	for _, ev := range events {
		if err := r.notifier.WalletActivity(ctx, sub, address, ev); err != nil {
			r.logger.Printf("wallet watch: notify %d about %s failed: %v", sub, ev.Hash, err)
		}
		if r.metrics != nil {
			r.metrics.WalletEventsEmitted.Inc()
		}
	}
}
