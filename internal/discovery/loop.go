package discovery

import (
	"context"
	"log"
	"time"

	"eth-token-sentry/internal/classify"
	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/notify"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/sched"
	"eth-token-sentry/internal/storage"
)

// DefaultInterval is the discovery/classification tick cadence.
const DefaultInterval = 60 * time.Second

// LoopOptions configures a Loop. Scanner, Classifier, Subscribers and
// Notifier are required.
type LoopOptions struct {
	Scanner     *Scanner
	Classifier  *classify.Classifier
	Subscribers storage.SubscriberStore
	Notifier    notify.Notifier

	Interval time.Duration
	Clock    sched.Clock
	Logger   *log.Logger
	Metrics  *observability.Metrics
}

// Loop owns the retained candidate set. Each tick it appends newly scanned
// candidates, re-evaluates every retained one, alerts auto-snipe subscribers
// for each buy verdict, and drops candidates that reached a terminal
// outcome. A buy verdict is terminal: the candidate is removed after its one
// notification round so the alert cannot re-fire.
type Loop struct {
	scanner     *Scanner
	classifier  *classify.Classifier
	subscribers storage.SubscriberStore
	notifier    notify.Notifier

	interval time.Duration
	clock    sched.Clock
	logger   *log.Logger
	metrics  *observability.Metrics

	retained []*domain.PairCandidate
}

// NewLoop creates the discovery/classification loop.
func NewLoop(opts LoopOptions) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = sched.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Loop{
		scanner:     opts.Scanner,
		classifier:  opts.Classifier,
		subscribers: opts.Subscribers,
		notifier:    opts.Notifier,
		interval:    opts.Interval,
		clock:       opts.Clock,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Printf("discovery: running every %s", l.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			l.Tick(ctx)
		}
	}
}

// Retained returns how many candidates currently await a terminal outcome.
func (l *Loop) Retained() int {
	return len(l.retained)
}

// Tick performs one discovery + classification cycle.
func (l *Loop) Tick(ctx context.Context) {
	l.retained = append(l.retained, l.scanner.Scan(ctx)...)

	kept := l.retained[:0]
	for _, cand := range l.retained {
		outcome, meta := l.classifier.Evaluate(ctx, cand)
		switch outcome {
		case domain.OutcomePending:
			kept = append(kept, cand)
		case domain.OutcomeBuy:
			l.logger.Printf("discovery: %s classified as buy", cand.PairAddress)
			l.countOutcome(outcome)
			l.alertSnipers(ctx, cand, meta)
		case domain.OutcomeRejected:
			l.logger.Printf("discovery: %s rejected as honeypot", cand.PairAddress)
			l.countOutcome(outcome)
		case domain.OutcomeExpired:
			l.logger.Printf("discovery: %s expired unrenounced", cand.PairAddress)
			l.countOutcome(outcome)
		}
	}
	l.retained = kept

	if l.metrics != nil {
		l.metrics.CandidatesRetained.Set(float64(len(l.retained)))
		l.metrics.LastSuccessfulDiscoveryTick.Set(float64(l.clock.Now().Unix()))
	}
}

// alertSnipers delivers one buy alert to every subscriber with auto-snipe
// enabled. No snipers means the verdict is still consumed silently.
func (l *Loop) alertSnipers(ctx context.Context, cand *domain.PairCandidate, meta *domain.TokenMeta) {
	for _, sub := range l.subscribers.Snipers() {
		if err := l.notifier.BuyCandidate(ctx, sub, *cand, meta); err != nil {
			l.logger.Printf("discovery: buy alert to %d failed: %v", sub, err)
		}
	}
}

func (l *Loop) countOutcome(outcome domain.Outcome) {
	if l.metrics != nil {
		l.metrics.CandidatesClassified.WithLabelValues(outcome.String()).Inc()
	}
}
