// Package classify runs the per-candidate risk checks and reduces them to a
// buy, reject, expire, or still-pending decision.
package classify

import (
	"context"
	"log"
	"strings"
	"time"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/provider"
	"eth-token-sentry/internal/sched"
)

// DefaultTTL is how long a candidate may stay unrenounced before it expires.
const DefaultTTL = 2 * time.Hour

// DefaultLockers are the known liquidity locker and burn addresses. A top
// holder matching one of these counts as locked/burned liquidity.
var DefaultLockers = []string{
	"0x663a5c229c09b049e36dcc11a9b0d4a8eb9db214", // UNCX
	"0xe2fe530c047f2d85298b07d9333c05737f1435fb", // Team Finance
	"0x71b5759d73262fbb223956913ecf4ecc51057641", // PinkLock
	"0x000000000000000000000000000000000000dead",
	"0x0000000000000000000000000000000000000000",
}

// Taxes above this percentage mark a token as a honeypot even when the
// simulation itself passes.
const maxTaxPercent = 5.0

// Options configures a Classifier. Meta, Holders and NormalTxs are required.
type Options struct {
	Meta      provider.TokenMetaResolver
	Holders   provider.TopHolderSource
	NormalTxs provider.NormalTxSource

	Lockers []string
	TTL     time.Duration
	Clock   sched.Clock
	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Classifier evaluates retained candidates. Each call runs the three
// independent checks (honeypot, liquidity lock, ownership renouncement) and
// folds the tri-state results into an outcome.
type Classifier struct {
	meta      provider.TokenMetaResolver
	holders   provider.TopHolderSource
	normalTxs provider.NormalTxSource

	lockers map[string]struct{}
	ttl     time.Duration
	clock   sched.Clock
	logger  *log.Logger
	metrics *observability.Metrics
}

// NewClassifier creates a classifier.
func NewClassifier(opts Options) *Classifier {
	if len(opts.Lockers) == 0 {
		opts.Lockers = DefaultLockers
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = sched.Real()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	lockers := make(map[string]struct{}, len(opts.Lockers))
	for _, addr := range opts.Lockers {
		lockers[strings.ToLower(addr)] = struct{}{}
	}
	return &Classifier{
		meta:      opts.Meta,
		holders:   opts.Holders,
		normalTxs: opts.NormalTxs,
		lockers:   lockers,
		ttl:       opts.TTL,
		clock:     opts.Clock,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Evaluate refreshes the candidate's check results and returns its outcome
// plus the resolved token metadata (nil when the lookup was degraded). The
// candidate's check fields and ToBuy flag are updated in place; removal on a
// terminal outcome is the caller's responsibility.
func (c *Classifier) Evaluate(ctx context.Context, cand *domain.PairCandidate) (domain.Outcome, *domain.TokenMeta) {
	meta := c.checkHoneypot(ctx, cand)
	c.checkLiquidity(ctx, cand)
	c.checkRenouncement(ctx, cand)

	outcome := c.reduce(cand)
	if outcome == domain.OutcomeBuy {
		cand.ToBuy = true
	}
	return outcome, meta
}

// checkHoneypot resolves the simulation verdict for the pair. As a side
// effect it backfills the candidate's underlying contract address when the
// discovery-time lookup failed.
func (c *Classifier) checkHoneypot(ctx context.Context, cand *domain.PairCandidate) *domain.TokenMeta {
	meta, err := c.meta.TokenMeta(ctx, cand.PairAddress)
	if err != nil {
		c.logger.Printf("classify: honeypot lookup for %s failed: %v", cand.PairAddress, err)
		c.countCheckFailure("honeypot")
		cand.Honeypot = domain.CheckUnknown
		return nil
	}

	if cand.ContractAddress == "" && meta.TokenAddress != "" {
		cand.ContractAddress = meta.TokenAddress
	}

	if meta.IsHoneypot || meta.BuyTax > maxTaxPercent || meta.SellTax > maxTaxPercent {
		cand.Honeypot = domain.CheckTrue
	} else {
		cand.Honeypot = domain.CheckFalse
	}
	return meta
}

// checkLiquidity marks liquidity locked when any top holder of the
// underlying contract is a known locker or burn address.
func (c *Classifier) checkLiquidity(ctx context.Context, cand *domain.PairCandidate) {
	if cand.ContractAddress == "" {
		cand.LiquidityLocked = domain.CheckUnknown
		return
	}

	holders, err := c.holders.TopHolders(ctx, cand.ContractAddress)
	if err != nil {
		c.logger.Printf("classify: holder lookup for %s failed: %v", cand.ContractAddress, err)
		c.countCheckFailure("liquidity")
		cand.LiquidityLocked = domain.CheckUnknown
		return
	}

	cand.LiquidityLocked = domain.CheckFalse
	for _, h := range holders {
		if _, ok := c.lockers[strings.ToLower(h)]; ok {
			cand.LiquidityLocked = domain.CheckTrue
			return
		}
	}
}

// checkRenouncement scans the creator's recent normal transactions for a
// renounceOwnership call.
func (c *Classifier) checkRenouncement(ctx context.Context, cand *domain.PairCandidate) {
	if cand.Creator == "" {
		cand.Renounced = domain.CheckUnknown
		return
	}

	txs, err := c.normalTxs.NormalTxs(ctx, cand.Creator)
	if err != nil {
		c.logger.Printf("classify: tx scan for creator %s failed: %v", cand.Creator, err)
		c.countCheckFailure("renouncement")
		cand.Renounced = domain.CheckUnknown
		return
	}

	cand.Renounced = domain.CheckFalse
	for _, tx := range txs {
		if strings.Contains(tx.FunctionName, "renounceOwnership") {
			cand.Renounced = domain.CheckTrue
			return
		}
	}
}

// reduce folds the check results into an outcome, in priority order: an
// unrenounced candidate only expires or waits; a renounced honeypot is
// rejected; renounced plus locked liquidity is a buy; everything else keeps
// pending until the TTL fires.
func (c *Classifier) reduce(cand *domain.PairCandidate) domain.Outcome {
	if cand.Renounced != domain.CheckTrue {
		if c.age(cand) > c.ttl {
			return domain.OutcomeExpired
		}
		return domain.OutcomePending
	}
	if cand.Honeypot == domain.CheckTrue {
		return domain.OutcomeRejected
	}
	if cand.LiquidityLocked == domain.CheckTrue {
		return domain.OutcomeBuy
	}
	if c.age(cand) > c.ttl {
		return domain.OutcomeExpired
	}
	return domain.OutcomePending
}

func (c *Classifier) age(cand *domain.PairCandidate) time.Duration {
	created := time.Unix(int64(cand.CreatedAt), 0)
	return c.clock.Now().Sub(created)
}

func (c *Classifier) countCheckFailure(check string) {
	if c.metrics != nil {
		c.metrics.CheckFailures.WithLabelValues(check).Inc()
	}
}
