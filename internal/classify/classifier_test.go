package classify

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/sched"
)

type fakeMeta struct {
	meta *domain.TokenMeta
	err  error
}

func (f *fakeMeta) TokenMeta(context.Context, string) (*domain.TokenMeta, error) {
	return f.meta, f.err
}

type fakeHolders struct {
	holders []string
	err     error
}

func (f *fakeHolders) TopHolders(context.Context, string) ([]string, error) {
	return f.holders, f.err
}

type fakeNormalTxs struct {
	txs []domain.ChainTx
	err error
}

func (f *fakeNormalTxs) NormalTxs(context.Context, string) ([]domain.ChainTx, error) {
	return f.txs, f.err
}

func cleanMeta() *domain.TokenMeta {
	return &domain.TokenMeta{TokenAddress: "0xtoken", Symbol: "TKN", BuyTax: 1, SellTax: 1}
}

func renouncedTxs() []domain.ChainTx {
	return []domain.ChainTx{
		{Hash: "0x1", FunctionName: "approve(address,uint256)"},
		{Hash: "0x2", FunctionName: "renounceOwnership()"},
	}
}

func newTestClassifier(meta *fakeMeta, holders *fakeHolders, txs *fakeNormalTxs, clock sched.Clock) *Classifier {
	return NewClassifier(Options{
		Meta:      meta,
		Holders:   holders,
		NormalTxs: txs,
		Clock:     clock,
		Logger:    log.New(io.Discard, "", 0),
	})
}

func candidateAt(created time.Time) *domain.PairCandidate {
	return &domain.PairCandidate{
		PairAddress: "0xpair",
		Creator:     "0xcreator",
		CreatedAt:   uint64(created.Unix()),
	}
}

func TestClassifier_UnrenouncedExpiresAfterTTL(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())

	cl := newTestClassifier(
		&fakeMeta{meta: cleanMeta()},
		&fakeHolders{holders: []string{"0xsomeone"}},
		&fakeNormalTxs{txs: []domain.ChainTx{{FunctionName: "transfer(address,uint256)"}}},
		clock,
	)

	outcome, _ := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomePending, outcome)

	clock.Advance(2*time.Hour + time.Second)
	outcome, _ = cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeExpired, outcome)
	assert.Equal(t, domain.CheckFalse, cand.Renounced)
}

func TestClassifier_RenouncedHoneypotRejected(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())

	meta := cleanMeta()
	meta.IsHoneypot = true
	cl := newTestClassifier(
		&fakeMeta{meta: meta},
		&fakeHolders{holders: []string{"0x000000000000000000000000000000000000dead"}},
		&fakeNormalTxs{txs: renouncedTxs()},
		clock,
	)

	outcome, _ := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeRejected, outcome, "honeypot wins over locked liquidity")
	assert.False(t, cand.ToBuy)
}

func TestClassifier_HighTaxCountsAsHoneypot(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())

	meta := cleanMeta()
	meta.SellTax = 12.5
	cl := newTestClassifier(
		&fakeMeta{meta: meta},
		&fakeHolders{},
		&fakeNormalTxs{txs: renouncedTxs()},
		clock,
	)

	outcome, _ := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeRejected, outcome)
	assert.Equal(t, domain.CheckTrue, cand.Honeypot)
}

func TestClassifier_RenouncedCleanLockedIsBuy(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())

	cl := newTestClassifier(
		&fakeMeta{meta: cleanMeta()},
		&fakeHolders{holders: []string{"0xwhale", "0x663A5C229C09b049E36dCc11a9B0d4a8Eb9db214"}},
		&fakeNormalTxs{txs: renouncedTxs()},
		clock,
	)

	outcome, meta := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeBuy, outcome)
	assert.True(t, cand.ToBuy)
	require.NotNil(t, meta)
	assert.Equal(t, "TKN", meta.Symbol)
	assert.Equal(t, "0xtoken", cand.ContractAddress, "contract address backfilled from metadata")
}

func TestClassifier_UnknownHoneypotStillBuysWhenLocked(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())
	cand.ContractAddress = "0xtoken"

	cl := newTestClassifier(
		&fakeMeta{err: errors.New("simulation down")},
		&fakeHolders{holders: []string{"0x000000000000000000000000000000000000dead"}},
		&fakeNormalTxs{txs: renouncedTxs()},
		clock,
	)

	outcome, meta := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeBuy, outcome)
	assert.Nil(t, meta)
	assert.Equal(t, domain.CheckUnknown, cand.Honeypot)
}

func TestClassifier_RenouncedUnlockedStaysPendingThenExpires(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())

	cl := newTestClassifier(
		&fakeMeta{meta: cleanMeta()},
		&fakeHolders{holders: []string{"0xwhale"}},
		&fakeNormalTxs{txs: renouncedTxs()},
		clock,
	)

	outcome, _ := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomePending, outcome)

	clock.Advance(3 * time.Hour)
	outcome, _ = cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomeExpired, outcome)
}

func TestClassifier_LookupFailuresYieldUnknown(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	cand := candidateAt(clock.Now())
	cand.ContractAddress = "0xtoken"

	cl := newTestClassifier(
		&fakeMeta{err: errors.New("down")},
		&fakeHolders{err: errors.New("down")},
		&fakeNormalTxs{err: errors.New("down")},
		clock,
	)

	outcome, _ := cl.Evaluate(context.Background(), cand)
	assert.Equal(t, domain.OutcomePending, outcome)
	assert.Equal(t, domain.CheckUnknown, cand.Honeypot)
	assert.Equal(t, domain.CheckUnknown, cand.LiquidityLocked)
	assert.Equal(t, domain.CheckUnknown, cand.Renounced)
}
