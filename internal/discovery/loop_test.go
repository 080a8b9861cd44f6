package discovery

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eth-token-sentry/internal/classify"
	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/sched"
	"eth-token-sentry/internal/storage/memory"
)

type holdersFixed struct{ holders []string }

func (h *holdersFixed) TopHolders(context.Context, string) ([]string, error) {
	return h.holders, nil
}

type normalTxsFixed struct{ txs []domain.ChainTx }

func (n *normalTxsFixed) NormalTxs(context.Context, string) ([]domain.ChainTx, error) {
	return n.txs, nil
}

type buyAlert struct {
	sub  domain.SubscriberID
	cand domain.PairCandidate
}

type buyRecorder struct{ alerts []buyAlert }

func (r *buyRecorder) WalletActivity(context.Context, domain.SubscriberID, string, domain.TokenTransfer) error {
	return nil
}

func (r *buyRecorder) BuyCandidate(_ context.Context, sub domain.SubscriberID, cand domain.PairCandidate, _ *domain.TokenMeta) error {
	r.alerts = append(r.alerts, buyAlert{sub: sub, cand: cand})
	return nil
}

// loopFixture wires a loop against a scripted chain: one seed pair, then one
// clean renounced pair with locked liquidity.
func loopFixture(t *testing.T, clock *sched.FakeClock, renounced bool, honeypot bool, locked bool) (*Loop, *buyRecorder, *memory.SubscriberStore) {
	t.Helper()

	seedTS := uint64(clock.Now().Unix()) - 10
	newTS := uint64(clock.Now().Unix())
	internal := &scriptedInternal{
		pages: [][]domain.ChainTx{
			{pairTx("0xseed", seedTS)},
			{pairTx("0xnew", newTS), pairTx("0xseed", seedTS)},
			{pairTx("0xnew", newTS)},
			{pairTx("0xnew", newTS)},
		},
		errs: []error{nil, nil, nil, nil},
	}

	meta := &metaByPair{metas: map[string]*domain.TokenMeta{
		"0xseed": {TokenAddress: "0xseedtoken", IsHoneypot: true},
		"0xnew":  {TokenAddress: "0xnewtoken", Symbol: "NEW", IsHoneypot: honeypot, BuyTax: 1, SellTax: 1},
	}}
	creations := &creationsByPair{rows: map[string]domain.ContractCreation{
		"0xseed": {ContractAddress: "0xseed", Creator: "0xseedcreator", TxHash: "0xs"},
		"0xnew":  {ContractAddress: "0xnew", Creator: "0xnewcreator", TxHash: "0xn"},
	}}

	var holders []string
	if locked {
		holders = []string{"0x000000000000000000000000000000000000dead"}
	} else {
		holders = []string{"0xwhale"}
	}
	var creatorTxs []domain.ChainTx
	if renounced {
		creatorTxs = []domain.ChainTx{{FunctionName: "renounceOwnership()"}}
	}

	logger := log.New(io.Discard, "", 0)
	scanner := NewScanner(ScannerOptions{
		Internal:  internal,
		Meta:      meta,
		Creations: creations,
		Logger:    logger,
	})
	classifier := classify.NewClassifier(classify.Options{
		Meta:      meta,
		Holders:   &holdersFixed{holders: holders},
		NormalTxs: &normalTxsFixed{txs: creatorTxs},
		Clock:     clock,
		Logger:    logger,
	})

	subs := memory.NewSubscriberStore()
	sink := &buyRecorder{}
	loop := NewLoop(LoopOptions{
		Scanner:     scanner,
		Classifier:  classifier,
		Subscribers: subs,
		Notifier:    sink,
		Clock:       clock,
		Logger:      logger,
	})
	return loop, sink, subs
}

func TestLoop_BuyCandidateAlertsSnipersOnce(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	loop, sink, subs := loopFixture(t, clock, true, false, true)
	subs.SetAutoSnipe(11, true)
	subs.SetAutoSnipe(22, true)
	subs.SetAutoSnipe(33, false)
	ctx := context.Background()

	// First tick: seed pair is retained and immediately rejected (honeypot).
	loop.Tick(ctx)
	assert.Empty(t, sink.alerts)
	assert.Zero(t, loop.Retained())

	// Second tick: the new pair passes every check and alerts both snipers.
	loop.Tick(ctx)
	require.Len(t, sink.alerts, 2)
	assert.Equal(t, domain.SubscriberID(11), sink.alerts[0].sub)
	assert.Equal(t, domain.SubscriberID(22), sink.alerts[1].sub)
	assert.Equal(t, "0xnew", sink.alerts[0].cand.PairAddress)
	assert.True(t, sink.alerts[0].cand.ToBuy)

	// The buy verdict is terminal: no re-notification on later ticks.
	loop.Tick(ctx)
	assert.Len(t, sink.alerts, 2)
	assert.Zero(t, loop.Retained())
}

func TestLoop_NoSnipersSuppressesAlertsButStillClassifies(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	loop, sink, _ := loopFixture(t, clock, true, false, true)
	ctx := context.Background()

	loop.Tick(ctx)
	loop.Tick(ctx)

	assert.Empty(t, sink.alerts)
	assert.Zero(t, loop.Retained(), "buy verdict still consumed without subscribers")
}

func TestLoop_UnrenouncedCandidateExpires(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	loop, sink, subs := loopFixture(t, clock, false, false, true)
	subs.SetAutoSnipe(11, true)
	ctx := context.Background()

	loop.Tick(ctx)
	loop.Tick(ctx)
	assert.Equal(t, 2, loop.Retained(), "unrenounced candidates stay pending")

	clock.Advance(2*time.Hour + time.Minute)
	loop.Tick(ctx)
	assert.Zero(t, loop.Retained(), "candidates dropped after the renouncement window")
	assert.Empty(t, sink.alerts)
}

func TestLoop_HoneypotRejectedWithoutAlert(t *testing.T) {
	clock := sched.NewFakeClock(time.Unix(1_700_000_000, 0))
	loop, sink, subs := loopFixture(t, clock, true, true, true)
	subs.SetAutoSnipe(11, true)
	ctx := context.Background()

	loop.Tick(ctx)
	loop.Tick(ctx)

	assert.Empty(t, sink.alerts)
	assert.Zero(t, loop.Retained())
}
