package watch

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage/memory"
)

type scriptedTransfers struct {
	pages [][]domain.TokenTransfer
	errs  []error
	calls int
}

func (s *scriptedTransfers) RecentTokenTransfers(_ context.Context, _ string) ([]domain.TokenTransfer, error) {
	i := s.calls
	s.calls++
	if i >= len(s.pages) {
		return nil, errors.New("unexpected extra fetch")
	}
	return s.pages[i], s.errs[i]
}

type recordedAlert struct {
	sub      domain.SubscriberID
	address  string
	transfer domain.TokenTransfer
}

type recorderNotifier struct {
	wallet []recordedAlert
	buys   []domain.PairCandidate
}

func (r *recorderNotifier) WalletActivity(_ context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error {
	r.wallet = append(r.wallet, recordedAlert{sub: sub, address: address, transfer: transfer})
	return nil
}

func (r *recorderNotifier) BuyCandidate(_ context.Context, _ domain.SubscriberID, candidate domain.PairCandidate, _ *domain.TokenMeta) error {
	r.buys = append(r.buys, candidate)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunner_BaselineThenEventThenFailure(t *testing.T) {
	source := &scriptedTransfers{
		pages: [][]domain.TokenTransfer{
			{{Hash: "0x1", TimeStamp: 100}},
			{{Hash: "0x2", TimeStamp: 150}, {Hash: "0x1", TimeStamp: 100}},
			nil,
		},
		errs: []error{nil, nil, errors.New("upstream down")},
	}
	subs := memory.NewSubscriberStore()
	subs.SetWatchList(7, []string{"0xa"})
	cursors := memory.NewCursorStore()
	sink := &recorderNotifier{}

	runner := NewRunner(Options{
		Transfers:   source,
		Subscribers: subs,
		Cursors:     cursors,
		Notifier:    sink,
		Logger:      quietLogger(),
	})
	ctx := context.Background()

	// First tick seeds the baseline, no events.
	runner.Tick(ctx)
	assert.Empty(t, sink.wallet)
	cursor, ok := cursors.Get(7, "0xa")
	require.True(t, ok)
	assert.Equal(t, uint64(100), cursor)

	// Second tick sees one new transfer.
	runner.Tick(ctx)
	require.Len(t, sink.wallet, 1)
	assert.Equal(t, "0x2", sink.wallet[0].transfer.Hash)
	assert.Equal(t, domain.SubscriberID(7), sink.wallet[0].sub)
	cursor, _ = cursors.Get(7, "0xa")
	assert.Equal(t, uint64(150), cursor)

	// Third tick fails upstream: no events, cursor untouched.
	runner.Tick(ctx)
	assert.Len(t, sink.wallet, 1)
	cursor, _ = cursors.Get(7, "0xa")
	assert.Equal(t, uint64(150), cursor)
}

func TestRunner_EmptyWatchListSkipsFetch(t *testing.T) {
	source := &scriptedTransfers{}
	runner := NewRunner(Options{
		Transfers:   source,
		Subscribers: memory.NewSubscriberStore(),
		Cursors:     memory.NewCursorStore(),
		Notifier:    &recorderNotifier{},
		Logger:      quietLogger(),
	})

	runner.Tick(context.Background())
	assert.Zero(t, source.calls)
}

func TestRunner_PerAddressFailureIsolation(t *testing.T) {
	// Two addresses; the first fetch fails, the second succeeds.
	source := &scriptedTransfers{
		pages: [][]domain.TokenTransfer{nil, {{Hash: "0x9", TimeStamp: 500}}},
		errs:  []error{errors.New("boom"), nil},
	}
	subs := memory.NewSubscriberStore()
	subs.SetWatchList(1, []string{"0xbad", "0xgood"})
	cursors := memory.NewCursorStore()

	runner := NewRunner(Options{
		Transfers:   source,
		Subscribers: subs,
		Cursors:     cursors,
		Notifier:    &recorderNotifier{},
		Logger:      quietLogger(),
	})
	runner.Tick(context.Background())

	_, ok := cursors.Get(1, "0xbad")
	assert.False(t, ok, "failed address must not gain a cursor")
	cursor, ok := cursors.Get(1, "0xgood")
	require.True(t, ok)
	assert.Equal(t, uint64(500), cursor)
}
