// Package notify defines the outbound notification contract shared by the
// monitoring loops and its delivery implementations.
package notify

import (
	"context"
	"errors"

	"eth-token-sentry/internal/domain"
)

// Notifier delivers alerts produced by the monitoring loops. Implementations
// must be safe for concurrent use; delivery is at-least-once and a failed
// delivery is the caller's signal to log, not to retry.
type Notifier interface {
	// WalletActivity reports one new transfer on a watched address.
	WalletActivity(ctx context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error

	// BuyCandidate reports a candidate that passed every risk check.
	// meta may be nil when metadata resolution was degraded.
	BuyCandidate(ctx context.Context, sub domain.SubscriberID, candidate domain.PairCandidate, meta *domain.TokenMeta) error
}

// Multi fans one alert out to several notifiers. Every notifier is attempted
// even when an earlier one fails; the joined error carries all failures.
type Multi []Notifier

func (m Multi) WalletActivity(ctx context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error {
	var errs []error
	for _, n := range m {
		if err := n.WalletActivity(ctx, sub, address, transfer); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) BuyCandidate(ctx context.Context, sub domain.SubscriberID, candidate domain.PairCandidate, meta *domain.TokenMeta) error {
	var errs []error
	for _, n := range m {
		if err := n.BuyCandidate(ctx, sub, candidate, meta); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Notifier = (Multi)(nil)
