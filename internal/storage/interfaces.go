package storage

import (
	"context"

	"eth-token-sentry/internal/domain"
)

// CursorStore tracks the per-(subscriber, address) high-water mark over
// observed activity timestamps. Cursors are monotonically non-decreasing;
// Put calls with an older timestamp are ignored.
type CursorStore interface {
	// Get returns the cursor for the pair and whether one exists yet.
	Get(subscriber domain.SubscriberID, address string) (uint64, bool)

	// Put advances the cursor for the pair. A value older than the stored
	// cursor is a no-op.
	Put(subscriber domain.SubscriberID, address string, ts uint64)
}

// SubscriberStore holds subscriber settings and watch-lists. It is shared
// between the command front-end (writers) and the loops (readers); all
// methods are safe for concurrent use and never block on network calls.
type SubscriberStore interface {
	// SetWatchList replaces the subscriber's watched addresses, creating
	// the subscriber on first use.
	SetWatchList(subscriber domain.SubscriberID, addresses []string)

	// SetAutoSnipe overwrites the auto-snipe flag, creating the subscriber
	// on first use.
	SetAutoSnipe(subscriber domain.SubscriberID, enabled bool)

	// SetHideZeroBalances overwrites the hide-zero-balances flag.
	SetHideZeroBalances(subscriber domain.SubscriberID, enabled bool)

	// Snapshot copies out all subscriptions under a brief lock.
	Snapshot() []domain.Subscription

	// Snipers returns the subscribers with auto-snipe enabled.
	Snipers() []domain.SubscriberID

	// Settings returns the subscriber's settings and whether it exists.
	Settings(subscriber domain.SubscriberID) (domain.Settings, bool)
}

// AlertJournal is an append-only record of emitted notifications. Journal
// writes must never block or fail a notification: callers log errors and
// move on.
type AlertJournal interface {
	// Append records one emitted alert.
	Append(ctx context.Context, a *domain.Alert) error
}
