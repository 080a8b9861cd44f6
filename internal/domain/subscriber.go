package domain

// SubscriberID identifies one chat/session owning a watch-list and settings.
type SubscriberID int64

// Settings holds the per-subscriber flags mutated by configuration commands.
type Settings struct {
	HideZeroBalances bool
	AutoSnipe        bool
}

// Subscription is one subscriber's watch-list plus settings, as snapshotted
// by the loops. Addresses are lowercase hex.
type Subscription struct {
	Subscriber SubscriberID
	Addresses  []string
	Settings   Settings
}
