package memory

import (
	"sort"
	"sync"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

type subscriberState struct {
	addresses []string
	settings  domain.Settings
}

// SubscriberStore is an in-memory implementation of storage.SubscriberStore.
// It is shared between the command front-end and the loops; the mutex is
// only held for the copy in or out, never across a network call.
type SubscriberStore struct {
	mu   sync.Mutex
	data map[domain.SubscriberID]*subscriberState
}

// NewSubscriberStore creates a new in-memory subscriber store.
func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{
		data: make(map[domain.SubscriberID]*subscriberState),
	}
}

func (s *SubscriberStore) upsert(subscriber domain.SubscriberID) *subscriberState {
	st, ok := s.data[subscriber]
	if !ok {
		st = &subscriberState{}
		s.data[subscriber] = st
	}
	return st
}

// SetWatchList replaces the subscriber's watched addresses.
func (s *SubscriberStore) SetWatchList(subscriber domain.SubscriberID, addresses []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.upsert(subscriber)
	st.addresses = append([]string(nil), addresses...)
}

// SetAutoSnipe overwrites the auto-snipe flag.
func (s *SubscriberStore) SetAutoSnipe(subscriber domain.SubscriberID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsert(subscriber).settings.AutoSnipe = enabled
}

// SetHideZeroBalances overwrites the hide-zero-balances flag.
func (s *SubscriberStore) SetHideZeroBalances(subscriber domain.SubscriberID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsert(subscriber).settings.HideZeroBalances = enabled
}

// Snapshot copies out all subscriptions, ordered by subscriber ID so loop
// iteration order is deterministic.
func (s *SubscriberStore) Snapshot() []domain.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Subscription, 0, len(s.data))
	for id, st := range s.data {
		out = append(out, domain.Subscription{
			Subscriber: id,
			Addresses:  append([]string(nil), st.addresses...),
			Settings:   st.settings,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subscriber < out[j].Subscriber })
	return out
}

// Snipers returns the subscribers with auto-snipe enabled, ordered by ID.
func (s *SubscriberStore) Snipers() []domain.SubscriberID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.SubscriberID
	for id, st := range s.data {
		if st.settings.AutoSnipe {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Settings returns the subscriber's settings and whether it exists.
func (s *SubscriberStore) Settings(subscriber domain.SubscriberID) (domain.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data[subscriber]
	if !ok {
		return domain.Settings{}, false
	}
	return st.settings, true
}

// Verify interface compliance at compile time.
var _ storage.SubscriberStore = (*SubscriberStore)(nil)
