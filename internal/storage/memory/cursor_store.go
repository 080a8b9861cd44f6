package memory

import (
	"sync"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

type cursorKey struct {
	subscriber domain.SubscriberID
	address    string
}

// CursorStore is an in-memory implementation of storage.CursorStore.
type CursorStore struct {
	mu   sync.Mutex
	data map[cursorKey]uint64
}

// NewCursorStore creates a new in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		data: make(map[cursorKey]uint64),
	}
}

// Get returns the cursor for the (subscriber, address) pair.
func (s *CursorStore) Get(subscriber domain.SubscriberID, address string) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.data[cursorKey{subscriber, address}]
	return ts, ok
}

// Put advances the cursor. Older values are ignored so the cursor stays
// monotonically non-decreasing.
func (s *CursorStore) Put(subscriber domain.SubscriberID, address string, ts uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cursorKey{subscriber, address}
	if cur, ok := s.data[key]; ok && cur >= ts {
		return
	}
	s.data[key] = ts
}

// Verify interface compliance at compile time.
var _ storage.CursorStore = (*CursorStore)(nil)
