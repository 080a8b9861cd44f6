package memory

import (
	"context"
	"sync"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

// AlertJournal is an in-memory implementation of storage.AlertJournal,
// used when no Postgres DSN is configured and in tests.
type AlertJournal struct {
	mu   sync.Mutex
	data []domain.Alert
}

// NewAlertJournal creates a new in-memory alert journal.
func NewAlertJournal() *AlertJournal {
	return &AlertJournal{}
}

// Append records one emitted alert.
func (j *AlertJournal) Append(_ context.Context, a *domain.Alert) error {
	if a == nil || a.Kind == "" {
		return storage.ErrInvalidInput
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.data = append(j.data, *a)
	return nil
}

// All returns a copy of every recorded alert, in append order.
func (j *AlertJournal) All() []domain.Alert {
	j.mu.Lock()
	defer j.mu.Unlock()

	return append([]domain.Alert(nil), j.data...)
}

// Verify interface compliance at compile time.
var _ storage.AlertJournal = (*AlertJournal)(nil)
