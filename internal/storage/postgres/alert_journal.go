package postgres

import (
	"context"
	"fmt"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

// AlertJournal implements storage.AlertJournal using PostgreSQL. The table
// is append-only; rows are never updated or read back at startup.
type AlertJournal struct {
	pool *Pool
}

// NewAlertJournal creates a new AlertJournal.
func NewAlertJournal(pool *Pool) *AlertJournal {
	return &AlertJournal{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertJournal = (*AlertJournal)(nil)

// Append records one emitted alert.
func (j *AlertJournal) Append(ctx context.Context, a *domain.Alert) error {
	if a == nil || a.Kind == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alerts (kind, subscriber, address, tx_hash, event_ts, summary)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := j.pool.Exec(ctx, query,
		a.Kind,
		int64(a.Subscriber),
		a.Address,
		a.TxHash,
		int64(a.Timestamp),
		a.Summary,
	)
	if err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}

// RecentBySubscriber retrieves the subscriber's latest alerts, newest first.
func (j *AlertJournal) RecentBySubscriber(ctx context.Context, subscriber domain.SubscriberID, limit int) ([]*domain.Alert, error) {
	query := `
		SELECT kind, subscriber, address, tx_hash, event_ts, summary
		FROM alerts
		WHERE subscriber = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := j.pool.Query(ctx, query, int64(subscriber), limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	defer rows.Close()

	var out []*domain.Alert
	for rows.Next() {
		var (
			a       domain.Alert
			sub     int64
			eventTs int64
		)
		if err := rows.Scan(&a.Kind, &sub, &a.Address, &a.TxHash, &eventTs, &a.Summary); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Subscriber = domain.SubscriberID(sub)
		a.Timestamp = uint64(eventTs)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}
