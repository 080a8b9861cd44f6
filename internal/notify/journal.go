package notify

import (
	"context"
	"fmt"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

// Journal records every alert in the durable alert journal. It is a
// write-only audit trail; nothing at runtime reads it back.
type Journal struct {
	journal storage.AlertJournal
}

// NewJournal creates a journal-backed notifier.
func NewJournal(j storage.AlertJournal) *Journal {
	return &Journal{journal: j}
}

func (n *Journal) WalletActivity(ctx context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error {
	return n.journal.Append(ctx, &domain.Alert{
		Kind:       domain.AlertKindWalletActivity,
		Subscriber: sub,
		Address:    address,
		TxHash:     transfer.Hash,
		Timestamp:  transfer.TimeStamp,
		Summary:    fmt.Sprintf("%s transfer %s -> %s", transfer.TokenSymbol, transfer.From, transfer.To),
	})
}

func (n *Journal) BuyCandidate(ctx context.Context, sub domain.SubscriberID, candidate domain.PairCandidate, meta *domain.TokenMeta) error {
	summary := fmt.Sprintf("buy candidate pair %s token %s", candidate.PairAddress, candidate.ContractAddress)
	if meta != nil && meta.Symbol != "" {
		summary = fmt.Sprintf("buy candidate %s pair %s", meta.Symbol, candidate.PairAddress)
	}
	return n.journal.Append(ctx, &domain.Alert{
		Kind:       domain.AlertKindBuyCandidate,
		Subscriber: sub,
		Address:    candidate.ContractAddress,
		TxHash:     candidate.TxHash,
		Timestamp:  candidate.CreatedAt,
		Summary:    summary,
	})
}

var _ Notifier = (*Journal)(nil)
