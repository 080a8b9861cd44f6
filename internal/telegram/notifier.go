package telegram

import (
	"context"

	"github.com/go-telegram/bot"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/notify"
)

// WalletActivity delivers one watched-wallet transfer alert to the
// subscriber's chat.
func (h *Handler) WalletActivity(ctx context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error {
	err := h.send(ctx, int64(sub), renderWalletActivity(address, transfer))
	h.countAlert(domain.AlertKindWalletActivity, err)
	return err
}

// BuyCandidate delivers one vetted-token alert to the subscriber's chat.
func (h *Handler) BuyCandidate(ctx context.Context, sub domain.SubscriberID, candidate domain.PairCandidate, meta *domain.TokenMeta) error {
	err := h.send(ctx, int64(sub), renderBuyCandidate(candidate, meta))
	h.countAlert(domain.AlertKindBuyCandidate, err)
	return err
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) error {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	return err
}

func (h *Handler) countAlert(kind string, err error) {
	if h.metrics == nil {
		return
	}
	if err != nil {
		h.metrics.AlertsFailed.WithLabelValues(kind).Inc()
	} else {
		h.metrics.AlertsSent.WithLabelValues(kind).Inc()
	}
}

var _ notify.Notifier = (*Handler)(nil)
