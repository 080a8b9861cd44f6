// Package telegram is the chat front-end: it parses subscriber commands,
// renders replies, and delivers the monitoring loops' alerts.
package telegram

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"eth-token-sentry/internal/budget"
	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/provider"
	"eth-token-sentry/internal/storage"
)

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// PriceSource resolves the current ETH/USD price.
type PriceSource interface {
	EthPrice(ctx context.Context) (float64, error)
}

// Options configures a Handler. Subscribers, Node and Prices are required;
// Budget, Logger and Metrics default.
type Options struct {
	Subscribers storage.SubscriberStore
	Node        provider.NodeGateway
	Prices      PriceSource
	Budget      *budget.Tracker

	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Handler serves the bot commands and doubles as the loops' notifier. One
// telegram chat is one subscriber.
type Handler struct {
	bot         *bot.Bot
	subscribers storage.SubscriberStore
	node        provider.NodeGateway
	prices      PriceSource
	budget      *budget.Tracker

	logger  *log.Logger
	metrics *observability.Metrics
}

// New creates the bot handler and registers its command routes.
func New(token string, opts Options) (*Handler, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	h := &Handler{
		subscribers: opts.Subscribers,
		node:        opts.Node,
		prices:      opts.Prices,
		budget:      opts.Budget,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}

	b, err := bot.New(token, bot.WithDefaultHandler(h.onUnknown))
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	h.bot = b

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.onHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, h.onHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/watch", bot.MatchTypePrefix, h.onWatch)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/autosnipe", bot.MatchTypePrefix, h.onAutoSnipe)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/hidezero", bot.MatchTypePrefix, h.onHideZero)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/balance", bot.MatchTypePrefix, h.onBalance)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/tokens", bot.MatchTypePrefix, h.onTokens)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/gas", bot.MatchTypePrefix, h.onGas)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/budget", bot.MatchTypePrefix, h.onBudget)
	return h, nil
}

// Run processes updates until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Printf("telegram: awaiting commands")
	h.bot.Start(ctx)
	return ctx.Err()
}

func (h *Handler) onUnknown(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.reply(ctx, update.Message.Chat.ID, "Type /help to see available commands.")
}

func (h *Handler) onHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, update.Message.Chat.ID, renderHelp())
}

func (h *Handler) onWatch(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.reply(ctx, chatID, "Usage: /watch <address> [address...]")
		return
	}

	addresses := make([]string, 0, len(args))
	for _, arg := range args {
		if !addressRe.MatchString(arg) {
			h.reply(ctx, chatID, "Watch wallets cancelled: submitted wallets are incorrect")
			return
		}
		addresses = append(addresses, strings.ToLower(arg))
	}

	h.subscribers.SetWatchList(domain.SubscriberID(chatID), addresses)
	h.reply(ctx, chatID, renderWatchList(addresses))
}

func (h *Handler) onAutoSnipe(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	on, ok := parseOnOff(commandArgs(update.Message.Text))
	if !ok {
		h.reply(ctx, chatID, "Usage: /autosnipe on|off")
		return
	}
	h.subscribers.SetAutoSnipe(domain.SubscriberID(chatID), on)
	if on {
		h.reply(ctx, chatID, "Auto-snipe alerts enabled")
	} else {
		h.reply(ctx, chatID, "Auto-snipe alerts disabled")
	}
}

func (h *Handler) onHideZero(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	on, ok := parseOnOff(commandArgs(update.Message.Text))
	if !ok {
		h.reply(ctx, chatID, "Usage: /hidezero on|off")
		return
	}
	h.subscribers.SetHideZeroBalances(domain.SubscriberID(chatID), on)
	if on {
		h.reply(ctx, chatID, "Empty wallets hidden from /balance")
	} else {
		h.reply(ctx, chatID, "Empty wallets shown in /balance")
	}
}

func (h *Handler) onBalance(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	addresses := h.watched(chatID)
	if len(addresses) == 0 {
		h.reply(ctx, chatID, "No watched wallets yet. Use /watch first.")
		return
	}

	price, err := h.prices.EthPrice(ctx)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}

	settings, _ := h.subscribers.Settings(domain.SubscriberID(chatID))
	lines := []string{"Wallet balances:"}
	for _, address := range addresses {
		eth, err := h.node.EthBalance(ctx, address)
		if err != nil {
			h.replyError(ctx, chatID, err)
			return
		}
		if settings.HideZeroBalances && eth == 0 {
			continue
		}
		lines = append(lines, "", renderEthBalance(address, eth, price))
	}
	h.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (h *Handler) onTokens(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	addresses := h.watched(chatID)
	if len(addresses) == 0 {
		h.reply(ctx, chatID, "No watched wallets yet. Use /watch first.")
		return
	}

	for _, address := range addresses {
		balances, err := h.node.TokenBalances(ctx, address)
		if err != nil {
			h.replyError(ctx, chatID, err)
			return
		}
		h.reply(ctx, chatID, renderTokenBalances(address, balances))
	}
}

func (h *Handler) onGas(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID

	gwei, err := h.node.GasPrice(ctx)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	price, err := h.prices.EthPrice(ctx)
	if err != nil {
		h.replyError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, renderGas(gwei, price))
}

func (h *Handler) onBudget(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	if h.budget == nil {
		h.reply(ctx, chatID, "Quota tracking is not configured")
		return
	}
	h.reply(ctx, chatID, renderBudget(h.budget.Used(), h.budget.Capacity()))
}

func (h *Handler) watched(chatID int64) []string {
	for _, sub := range h.subscribers.Snapshot() {
		if sub.Subscriber == domain.SubscriberID(chatID) {
			return sub.Addresses
		}
	}
	return nil
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	_, err := h.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		h.logger.Printf("telegram: send to %d failed: %v", chatID, err)
	}
}

func (h *Handler) replyError(ctx context.Context, chatID int64, err error) {
	h.reply(ctx, chatID, fmt.Sprintf("Something went wrong: %v\n\nPlease try again", err))
}

// commandArgs returns the whitespace-separated arguments after the command
// word itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func parseOnOff(args []string) (on, ok bool) {
	if len(args) != 1 {
		return false, false
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return true, true
	case "off":
		return false, true
	default:
		return false, false
	}
}
