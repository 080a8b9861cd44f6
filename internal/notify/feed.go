package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"eth-token-sentry/internal/domain"
)

const (
	feedWriteTimeout = 10 * time.Second
	feedPingInterval = 30 * time.Second
)

// feedEvent is the wire shape broadcast to feed subscribers.
type feedEvent struct {
	Kind       string  `json:"kind"`
	Subscriber int64   `json:"subscriber"`
	Address    string  `json:"address,omitempty"`
	TxHash     string  `json:"tx_hash,omitempty"`
	Timestamp  uint64  `json:"timestamp,omitempty"`
	Token      string  `json:"token,omitempty"`
	Symbol     string  `json:"symbol,omitempty"`
	Pair       string  `json:"pair,omitempty"`
	Creator    string  `json:"creator,omitempty"`
	Liquidity  float64 `json:"liquidity_usd,omitempty"`
}

// Feed broadcasts alerts to WebSocket subscribers. Connections that cannot
// be written to within the write timeout are dropped.
type Feed struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	// writeMu serializes frame writes; gorilla permits one writer at a time.
	writeMu sync.Mutex
}

// NewFeed creates a Feed. logger may be nil.
func NewFeed(logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection until it
// closes. Inbound messages are read and discarded to service control frames.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Printf("feed: upgrade failed: %v", err)
		return
	}

	f.mu.Lock()
	f.conns[conn] = struct{}{}
	n := len(f.conns)
	f.mu.Unlock()
	f.logger.Printf("feed: subscriber connected (%d active)", n)

	go f.keepAlive(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	f.drop(conn)
}

// ConnCount returns the number of active feed connections.
func (f *Feed) ConnCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

// WalletActivity broadcasts a wallet-activity event to all subscribers.
// Per-connection write failures drop that connection only.
func (f *Feed) WalletActivity(_ context.Context, sub domain.SubscriberID, address string, transfer domain.TokenTransfer) error {
	return f.broadcast(feedEvent{
		Kind:       domain.AlertKindWalletActivity,
		Subscriber: int64(sub),
		Address:    address,
		TxHash:     transfer.Hash,
		Timestamp:  transfer.TimeStamp,
		Token:      transfer.ContractAddress,
		Symbol:     transfer.TokenSymbol,
	})
}

// BuyCandidate broadcasts a buy-candidate event to all subscribers.
func (f *Feed) BuyCandidate(_ context.Context, sub domain.SubscriberID, candidate domain.PairCandidate, meta *domain.TokenMeta) error {
	ev := feedEvent{
		Kind:       domain.AlertKindBuyCandidate,
		Subscriber: int64(sub),
		TxHash:     candidate.TxHash,
		Timestamp:  candidate.CreatedAt,
		Token:      candidate.ContractAddress,
		Pair:       candidate.PairAddress,
		Creator:    candidate.Creator,
	}
	if meta != nil {
		ev.Symbol = meta.Symbol
		ev.Liquidity = meta.LiquidityUSD
	}
	return f.broadcast(ev)
}

func (f *Feed) broadcast(ev feedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	f.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(f.conns))
	for c := range f.conns {
		conns = append(conns, c)
	}
	f.mu.Unlock()

	for _, c := range conns {
		if err := f.write(c, websocket.TextMessage, payload); err != nil {
			f.logger.Printf("feed: write failed, dropping subscriber: %v", err)
			f.drop(c)
		}
	}
	return nil
}

func (f *Feed) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(feedPingInterval)
	defer ticker.Stop()
	for range ticker.C {
		f.mu.Lock()
		_, alive := f.conns[conn]
		f.mu.Unlock()
		if !alive {
			return
		}
		if err := f.write(conn, websocket.PingMessage, nil); err != nil {
			f.drop(conn)
			return
		}
	}
}

func (f *Feed) write(conn *websocket.Conn, messageType int, payload []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
	return conn.WriteMessage(messageType, payload)
}

func (f *Feed) drop(conn *websocket.Conn) {
	f.mu.Lock()
	if _, ok := f.conns[conn]; ok {
		delete(f.conns, conn)
		conn.Close()
	}
	f.mu.Unlock()
}

var _ Notifier = (*Feed)(nil)
