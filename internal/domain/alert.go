package domain

// Alert kinds recorded in the journal.
const (
	AlertKindWalletActivity = "wallet_activity"
	AlertKindBuyCandidate   = "buy_candidate"
)

// Alert is one emitted notification, as recorded by the append-only journal.
// The journal is write-only at runtime; nothing is read back on startup.
type Alert struct {
	Kind       string
	Subscriber SubscriberID
	Address    string // watched wallet or pair address
	TxHash     string
	Timestamp  uint64 // Unix seconds of the underlying chain event
	Summary    string
}
