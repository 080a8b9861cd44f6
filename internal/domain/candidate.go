package domain

// CheckResult is the tri-state outcome of a single risk check. Upstream
// lookup failures degrade to CheckUnknown instead of failing the candidate.
type CheckResult int8

const (
	CheckUnknown CheckResult = iota
	CheckFalse
	CheckTrue
)

// String returns the lowercase name of the result.
func (r CheckResult) String() string {
	switch r {
	case CheckTrue:
		return "true"
	case CheckFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Outcome is the per-cycle classification verdict for a candidate.
type Outcome int8

const (
	// OutcomePending keeps the candidate retained for the next cycle.
	OutcomePending Outcome = iota
	// OutcomeBuy marks the candidate tradeable; terminal, removed after
	// the buy alerts for it have been emitted.
	OutcomeBuy
	// OutcomeRejected removes the candidate as a honeypot.
	OutcomeRejected
	// OutcomeExpired removes the candidate after the renouncement TTL.
	OutcomeExpired
)

// String returns the verdict name.
func (o Outcome) String() string {
	switch o {
	case OutcomeBuy:
		return "buy"
	case OutcomeRejected:
		return "rejected"
	case OutcomeExpired:
		return "expired"
	default:
		return "pending"
	}
}

// PairCandidate is a token-pair creation discovered against the factory
// address, retained until classification reaches a terminal verdict.
type PairCandidate struct {
	PairAddress     string
	ContractAddress string // underlying token contract; empty if unresolved
	Creator         string // empty if the creation lookup failed
	TxHash          string
	CreatedAt       uint64 // pair-creation Unix seconds
	ToBuy           bool

	// Latest check results, refreshed each classification cycle.
	Honeypot        CheckResult
	LiquidityLocked CheckResult
	Renounced       CheckResult
}

// TokenMeta is the resolved metadata and simulation result for a token pair.
type TokenMeta struct {
	TokenAddress   string
	Name           string
	Symbol         string
	Decimals       uint8
	IsHoneypot     bool
	HoneypotReason string
	BuyTax         float64
	SellTax        float64
	LiquidityUSD   float64
	Flags          []string
}

// ContractCreation is one row of the batched creator lookup.
type ContractCreation struct {
	ContractAddress string
	Creator         string
	TxHash          string
}

// TokenBalance is one ERC-20 balance row for a wallet. Amount is the raw
// hex-encoded integer quantity as returned by the node.
type TokenBalance struct {
	ContractAddress string
	Amount          string
}
