package domain

// TokenTransfer is one ERC-20 transfer row as reported by the activity
// provider. Pages arrive sorted newest-first; the watch diff relies on that.
type TokenTransfer struct {
	Hash            string
	TimeStamp       uint64 // Unix seconds
	From            string
	To              string
	ContractAddress string
	TokenName       string
	TokenSymbol     string
	TokenDecimal    uint8
	Value           string // raw integer amount, decimal string
}

// ChainTx is one normal or internal transaction row. FunctionName is only
// populated for normal transactions (decoded from the input selector by the
// provider); internal transactions carry an empty one.
type ChainTx struct {
	Hash            string
	TimeStamp       uint64 // Unix seconds
	From            string
	To              string
	Value           string
	ContractAddress string
	FunctionName    string
	IsError         bool
}
