// Package provider contains the upstream data-provider clients. Each call
// is a stateless request/response returning a typed record or an error; the
// loops treat any error as transient and retry implicitly on the next tick.
package provider

import (
	"context"

	"eth-token-sentry/internal/domain"
)

// TransferSource fetches recent ERC-20 transfer activity for an address,
// newest-first, bounded page size.
type TransferSource interface {
	RecentTokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error)
}

// InternalTxSource fetches the most recent internal transactions against an
// address, newest-first.
type InternalTxSource interface {
	RecentInternalTxs(ctx context.Context, address string, count int) ([]domain.ChainTx, error)
}

// NormalTxSource fetches recent normal transactions for an address,
// newest-first, with decoded function names.
type NormalTxSource interface {
	NormalTxs(ctx context.Context, address string) ([]domain.ChainTx, error)
}

// TokenMetaResolver resolves token metadata and the honeypot simulation
// result for a pair or token address.
type TokenMetaResolver interface {
	TokenMeta(ctx context.Context, address string) (*domain.TokenMeta, error)
}

// TopHolderSource resolves the top holder addresses of a token contract.
type TopHolderSource interface {
	TopHolders(ctx context.Context, contract string) ([]string, error)
}

// CreationSource resolves creator address and creation tx hash for a batch
// of contract addresses. Implementations cap the batch size; callers chunk.
type CreationSource interface {
	ContractCreations(ctx context.Context, addresses []string) ([]domain.ContractCreation, error)
}

// NodeGateway exposes the JSON-RPC node queries the bot commands rely on:
// current gas price, native balance, and ERC-20 balances per wallet.
type NodeGateway interface {
	GasPrice(ctx context.Context) (float64, error)
	EthBalance(ctx context.Context, address string) (float64, error)
	TokenBalances(ctx context.Context, address string) ([]domain.TokenBalance, error)
}
