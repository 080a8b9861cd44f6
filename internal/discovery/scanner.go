// Package discovery scans factory internal transactions for freshly created
// token pairs and drives the retained candidates to a terminal risk verdict.
package discovery

import (
	"context"
	"log"

	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/observability"
	"eth-token-sentry/internal/provider"
)

// UniswapV2Factory is the pair factory watched by default.
const UniswapV2Factory = "0x5c69bee701ef814a2b6a3edd4b1652cb9cc5aa6f"

// DefaultFetchCount is how many recent internal transactions each scan pulls.
const DefaultFetchCount = 10

// ScannerOptions configures a Scanner. Internal, Meta and Creations are
// required.
type ScannerOptions struct {
	Internal  provider.InternalTxSource
	Meta      provider.TokenMetaResolver
	Creations provider.CreationSource

	Factory    string
	FetchCount int
	Logger     *log.Logger
	Metrics    *observability.Metrics
}

// Scanner discovers new pair candidates. It only ever looks forward: the
// first successful scan seeds the high-water mark with the single newest
// transaction, and later scans collect only strictly newer ones.
type Scanner struct {
	internal  provider.InternalTxSource
	meta      provider.TokenMetaResolver
	creations provider.CreationSource

	factory    string
	fetchCount int
	logger     *log.Logger
	metrics    *observability.Metrics

	// lastSeen is the creation timestamp of the most recently retained
	// candidate; zero means no scan has succeeded yet.
	lastSeen uint64
}

// NewScanner creates a pair-discovery scanner.
func NewScanner(opts ScannerOptions) *Scanner {
	if opts.Factory == "" {
		opts.Factory = UniswapV2Factory
	}
	if opts.FetchCount <= 0 {
		opts.FetchCount = DefaultFetchCount
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Scanner{
		internal:   opts.Internal,
		meta:       opts.Meta,
		creations:  opts.Creations,
		factory:    opts.Factory,
		fetchCount: opts.FetchCount,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// Scan fetches the newest internal transactions against the factory and
// returns the resulting new candidates in creation-timestamp order. A fetch
// failure returns nil and leaves the high-water mark untouched.
func (s *Scanner) Scan(ctx context.Context) []*domain.PairCandidate {
	txs, err := s.internal.RecentInternalTxs(ctx, s.factory, s.fetchCount)
	if err != nil {
		s.logger.Printf("discovery: internal tx fetch failed: %v", err)
		return nil
	}
	if len(txs) == 0 {
		return nil
	}

	var fresh []domain.ChainTx
	if s.lastSeen == 0 {
		// Baseline: retain exactly the newest transaction. Everything
		// already on chain before it is never evaluated.
		fresh = txs[:1]
	} else {
		for _, tx := range txs {
			if tx.TimeStamp <= s.lastSeen {
				break
			}
			fresh = append(fresh, tx)
		}
		if len(fresh) == 0 {
			return nil
		}
	}
	s.lastSeen = fresh[0].TimeStamp

	// Oldest-first so retained-set order matches creation order.
	for i, j := 0, len(fresh)-1; i < j; i, j = i+1, j-1 {
		fresh[i], fresh[j] = fresh[j], fresh[i]
	}

	candidates := make([]*domain.PairCandidate, 0, len(fresh))
	for _, tx := range fresh {
		candidates = append(candidates, &domain.PairCandidate{
			PairAddress: tx.ContractAddress,
			TxHash:      tx.Hash,
			CreatedAt:   tx.TimeStamp,
		})
	}

	s.resolveContracts(ctx, candidates)
	s.resolveCreators(ctx, candidates)

	if s.metrics != nil {
		s.metrics.CandidatesDiscovered.Add(float64(len(candidates)))
	}
	for _, c := range candidates {
		s.logger.Printf("discovery: new pair %s (token %q, creator %q)", c.PairAddress, c.ContractAddress, c.Creator)
	}
	return candidates
}

// resolveContracts looks up the underlying token contract per pair. A failed
// lookup leaves the contract address empty rather than dropping the
// candidate.
func (s *Scanner) resolveContracts(ctx context.Context, candidates []*domain.PairCandidate) {
	for _, c := range candidates {
		meta, err := s.meta.TokenMeta(ctx, c.PairAddress)
		if err != nil {
			s.logger.Printf("discovery: token lookup for %s failed: %v", c.PairAddress, err)
			continue
		}
		c.ContractAddress = meta.TokenAddress
	}
}

// resolveCreators fills creator addresses and creation tx hashes via the
// batched lookup, chunked at the upstream batch cap. A failed chunk leaves
// its candidates without a creator.
func (s *Scanner) resolveCreators(ctx context.Context, candidates []*domain.PairCandidate) {
	byPair := make(map[string]*domain.PairCandidate, len(candidates))
	for _, c := range candidates {
		byPair[c.PairAddress] = c
	}

	for start := 0; start < len(candidates); start += provider.CreationBatchLimit {
		end := start + provider.CreationBatchLimit
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := make([]string, 0, end-start)
		for _, c := range candidates[start:end] {
			batch = append(batch, c.PairAddress)
		}

		creations, err := s.creations.ContractCreations(ctx, batch)
		if err != nil {
			s.logger.Printf("discovery: creator lookup failed for %d pairs: %v", len(batch), err)
			continue
		}
		for _, cr := range creations {
			if c, ok := byPair[cr.ContractAddress]; ok {
				c.Creator = cr.Creator
				c.TxHash = cr.TxHash
			}
		}
	}
}
