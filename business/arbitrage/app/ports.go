// Package app contains application services and port definitions for the
// arbitrage context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/dex-monitor/business/blockchain/domain"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/asset"
)

// Quoter answers venue-addressed swap quotes. Satisfied by the quoting
// context's QuoteService.
type Quoter interface {
	Quote(ctx context.Context, venue quotingDomain.Venue, tokenIn, tokenOut *asset.Token, amountIn asset.Amount) (*quotingDomain.Quote, error)
}

// GasEstimator produces full gas cost estimates. Satisfied by the blockchain
// context's GasPricer.
type GasEstimator interface {
	EstimateCost(ctx context.Context, gasLimit uint64) (*blockchainDomain.GasCost, error)
}

// TokenResolver turns raw addresses into token descriptors. Satisfied by the
// quoting context's resolver.
type TokenResolver interface {
	Resolve(ctx context.Context, address common.Address) (*asset.Token, error)
}

// Sink receives evaluated opportunities: durable storage plus best-effort
// realtime broadcast.
type Sink interface {
	// Persist durably stores one record and returns its id.
	Persist(ctx context.Context, opp *domain.Opportunity) (string, error)
	// Broadcast pushes the record to currently-subscribed listeners.
	// Best-effort: no delivery guarantee, no replay.
	Broadcast(ctx context.Context, opp *domain.Opportunity) error
}
