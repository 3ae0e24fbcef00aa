// Package app contains application services and port definitions for the
// quoting context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/asset"
)

// QuoteProvider answers exchange-rate queries against one venue.
type QuoteProvider interface {
	// Quote returns the best available swap quote for the pair, or an
	// error carrying CodeNoRouteFound when no pool serves it. Never
	// returns a zero-output quote.
	Quote(ctx context.Context, tokenIn, tokenOut *asset.Token, amountIn asset.Amount) (*domain.Quote, error)
}

// TokenResolver turns raw addresses into full token descriptors.
type TokenResolver interface {
	Resolve(ctx context.Context, address common.Address) (*asset.Token, error)
}
