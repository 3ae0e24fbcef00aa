// Package domain contains the core domain types for the quoting context.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/internal/asset"
)

// Venue identifies a decentralized exchange's quoting endpoint.
type Venue string

func (v Venue) String() string {
	return string(v)
}

// Quote is one venue's answer for a single swap leg. Amounts are integer
// base units end to end; no floating point enters the trade math.
type Quote struct {
	Venue     Venue
	TokenIn   *asset.Token
	TokenOut  *asset.Token
	AmountIn  asset.Amount
	AmountOut asset.Amount
	// GasUnits is the venue's estimate for executing the swap.
	GasUnits uint64
	// Path is the ordered symbol sequence the route takes.
	Path []string
	// FeeTier is the pool fee tier the best route used, in hundredths of a
	// bip.
	FeeTier int
	// PriceImpact is the venue-reported price impact in percent. Nil when
	// the venue does not supply one; consumers must treat absence as
	// "unknown", not zero.
	PriceImpact *decimal.Decimal
}

// NewQuote creates a Quote. Providers must never produce a zero-output
// quote: absent a viable route they return an error instead.
func NewQuote(venue Venue, tokenIn, tokenOut *asset.Token, amountIn, amountOut asset.Amount, gasUnits uint64, feeTier int) *Quote {
	return &Quote{
		Venue:     venue,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		GasUnits:  gasUnits,
		Path:      []string{tokenIn.Symbol(), tokenOut.Symbol()},
		FeeTier:   feeTier,
	}
}

// PathString renders the route as "WETH -> USDC".
func (q *Quote) PathString() string {
	out := ""
	for i, sym := range q.Path {
		if i > 0 {
			out += " -> "
		}
		out += sym
	}
	return out
}

// String returns a short human-readable representation.
func (q *Quote) String() string {
	return fmt.Sprintf("%s %s => %s (gas %d)", q.Venue, q.AmountIn, q.AmountOut, q.GasUnits)
}
