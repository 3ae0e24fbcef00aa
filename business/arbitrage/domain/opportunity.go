// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/dex-monitor/business/blockchain/domain"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/asset"
)

// Status classifies an opportunity record. The monitor only simulates, so
// new records are always StatusSimulated; the other states exist for an
// execution layer writing back through the same store.
type Status string

const (
	StatusSimulated Status = "simulated"
	StatusExecuted  Status = "executed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSimulated, StatusExecuted, StatusFailed:
		return true
	}
	return false
}

// Opportunity is the evaluated outcome of one round-trip check. Created
// fresh each cycle and never mutated; ownership passes to the sink.
type Opportunity struct {
	ID        uuid.UUID
	CreatedAt time.Time

	TokenIn  *asset.Token
	TokenOut *asset.Token

	BuyVenue  quotingDomain.Venue
	SellVenue quotingDomain.Venue

	// AmountIn is the probe amount in tokenIn base units.
	AmountIn asset.Amount
	// AmountOutLeg1 is leg 1's output in tokenOut base units.
	AmountOutLeg1 asset.Amount
	// AmountOutLeg2 is leg 2's output back in tokenIn base units.
	AmountOutLeg2 asset.Amount

	// GrossProfit is AmountOutLeg2 - AmountIn in tokenIn display units.
	GrossProfit decimal.Decimal
	// ROI is GrossProfit / AmountIn as percentage points.
	ROI decimal.Decimal

	GasCostNative decimal.Decimal
	GasCostFiat   decimal.Decimal
	// NetProfitFiat is GrossProfit converted to fiat minus GasCostFiat.
	NetProfitFiat decimal.Decimal

	Profitable bool
	Status     Status

	RouteLeg1 string
	RouteLeg2 string

	PriceImpactLeg1 *decimal.Decimal
	PriceImpactLeg2 *decimal.Decimal
}

// NewOpportunity composes two quotes and a gas estimate into an evaluated
// opportunity. threshold is the configured minimum profit value; it is
// divided by 100 before comparing against ROI, so a threshold of 30 flags
// opportunities with ROI strictly above 0.3 percentage points.
func NewOpportunity(leg1, leg2 *quotingDomain.Quote, gas *blockchainDomain.GasCost, threshold decimal.Decimal) *Opportunity {
	amountIn := leg1.AmountIn.ToDecimal()
	amountBack := leg2.AmountOut.ToDecimal()

	grossProfit := amountBack.Sub(amountIn)
	roi := grossProfit.Div(amountIn).Mul(decimal.NewFromInt(100))
	netProfitFiat := grossProfit.Mul(gas.NativePriceFiat).Sub(gas.CostFiat)

	// Strict comparison: ROI exactly at the threshold is not profitable.
	profitable := roi.GreaterThan(threshold.Div(decimal.NewFromInt(100)))

	return &Opportunity{
		ID:              uuid.New(),
		CreatedAt:       time.Now().UTC(),
		TokenIn:         leg1.TokenIn,
		TokenOut:        leg1.TokenOut,
		BuyVenue:        leg1.Venue,
		SellVenue:       leg2.Venue,
		AmountIn:        leg1.AmountIn,
		AmountOutLeg1:   leg1.AmountOut,
		AmountOutLeg2:   leg2.AmountOut,
		GrossProfit:     grossProfit,
		ROI:             roi,
		GasCostNative:   gas.CostNative,
		GasCostFiat:     gas.CostFiat,
		NetProfitFiat:   netProfitFiat,
		Profitable:      profitable,
		Status:          StatusSimulated,
		RouteLeg1:       leg1.PathString(),
		RouteLeg2:       leg2.PathString(),
		PriceImpactLeg1: leg1.PriceImpact,
		PriceImpactLeg2: leg2.PriceImpact,
	}
}
