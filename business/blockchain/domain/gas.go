// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// WeiPerGwei is the wei value of one gwei.
var WeiPerGwei = big.NewInt(1_000_000_000)

// weiPerNative converts wei to whole native units (10^18).
const nativeDecimals = 18

// GasPrice is a point-in-time gas price observation.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       new(big.Int).Set(wei),
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei for display and metrics.
func (p *GasPrice) Gwei() float64 {
	gwei := new(big.Float).SetInt(p.Wei)
	gwei.Quo(gwei, new(big.Float).SetInt(WeiPerGwei))
	f, _ := gwei.Float64()
	return f
}

// AdjustGasPrice applies the safety multiplier and the hard cap to a raw
// node-suggested price. The multiplier is truncated to two decimal places
// before use so the scaling stays in integer arithmetic:
//
//	adjusted = raw * floor(multiplier*100) / 100
//
// The result never exceeds maxWei.
func AdjustGasPrice(rawWei *big.Int, multiplier decimal.Decimal, maxWei *big.Int) *big.Int {
	scaled := multiplier.Mul(decimal.NewFromInt(100)).Floor().BigInt()

	adjusted := new(big.Int).Mul(rawWei, scaled)
	adjusted.Div(adjusted, big.NewInt(100))

	if maxWei != nil && adjusted.Cmp(maxWei) > 0 {
		return new(big.Int).Set(maxWei)
	}
	return adjusted
}

// GasCost is the full cost estimate for an operation: the adjusted price it
// was computed with, and the resulting cost in native units and in fiat.
// NativePriceFiat is the conversion rate the fiat figures were derived with,
// kept so downstream profit math uses the same rate.
type GasCost struct {
	GasLimit        uint64
	RawWei          *big.Int
	PriceWei        *big.Int
	CostNative      decimal.Decimal
	CostFiat        decimal.Decimal
	NativePriceFiat decimal.Decimal
}

// ComputeGasCost derives the total cost for gasLimit units at priceWei per
// unit. nativePriceFiat is the fiat price of one whole native unit.
func ComputeGasCost(gasLimit uint64, rawWei, priceWei *big.Int, nativePriceFiat decimal.Decimal) *GasCost {
	totalWei := new(big.Int).Mul(priceWei, new(big.Int).SetUint64(gasLimit))
	costNative := decimal.NewFromBigInt(totalWei, -nativeDecimals)

	return &GasCost{
		GasLimit:        gasLimit,
		RawWei:          new(big.Int).Set(rawWei),
		PriceWei:        new(big.Int).Set(priceWei),
		CostNative:      costNative,
		CostFiat:        costNative.Mul(nativePriceFiat),
		NativePriceFiat: nativePriceFiat,
	}
}

// GweiToWei converts a gwei value to wei, truncating sub-wei precision.
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Mul(decimal.NewFromBigInt(WeiPerGwei, 0)).Truncate(0).BigInt()
}
