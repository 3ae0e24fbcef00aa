// Package app contains port definitions for the pricing context.
package app

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceOracle reports the fiat price of one whole native unit (e.g. ETH/USD).
type PriceOracle interface {
	NativePriceFiat(ctx context.Context) (decimal.Decimal, error)
}
