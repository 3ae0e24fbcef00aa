// Package static provides a fixed-price oracle.
package static

import (
	"context"

	"github.com/shopspring/decimal"
)

// Oracle reports a constant fiat price for the native asset. Good enough for
// cost estimation where only the order of magnitude matters; swap in a live
// source when precision does.
type Oracle struct {
	price decimal.Decimal
}

// NewOracle creates a static oracle with the given price.
func NewOracle(price decimal.Decimal) *Oracle {
	return &Oracle{price: price}
}

// NativePriceFiat returns the configured price.
func (o *Oracle) NativePriceFiat(ctx context.Context) (decimal.Decimal, error) {
	return o.price, nil
}
