// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a fiat price observation for the native asset.
type PricePoint struct {
	Symbol    string
	Price     decimal.Decimal
	Source    string
	Timestamp time.Time
}

// NewPricePoint creates a PricePoint stamped with the current time.
func NewPricePoint(symbol string, price decimal.Decimal, source string) *PricePoint {
	return &PricePoint{
		Symbol:    symbol,
		Price:     price,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// Age returns how old the observation is.
func (p *PricePoint) Age() time.Duration {
	return time.Since(p.Timestamp)
}
