// Package storage defines the persistence contract for evaluated
// opportunities, independent of the backing engine.
package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OpportunityRecord is the flat persistence shape of one evaluated
// opportunity. Token amounts are stored in display units; addresses and
// venues as plain strings so a record is readable without the token
// registry.
type OpportunityRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TokenInAddress  string `json:"token_in_address"`
	TokenInSymbol   string `json:"token_in_symbol"`
	TokenOutAddress string `json:"token_out_address"`
	TokenOutSymbol  string `json:"token_out_symbol"`

	BuyVenue  string `json:"buy_venue"`
	SellVenue string `json:"sell_venue"`

	AmountIn      decimal.Decimal `json:"amount_in"`
	AmountOutLeg1 decimal.Decimal `json:"amount_out_leg1"`
	AmountOutLeg2 decimal.Decimal `json:"amount_out_leg2"`

	GrossProfit decimal.Decimal `json:"gross_profit"`
	ROI         decimal.Decimal `json:"roi"`

	GasCostNative decimal.Decimal `json:"gas_cost_native"`
	GasCostFiat   decimal.Decimal `json:"gas_cost_fiat"`
	NetProfitFiat decimal.Decimal `json:"net_profit_fiat"`

	Profitable bool   `json:"profitable"`
	Status     string `json:"status"`

	RouteLeg1 string `json:"route_leg1"`
	RouteLeg2 string `json:"route_leg2"`

	// Price impact is optional: nil means the venue did not report it,
	// which is distinct from a reported impact of zero.
	PriceImpactLeg1 *decimal.Decimal `json:"price_impact_leg1,omitempty"`
	PriceImpactLeg2 *decimal.Decimal `json:"price_impact_leg2,omitempty"`
}

const (
	// DefaultPageLimit applies when a listing request gives no limit.
	DefaultPageLimit = 20
	// MaxPageLimit caps how many records one page may carry.
	MaxPageLimit = 100
)

// Filter narrows a listing query. Zero values mean "no constraint".
type Filter struct {
	// Token matches records where either leg's token symbol or address
	// equals the given value.
	Token  string
	Status string
	Page   int
	Limit  int
}

// Normalize clamps paging parameters into their valid ranges.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Offset returns the number of records to skip for the normalized filter.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// PageMeta describes one page of a listing result.
type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPageMeta computes paging metadata for a normalized filter and a total
// row count. Pages is the ceiling of total over limit.
func NewPageMeta(f Filter, total int64) PageMeta {
	limit := int64(f.Limit)
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return PageMeta{
		Page:  f.Page,
		Limit: f.Limit,
		Total: total,
		Pages: pages,
	}
}

// OpportunityStore persists and queries opportunity records.
type OpportunityStore interface {
	// Insert durably stores one record.
	Insert(ctx context.Context, rec *OpportunityRecord) error
	// GetByID returns a single record, or CodeRecordNotFound.
	GetByID(ctx context.Context, id string) (*OpportunityRecord, error)
	// List returns one page of records, newest first.
	List(ctx context.Context, f Filter) ([]*OpportunityRecord, PageMeta, error)
	// Close releases any held resources.
	Close() error
}
