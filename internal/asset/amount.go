package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilToken        = errors.New("asset: nil token")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTokenMismatch   = errors.New("asset: cannot operate on different tokens")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for token")
)

// Amount is an immutable quantity of a token in its smallest base unit.
type Amount struct {
	raw   *big.Int
	token *Token
}

// NewAmount creates an Amount from a raw base-unit value. The value must be
// non-negative: quote outputs and trade inputs are never negative at this
// layer.
func NewAmount(token *Token, raw *big.Int) Amount {
	if token == nil {
		panic(ErrNilToken)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return Amount{
		raw:   new(big.Int).Set(raw),
		token: token,
	}
}

// Zero creates a zero Amount for the given token.
func Zero(token *Token) Amount {
	return NewAmount(token, big.NewInt(0))
}

// Raw returns a copy of the raw base-unit value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() *Token {
	return a.token
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Cmp compares two amounts of the same token: -1, 0 or 1.
func (a Amount) Cmp(b Amount) (int, error) {
	if a.token == nil || b.token == nil {
		return 0, ErrNilToken
	}
	if !a.token.Equals(b.token) {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTokenMismatch, a.token.Symbol(), b.token.Symbol())
	}
	return a.raw.Cmp(b.raw), nil
}

// ToDecimal converts the amount to display units. Boundary function: use for
// parsing, display and persistence, not core arithmetic.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.token == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// ParseDecimal creates an Amount from a display-unit decimal value.
func ParseDecimal(token *Token, d decimal.Decimal) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(token.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}
	return NewAmount(token, scaled.BigInt()), nil
}

// ParseString creates an Amount from a display-unit decimal string.
func ParseString(token *Token, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(token, d)
}

// String returns a human-readable representation (e.g. "1.5 WETH").
func (a Amount) String() string {
	if a.token == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.token.Symbol())
}
