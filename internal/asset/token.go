// Package asset models tradable tokens and integer base-unit amounts.
// Amounts are big.Int in the token's smallest unit; decimal.Decimal appears
// only at boundaries (parsing requests, display, persistence).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Token describes a tradable asset on a chain: address identity plus display
// metadata. Immutable once constructed.
type Token struct {
	chainID  uint64
	address  common.Address
	symbol   string
	name     string
	decimals uint8
}

// NewToken creates a Token. The address is the identity; symbol and name are
// display metadata only.
func NewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Token {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	if name == "" {
		name = symbol
	}
	return &Token{
		chainID:  chainID,
		address:  address,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
	}
}

// ChainID returns the chain this token lives on.
func (t *Token) ChainID() uint64 {
	return t.chainID
}

// Address returns the token contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// Symbol returns the ticker symbol (e.g. "WETH").
func (t *Token) Symbol() string {
	return t.symbol
}

// Name returns the human-readable name.
func (t *Token) Name() string {
	return t.name
}

// Decimals returns the number of decimal places of the base unit.
func (t *Token) Decimals() uint8 {
	return t.decimals
}

// Equals compares tokens by chain and address. Address comparison is
// case-insensitive by construction: common.Address is canonical bytes.
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.chainID == other.chainID && t.address == other.address
}

// String returns a short human-readable representation.
func (t *Token) String() string {
	return fmt.Sprintf("%s(%s)", t.symbol, t.address.Hex())
}
