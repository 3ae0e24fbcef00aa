// Package app contains application services and port definitions for the
// blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// GasSource provides raw gas prices from a node.
type GasSource interface {
	// SuggestGasPrice returns the node-suggested gas price in wei.
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// PriceOracle reports the fiat price of one whole native unit (e.g. ETH/USD).
// Implementations may be static or backed by a live feed; the gas pricer does
// not care which.
type PriceOracle interface {
	NativePriceFiat(ctx context.Context) (decimal.Decimal, error)
}

// TokenMetadata is the on-chain ERC-20 metadata of a token contract.
type TokenMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
}

// TokenMetadataReader reads ERC-20 metadata from a token contract.
type TokenMetadataReader interface {
	ReadTokenMetadata(ctx context.Context, address common.Address) (*TokenMetadata, error)
}
