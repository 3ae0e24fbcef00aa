package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDArbitrum = 42161
	ChainIDOptimism = 10
)

// NativeDecimals is the decimal precision of the chain's native asset.
const NativeDecimals = 18

// Well-known token addresses on Ethereum Mainnet
var (
	AddrWETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	AddrUSDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	AddrUSDT = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	AddrDAI  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	AddrWBTC = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
)

// Well-known token instances
var (
	WETH = NewToken(ChainIDEthereum, AddrWETH, "WETH", "Wrapped Ether", 18)
	USDC = NewToken(ChainIDEthereum, AddrUSDC, "USDC", "USD Coin", 6)
	USDT = NewToken(ChainIDEthereum, AddrUSDT, "USDT", "Tether USD", 6)
	DAI  = NewToken(ChainIDEthereum, AddrDAI, "DAI", "Dai Stablecoin", 18)
	WBTC = NewToken(ChainIDEthereum, AddrWBTC, "WBTC", "Wrapped Bitcoin", 8)
)

// DefaultRegistry returns a registry pre-populated with the known-token table
// for Ethereum Mainnet.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(DAI)
	r.Register(WBTC)
	return r
}
