package app

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/business/blockchain/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/cache"
	"github.com/fd1az/dex-monitor/internal/logger"
)

// GasPricerConfig holds gas pricing parameters.
type GasPricerConfig struct {
	// Multiplier is the safety factor applied to the node-suggested price.
	// Truncated to two decimal places before use.
	Multiplier decimal.Decimal
	// MaxPriceWei caps the adjusted price.
	MaxPriceWei *big.Int
	// CacheTTL bounds how long a raw price observation is reused. A value
	// around one block time keeps repeated evaluations in a cycle from
	// hammering the node.
	CacheTTL time.Duration
}

// GasPricer turns raw node gas prices into full cost estimates: it applies
// the safety multiplier and cap, then converts to native and fiat cost.
type GasPricer struct {
	cfg    GasPricerConfig
	source GasSource
	oracle PriceOracle
	log    logger.LoggerInterface

	priceCache *cache.Cache[string, *domain.GasPrice]
}

// NewGasPricer creates a GasPricer.
func NewGasPricer(cfg GasPricerConfig, source GasSource, oracle PriceOracle, log logger.LoggerInterface) *GasPricer {
	return &GasPricer{
		cfg:        cfg,
		source:     source,
		oracle:     oracle,
		log:        log,
		priceCache: cache.New[string, *domain.GasPrice](time.Minute),
	}
}

// AdjustedGasPrice returns the current gas price with multiplier and cap
// applied.
func (p *GasPricer) AdjustedGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	raw, err := p.rawGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	adjusted := domain.AdjustGasPrice(raw.Wei, p.cfg.Multiplier, p.cfg.MaxPriceWei)
	return domain.NewGasPrice(adjusted), nil
}

// EstimateCost returns the full cost estimate for an operation consuming
// gasLimit gas units at the current adjusted price.
func (p *GasPricer) EstimateCost(ctx context.Context, gasLimit uint64) (*domain.GasCost, error) {
	raw, err := p.rawGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	adjusted := domain.AdjustGasPrice(raw.Wei, p.cfg.Multiplier, p.cfg.MaxPriceWei)

	fiat, err := p.oracle.NativePriceFiat(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeGasPriceFailed, "native price lookup failed")
	}

	cost := domain.ComputeGasCost(gasLimit, raw.Wei, adjusted, fiat)

	p.log.Debug(ctx, "gas cost estimated",
		"gas_limit", gasLimit,
		"raw_gwei", raw.Gwei(),
		"adjusted_gwei", domain.NewGasPrice(adjusted).Gwei(),
		"cost_native", cost.CostNative.String(),
		"cost_fiat", cost.CostFiat.String(),
	)

	return cost, nil
}

func (p *GasPricer) rawGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	if price, found := p.priceCache.Get(ctx, "current"); found {
		return price, nil
	}

	wei, err := p.source.SuggestGasPrice(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeGasPriceFailed, "gas price fetch failed")
	}

	price := domain.NewGasPrice(wei)
	p.priceCache.Set(ctx, "current", price, p.cfg.CacheTTL)
	return price, nil
}

// Close releases the pricer's cache resources.
func (p *GasPricer) Close() error {
	p.priceCache.Close()
	return nil
}
