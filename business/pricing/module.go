// Package pricing implements the pricing bounded context: the fiat price
// oracle for the native asset.
package pricing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/business/pricing/app"
	pricingDI "github.com/fd1az/dex-monitor/business/pricing/di"
	"github.com/fd1az/dex-monitor/business/pricing/infra/binance"
	"github.com/fd1az/dex-monitor/business/pricing/infra/static"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct {
	oracle app.PriceOracle
}

// RegisterServices registers the configured price oracle.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, pricingDI.PriceOracle, func(sr di.ServiceRegistry) app.PriceOracle {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		staticPrice := decimal.NewFromFloat(cfg.Oracle.NativePriceUSD)

		if cfg.Oracle.Source == config.OracleSourceBinance {
			oracle, err := binance.NewOracle(binance.OracleConfig{
				Symbol:        cfg.Oracle.Symbol,
				CacheTTL:      cfg.Oracle.CacheTTL,
				FallbackPrice: staticPrice,
			}, log)
			if err != nil {
				panic("failed to create binance oracle: " + err.Error())
			}
			return oracle
		}

		return static.NewOracle(staticPrice)
	})

	return nil
}

// Startup resolves the oracle so wiring errors surface at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	m.oracle = pricingDI.GetPriceOracle(mono.Services())
	mono.Logger().Info(ctx, "pricing module started",
		"source", mono.Config().Oracle.Source)
	return nil
}

// Shutdown releases oracle resources.
func (m *Module) Shutdown(ctx context.Context) error {
	if closer, ok := m.oracle.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
