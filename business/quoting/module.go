// Package quoting implements the quoting bounded context: venue-addressed
// swap quotes and token resolution.
package quoting

import (
	"context"

	blockchainDI "github.com/fd1az/dex-monitor/business/blockchain/di"
	"github.com/fd1az/dex-monitor/business/quoting/app"
	quotingDI "github.com/fd1az/dex-monitor/business/quoting/di"
	"github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/business/quoting/infra/univ3"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
)

// Module implements the quoting bounded context.
type Module struct{}

// RegisterServices registers all quoting services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, quotingDI.TokenResolver, func(sr di.ServiceRegistry) app.TokenResolver {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		return app.NewResolver(cfg.Ethereum.ChainID, registry,
			blockchainDI.GetTokenMetadataReader(sr), log)
	})

	di.RegisterToken(c, quotingDI.QuoteService, func(sr di.ServiceRegistry) *app.QuoteService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		caller := blockchainDI.GetNodeClient(sr)

		providers := make(map[domain.Venue]app.QuoteProvider, len(cfg.Venues))
		for name, venueCfg := range cfg.Venues {
			provider, err := univ3.NewProvider(domain.Venue(name),
				venueCfg.QuoterAddressHex(), caller, log)
			if err != nil {
				panic("failed to create quote provider for " + name + ": " + err.Error())
			}
			providers[domain.Venue(name)] = provider
		}

		return app.NewQuoteService(providers, quotingDI.GetTokenResolver(sr))
	})

	return nil
}

// Startup resolves the quote service so wiring errors surface at boot.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := quotingDI.GetQuoteService(mono.Services())
	mono.Logger().Info(ctx, "quoting module started", "venues", len(svc.Venues()))
	return nil
}

// Shutdown has nothing to release; providers borrow the node client.
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}
