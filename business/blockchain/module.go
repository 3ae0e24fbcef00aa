// Package blockchain implements the blockchain bounded context: node
// connectivity, gas pricing and on-chain token metadata.
package blockchain

import (
	"context"

	"github.com/fd1az/dex-monitor/business/blockchain/app"
	blockchainDI "github.com/fd1az/dex-monitor/business/blockchain/di"
	"github.com/fd1az/dex-monitor/business/blockchain/domain"
	"github.com/fd1az/dex-monitor/business/blockchain/infra/ethereum"
	pricingDI "github.com/fd1az/dex-monitor/business/pricing/di"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct {
	client *ethereum.Client
	pricer *app.GasPricer
}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, blockchainDI.NodeClient, func(sr di.ServiceRegistry) *ethereum.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := ethereum.NewClient(ethereum.ClientConfig{
			RPCURL:  cfg.Ethereum.HTTPURL,
			ChainID: cfg.Ethereum.ChainID,
		}, log)
		if err != nil {
			panic("failed to create node client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, blockchainDI.TokenMetadataReader, func(sr di.ServiceRegistry) app.TokenMetadataReader {
		return blockchainDI.GetNodeClient(sr)
	})

	di.RegisterToken(c, blockchainDI.GasPricer, func(sr di.ServiceRegistry) *app.GasPricer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewGasPricer(app.GasPricerConfig{
			Multiplier:  cfg.Gas.PriceMultiplierDecimal(),
			MaxPriceWei: domain.GweiToWei(cfg.Gas.MaxPriceGweiDecimal()),
			CacheTTL:    cfg.Gas.CacheTTL,
		}, blockchainDI.GetNodeClient(sr), pricingDI.GetPriceOracle(sr), log)
	})

	return nil
}

// Startup connects the node client. Connection failure is fatal: nothing in
// the system works without the node.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	m.client = blockchainDI.GetNodeClient(mono.Services())
	if err := m.client.Connect(ctx); err != nil {
		return err
	}

	m.pricer = blockchainDI.GetGasPricer(mono.Services())

	mono.Logger().Info(ctx, "blockchain module started")
	return nil
}

// Shutdown releases the node connection.
func (m *Module) Shutdown(ctx context.Context) error {
	if m.pricer != nil {
		m.pricer.Close()
	}
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
