// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/dex-monitor/business/blockchain/app"
	"github.com/fd1az/dex-monitor/business/blockchain/infra/ethereum"
	"github.com/fd1az/dex-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	GasPricer           = di.NewToken[*app.GasPricer]("blockchain.GasPricer")
	TokenMetadataReader = di.NewToken[app.TokenMetadataReader]("blockchain.TokenMetadataReader")
	NodeClient          = di.NewToken[*ethereum.Client]("blockchain.NodeClient")
)

// Helper functions for type-safe access
func GetGasPricer(c di.ServiceRegistry) *app.GasPricer {
	return di.GetToken(c, GasPricer)
}

func GetTokenMetadataReader(c di.ServiceRegistry) app.TokenMetadataReader {
	return di.GetToken(c, TokenMetadataReader)
}

func GetNodeClient(c di.ServiceRegistry) *ethereum.Client {
	return di.GetToken(c, NodeClient)
}
