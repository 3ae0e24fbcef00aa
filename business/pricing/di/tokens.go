// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/dex-monitor/business/pricing/app"
	"github.com/fd1az/dex-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PriceOracle = di.NewToken[app.PriceOracle]("pricing.PriceOracle")
)

// Helper functions for type-safe access
func GetPriceOracle(c di.ServiceRegistry) app.PriceOracle {
	return di.GetToken(c, PriceOracle)
}
