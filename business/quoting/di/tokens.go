// Package di contains dependency injection tokens for the quoting context.
package di

import (
	"github.com/fd1az/dex-monitor/business/quoting/app"
	"github.com/fd1az/dex-monitor/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuoteService  = di.NewToken[*app.QuoteService]("quoting.QuoteService")
	TokenResolver = di.NewToken[app.TokenResolver]("quoting.TokenResolver")
)

// Helper functions for type-safe access
func GetQuoteService(c di.ServiceRegistry) *app.QuoteService {
	return di.GetToken(c, QuoteService)
}

func GetTokenResolver(c di.ServiceRegistry) app.TokenResolver {
	return di.GetToken(c, TokenResolver)
}
