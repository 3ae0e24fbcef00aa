// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/dex-monitor/business/arbitrage/app"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// Public service tokens - exposed to other modules
var (
	Evaluator        = di.NewToken[*app.Evaluator]("arbitrage.Evaluator")
	Monitor          = di.NewToken[*app.Monitor]("arbitrage.Monitor")
	OpportunityStore = di.NewToken[storage.OpportunityStore]("arbitrage.OpportunityStore")
)

// Helper functions for type-safe access
func GetEvaluator(c di.ServiceRegistry) *app.Evaluator {
	return di.GetToken(c, Evaluator)
}

func GetMonitor(c di.ServiceRegistry) *app.Monitor {
	return di.GetToken(c, Monitor)
}

func GetOpportunityStore(c di.ServiceRegistry) storage.OpportunityStore {
	return di.GetToken(c, OpportunityStore)
}
