// Package arbitrage implements the arbitrage bounded context: round-trip
// opportunity evaluation, the monitor loop and opportunity persistence.
package arbitrage

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/dex-monitor/business/arbitrage/di"
	"github.com/fd1az/dex-monitor/business/arbitrage/infra"
	blockchainDI "github.com/fd1az/dex-monitor/business/blockchain/di"
	quotingDI "github.com/fd1az/dex-monitor/business/quoting/di"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
	"github.com/fd1az/dex-monitor/internal/server/ws"
	"github.com/fd1az/dex-monitor/internal/storage"
	"github.com/fd1az/dex-monitor/internal/storage/memory"
	"github.com/fd1az/dex-monitor/internal/storage/postgres"
)

// Module implements the arbitrage bounded context. It owns the database
// connection; no other module touches it directly.
type Module struct {
	pgClient *postgres.Client
	store    storage.OpportunityStore
	monitor  *app.Monitor
}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.OpportunityStore, func(sr di.ServiceRegistry) storage.OpportunityStore {
		if m.store == nil {
			panic("arbitrage: opportunity store requested before module startup")
		}
		return m.store
	})

	di.RegisterToken(c, arbitrageDI.Evaluator, func(sr di.ServiceRegistry) *app.Evaluator {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewEvaluator(app.EvaluatorConfig{
			BuyVenue:           quotingDomain.Venue(cfg.Monitor.BuyVenue),
			SellVenue:          quotingDomain.Venue(cfg.Monitor.SellVenue),
			MinProfitThreshold: cfg.Monitor.MinProfitThresholdDecimal(),
		},
			quotingDI.GetQuoteService(sr),
			blockchainDI.GetGasPricer(sr),
			quotingDI.GetTokenResolver(sr),
			log,
		)
	})

	di.RegisterToken(c, arbitrageDI.Monitor, func(sr di.ServiceRegistry) *app.Monitor {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pairs := make([]app.Pair, 0, len(cfg.Monitor.Pairs))
		for _, p := range cfg.Monitor.Pairs {
			pairs = append(pairs, app.Pair{
				TokenIn:  common.HexToAddress(p.TokenIn),
				TokenOut: common.HexToAddress(p.TokenOut),
				AmountIn: decimal.RequireFromString(p.AmountIn),
			})
		}

		sink := infra.NewSink(arbitrageDI.GetOpportunityStore(sr), ws.GetHub(sr))

		monitor, err := app.NewMonitor(app.MonitorConfig{
			Interval:     cfg.Monitor.Interval,
			CycleTimeout: cfg.Monitor.CycleTimeout,
			Pairs:        pairs,
		}, arbitrageDI.GetEvaluator(sr), sink, log)
		if err != nil {
			panic("failed to create monitor: " + err.Error())
		}
		return monitor
	})

	return nil
}

// Startup opens the opportunity store and launches the monitor loop. With no
// database configured the module runs on the in-memory store.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()

	if cfg.Database.DSN != "" {
		client, err := postgres.Connect(ctx, postgres.ClientConfig{
			DSN:      cfg.Database.DSN,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return err
		}
		if err := client.RunMigrations(ctx); err != nil {
			client.Close()
			return err
		}
		m.pgClient = client
		m.store = postgres.NewOpportunityStore(client.Pool())
		mono.Logger().Info(ctx, "opportunity store ready", "backend", "postgres")
	} else {
		m.store = memory.NewOpportunityStore()
		mono.Logger().Warn(ctx, "no database configured, opportunities will not survive restarts")
	}

	m.monitor = arbitrageDI.GetMonitor(mono.Services())
	m.monitor.Start(ctx)

	mono.Logger().Info(ctx, "arbitrage module started", "pairs", len(cfg.Monitor.Pairs))
	return nil
}

// Shutdown stops the monitor and releases the database connection.
func (m *Module) Shutdown(ctx context.Context) error {
	var firstErr error

	if m.monitor != nil {
		if err := m.monitor.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.pgClient != nil {
		m.pgClient.Close()
	}
	return firstErr
}
