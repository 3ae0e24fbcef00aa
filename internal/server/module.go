package server

import (
	"context"

	arbitrageDI "github.com/fd1az/dex-monitor/business/arbitrage/di"
	blockchainDI "github.com/fd1az/dex-monitor/business/blockchain/di"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/health"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
	"github.com/fd1az/dex-monitor/internal/server/ws"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// ServerToken exposes the HTTP server through the registry.
var ServerToken = di.NewToken[*Server]("server.HTTP")

// GetServer returns the HTTP server from the registry.
func GetServer(c di.ServiceRegistry) *Server {
	return di.GetToken(c, ServerToken)
}

// Module hosts the HTTP API and the WebSocket hub.
type Module struct {
	server *Server
	hub    *ws.Hub
}

// RegisterServices registers the hub and the HTTP server with the DI
// container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, ws.HubToken, func(sr di.ServiceRegistry) *ws.Hub {
		log := sr.Get("logger").(logger.LoggerInterface)
		return ws.NewHub(log)
	})

	di.RegisterToken(c, ServerToken, func(sr di.ServiceRegistry) *Server {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		store := arbitrageDI.GetOpportunityStore(sr)
		node := blockchainDI.GetNodeClient(sr)

		checker := health.NewChecker(cfg.App.Name)
		checker.Register("node", func(ctx context.Context) (bool, string) {
			if !node.Connected() {
				return false, "node client not connected"
			}
			return true, ""
		})
		checker.Register("store", func(ctx context.Context) (bool, string) {
			if _, _, err := store.List(ctx, storage.Filter{Page: 1, Limit: 1}); err != nil {
				return false, err.Error()
			}
			return true, ""
		})

		return New(Config{
			Port:               cfg.Server.Port,
			CORSOrigins:        cfg.Server.CORSOrigins,
			RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
		}, store, arbitrageDI.GetMonitor(sr), registry, ws.GetHub(sr), checker, log)
	})

	return nil
}

// Startup launches the listener. The arbitrage module must already be
// started: the server reaches its store and monitor through the registry.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	m.hub = ws.GetHub(mono.Services())
	m.server = GetServer(mono.Services())
	m.server.Start(ctx)

	mono.Logger().Info(ctx, "server module started", "port", mono.Config().Server.Port)
	return nil
}

// Shutdown drains HTTP and disconnects WebSocket clients.
func (m *Module) Shutdown(ctx context.Context) error {
	var firstErr error
	if m.server != nil {
		firstErr = m.server.Stop(ctx)
	}
	if m.hub != nil {
		if err := m.hub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
