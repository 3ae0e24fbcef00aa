// Package server provides the HTTP API: opportunity queries, on-demand
// checks, token listing, health probes and the realtime WebSocket stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	arbitrageDomain "github.com/fd1az/dex-monitor/business/arbitrage/domain"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/health"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/ratelimit"
	"github.com/fd1az/dex-monitor/internal/server/ws"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// Config holds the HTTP server settings.
type Config struct {
	Port        int
	CORSOrigins []string
	// RateLimitPerMinute throttles API requests. Zero disables throttling.
	RateLimitPerMinute int
}

// OnDemandChecker runs one evaluation outside the monitor cadence.
// Satisfied by the arbitrage monitor.
type OnDemandChecker interface {
	CheckNow(ctx context.Context, tokenIn, tokenOut common.Address, amountIn decimal.Decimal) (*arbitrageDomain.Opportunity, error)
}

// Server hosts the REST API and the WebSocket endpoint on one listener.
type Server struct {
	cfg Config
	log logger.LoggerInterface

	store    storage.OpportunityStore
	monitor  OnDemandChecker
	registry *asset.Registry
	hub      *ws.Hub
	checker  *health.Checker
	limiter  *ratelimit.Limiter

	httpServer *http.Server
}

// New creates a Server with all routes mounted.
func New(cfg Config, store storage.OpportunityStore, monitor OnDemandChecker,
	registry *asset.Registry, hub *ws.Hub, checker *health.Checker, log logger.LoggerInterface) *Server {

	s := &Server{
		cfg:      cfg,
		log:      log,
		store:    store,
		monitor:  monitor,
		registry: registry,
		hub:      hub,
		checker:  checker,
	}
	if cfg.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.New(cfg.RateLimitPerMinute)
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(s.routes(), "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.checker.HandleHealth)
	mux.HandleFunc("GET /ready", s.checker.HandleReady)
	mux.HandleFunc("GET /live", s.checker.HandleLive)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/arbitrage/opportunities", s.handleListOpportunities)
	mux.HandleFunc("GET /api/arbitrage/opportunities/{id}", s.handleGetOpportunity)
	mux.HandleFunc("POST /api/arbitrage/check", s.handleCheck)
	mux.HandleFunc("GET /api/arbitrage/tokens", s.handleListTokens)

	mux.HandleFunc("GET /ws", s.hub.HandleWS)

	return s.withCORS(s.withRateLimit(s.withLogging(mux)))
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) {
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error(ctx, "http server failed", "error", err)
		}
	}()
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
