// Package main is the entry point for the DEX opportunity monitor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fd1az/dex-monitor/business/arbitrage"
	"github.com/fd1az/dex-monitor/business/blockchain"
	"github.com/fd1az/dex-monitor/business/pricing"
	"github.com/fd1az/dex-monitor/business/quoting"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/logger"
	"github.com/fd1az/dex-monitor/internal/monolith"
	"github.com/fd1az/dex-monitor/internal/server"
	"github.com/fd1az/dex-monitor/internal/telemetry"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const shutdownGrace = 15 * time.Second

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dex-monitor %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	// Configuration errors are the only fatal error class: better to die at
	// boot than monitor with wrong parameters.
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
	log.Info(ctx, "starting dex-monitor",
		"version", version,
		"environment", cfg.App.Environment,
	)

	if cfg.Telemetry.Enabled {
		provider, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			ZipkinURL:    cfg.Telemetry.ZipkinURL,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Warn(shutdownCtx, "telemetry shutdown failed", "error", err)
			}
		}()
	}

	mono := monolith.New(cfg, log)

	// Startup order follows the dependency chain: the node connection first,
	// then pricing and quoting on top of it, the monitor loop, and the API
	// surface last.
	modules := []monolith.Module{
		&pricing.Module{},
		&blockchain.Module{},
		&quoting.Module{},
		&arbitrage.Module{},
		&server.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	log.Info(ctx, "all modules started",
		"interval", cfg.Monitor.Interval.String(),
		"pairs", len(cfg.Monitor.Pairs),
		"port", cfg.Server.Port,
	)

	<-ctx.Done()
	log.Info(context.WithoutCancel(ctx), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := mono.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
