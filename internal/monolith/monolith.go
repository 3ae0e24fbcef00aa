// Package monolith provides the application container and module interface.
package monolith

import (
	"context"

	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/config"
	"github.com/fd1az/dex-monitor/internal/di"
	"github.com/fd1az/dex-monitor/internal/logger"
)

// Monolith is the main application container providing access to shared
// infrastructure. Connections to external systems (node, database) are owned
// by the modules that use them and reached through the service registry, not
// through package-level state.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	AssetRegistry() *asset.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
	Shutdown(context.Context) error
}

// app implements the Monolith interface.
type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	assetRegistry *asset.Registry
	container     di.Container
	started       []Module
}

// New creates a new Monolith instance.
func New(cfg *config.Config, log logger.LoggerInterface) *app {
	container := di.NewContainer()
	registry := asset.DefaultRegistry()

	container.RegisterValue("config", cfg)
	container.RegisterValue("logger", log)
	container.RegisterValue("assetRegistry", registry)

	return &app{
		config:        cfg,
		logger:        log,
		assetRegistry: registry,
		container:     container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules in order.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
		a.started = append(a.started, m)
	}
	return nil
}

// Shutdown stops started modules in reverse order. The first error is
// returned but shutdown continues through all modules.
func (a *app) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(a.started) - 1; i >= 0; i-- {
		if err := a.started[i].Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
