// Package di provides a minimal type-safe service container used to wire
// modules together at startup. Registration happens once during boot, before
// any concurrent access; resolution is lazy and memoized.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container.
type ServiceRegistry interface {
	// Get resolves a service by name, invoking its factory on first use.
	// Panics on unknown names: wiring errors are programmer errors and
	// should fail loudly at startup.
	Get(name string) any
}

// Container registers and resolves services by name.
type Container interface {
	ServiceRegistry
	Register(name string, factory func(ServiceRegistry) any)
	RegisterValue(name string, svc any)
}

type entry struct {
	factory func(ServiceRegistry) any
	once    sync.Once
	value   any
}

type container struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

func (c *container) Register(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[name]; exists {
		panic(fmt.Sprintf("di: service %q already registered", name))
	}
	c.entries[name] = &entry{factory: factory}
}

func (c *container) RegisterValue(name string, svc any) {
	c.Register(name, func(ServiceRegistry) any { return svc })
}

func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	e.once.Do(func() {
		e.value = e.factory(c)
	})
	return e.value
}

// Token is a typed handle for a service registered in the container.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registration name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a lazy factory under the token's name.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.Register(token.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a service by token, panicking on mistyped registrations.
func GetToken[T any](r ServiceRegistry, token Token[T]) T {
	svc := r.Get(token.name)
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.name, svc))
	}
	return typed
}
