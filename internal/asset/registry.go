package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type registryKey struct {
	chainID uint64
	address common.Address
}

// Registry is a thread-safe table of known tokens keyed by chain and address.
// It is the first stop for token resolution; unknown addresses fall back to
// an on-chain metadata read.
type Registry struct {
	byAddress map[registryKey]*Token
	bySymbol  map[string][]*Token
	mu        sync.RWMutex
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[registryKey]*Token),
		bySymbol:  make(map[string][]*Token),
	}
}

// Register adds a token. Panics on duplicate registration: the known-token
// table is assembled once at startup.
func (r *Registry) Register(t *Token) {
	if t == nil {
		panic("asset: cannot register nil token")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey{chainID: t.ChainID(), address: t.Address()}
	if _, exists := r.byAddress[key]; exists {
		panic(fmt.Sprintf("asset: %s already registered", t))
	}
	r.byAddress[key] = t
	r.bySymbol[t.Symbol()] = append(r.bySymbol[t.Symbol()], t)
}

// Get retrieves a token by chain and address.
func (r *Registry) Get(chainID uint64, address common.Address) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byAddress[registryKey{chainID: chainID, address: address}]
	return t, ok
}

// GetBySymbol retrieves the token with the given symbol on a chain.
func (r *Registry) GetBySymbol(symbol string, chainID uint64) (*Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.bySymbol[symbol] {
		if t.ChainID() == chainID {
			return t, true
		}
	}
	return nil, false
}

// All returns all registered tokens.
func (r *Registry) All() []*Token {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Token, 0, len(r.byAddress))
	for _, t := range r.byAddress {
		result = append(result, t)
	}
	return result
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}
