package app

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	blockchainApp "github.com/fd1az/dex-monitor/business/blockchain/app"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

// Resolver resolves token descriptors: the static known-token table first,
// an on-chain ERC-20 metadata read as fallback. Resolved tokens are added to
// the registry so each address is read from the chain at most once.
type Resolver struct {
	chainID  uint64
	registry *asset.Registry
	reader   blockchainApp.TokenMetadataReader
	log      logger.LoggerInterface

	mu sync.Mutex
}

// NewResolver creates a Resolver over the given registry.
func NewResolver(chainID uint64, registry *asset.Registry, reader blockchainApp.TokenMetadataReader, log logger.LoggerInterface) *Resolver {
	return &Resolver{
		chainID:  chainID,
		registry: registry,
		reader:   reader,
		log:      log,
	}
}

// Resolve returns the token descriptor for an address.
func (r *Resolver) Resolve(ctx context.Context, address common.Address) (*asset.Token, error) {
	if t, ok := r.registry.Get(r.chainID, address); ok {
		return t, nil
	}

	meta, err := r.reader.ReadTokenMetadata(ctx, address)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeTokenResolutionFailed, address.Hex())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// A concurrent resolve may have won the race.
	if t, ok := r.registry.Get(r.chainID, address); ok {
		return t, nil
	}

	t := asset.NewToken(r.chainID, address, meta.Symbol, meta.Name, meta.Decimals)
	r.registry.Register(t)

	r.log.Debug(ctx, "token resolved on chain",
		"address", address.Hex(),
		"symbol", meta.Symbol,
		"decimals", meta.Decimals,
	)

	return t, nil
}
