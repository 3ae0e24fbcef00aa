package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	blockchainApp "github.com/fd1az/dex-monitor/business/blockchain/app"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

type fakeMetadataReader struct {
	meta  *blockchainApp.TokenMetadata
	err   error
	calls int
}

func (f *fakeMetadataReader) ReadTokenMetadata(ctx context.Context, address common.Address) (*blockchainApp.TokenMetadata, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func TestResolveKnownToken(t *testing.T) {
	reader := &fakeMetadataReader{err: errors.New("should not be called")}
	r := NewResolver(asset.ChainIDEthereum, asset.DefaultRegistry(), reader, logger.Nop())

	token, err := r.Resolve(context.Background(), asset.AddrWETH)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if token.Symbol() != "WETH" {
		t.Errorf("Symbol() = %s, want WETH", token.Symbol())
	}
	if reader.calls != 0 {
		t.Errorf("reader calls = %d, want 0 for known token", reader.calls)
	}
}

func TestResolveFallsBackToChain(t *testing.T) {
	unknown := common.HexToAddress("0x514910771AF9Ca656af840dff83E8264EcF986CA")
	reader := &fakeMetadataReader{meta: &blockchainApp.TokenMetadata{
		Symbol:   "LINK",
		Name:     "ChainLink Token",
		Decimals: 18,
	}}
	r := NewResolver(asset.ChainIDEthereum, asset.DefaultRegistry(), reader, logger.Nop())

	ctx := context.Background()
	token, err := r.Resolve(ctx, unknown)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if token.Symbol() != "LINK" || token.Decimals() != 18 {
		t.Errorf("resolved %s/%d, want LINK/18", token.Symbol(), token.Decimals())
	}

	// Second resolve hits the registry, not the chain.
	if _, err := r.Resolve(ctx, unknown); err != nil {
		t.Fatalf("Resolve() second call error: %v", err)
	}
	if reader.calls != 1 {
		t.Errorf("reader calls = %d, want 1 (cached after first resolve)", reader.calls)
	}
}

func TestResolveMetadataFailure(t *testing.T) {
	unknown := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	reader := &fakeMetadataReader{err: errors.New("execution reverted")}
	r := NewResolver(asset.ChainIDEthereum, asset.DefaultRegistry(), reader, logger.Nop())

	_, err := r.Resolve(context.Background(), unknown)
	if err == nil {
		t.Fatal("Resolve() expected error, got nil")
	}
	if code := apperror.GetCode(err); code != apperror.CodeTokenResolutionFailed {
		t.Errorf("error code = %s, want %s", code, apperror.CodeTokenResolutionFailed)
	}
}
