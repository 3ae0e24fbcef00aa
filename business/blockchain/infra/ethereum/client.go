// Package ethereum implements the blockchain context's node-facing adapters
// using go-ethereum.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-monitor/business/blockchain/app"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/circuitbreaker"
	"github.com/fd1az/dex-monitor/internal/logger"
)

const (
	tracerName = "github.com/fd1az/dex-monitor/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/dex-monitor/business/blockchain/infra/ethereum"
)

const erc20MetadataABI = `[
	{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"name":"name","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"type":"uint8"}]}
]`

// ClientConfig holds configuration for the node client.
type ClientConfig struct {
	RPCURL  string
	ChainID uint64
}

type clientMetrics struct {
	gasPriceFetches metric.Int64Counter
	gasPriceGwei    metric.Float64Gauge
	contractCalls   metric.Int64Counter
}

// Client owns the connection to the Ethereum node. It is created and closed
// by the blockchain module; everything else receives it through ports, never
// through package-level state.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	client   *ethclient.Client
	clientMu sync.RWMutex

	erc20ABI abi.ABI

	gasCB  *circuitbreaker.CircuitBreaker[*big.Int]
	callCB *circuitbreaker.CircuitBreaker[[]byte]

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a node client. Call Connect before use.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20MetadataABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}

	c := &Client{
		config:   cfg,
		logger:   log,
		erc20ABI: parsed,
		gasCB:    circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("eth-gas")),
		callCB:   circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("eth-call")),
		tracer:   otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.gasPriceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	c.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Last raw gas price observed, in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	c.metrics.contractCalls, err = meter.Int64Counter(
		"contract_calls_total",
		metric.WithDescription("Total read-only contract calls"),
		metric.WithUnit("{call}"),
	)
	return err
}

// Connect establishes the connection to the Ethereum node and verifies the
// chain ID matches the configured one.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "eth.connect",
		trace.WithAttributes(attribute.String("url", c.config.RPCURL)),
	)
	defer span.End()

	client, err := ethclient.DialContext(ctx, c.config.RPCURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return apperror.New(apperror.CodeRPCConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to node"))
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "chain id failed")
		return apperror.New(apperror.CodeRPCConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to read chain id"))
	}
	if c.config.ChainID != 0 && chainID.Uint64() != c.config.ChainID {
		client.Close()
		err := apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("node reports chain %d, configured %d",
				chainID.Uint64(), c.config.ChainID)))
		span.RecordError(err)
		return err
	}

	c.clientMu.Lock()
	c.client = client
	c.clientMu.Unlock()

	span.SetStatus(codes.Ok, "connected")
	c.logger.Info(ctx, "node client connected",
		"url", c.config.RPCURL, "chain_id", chainID.Uint64())

	return nil
}

// Connected reports whether the client currently holds a live connection.
func (c *Client) Connected() bool {
	c.clientMu.RLock()
	defer c.clientMu.RUnlock()
	return c.client != nil
}

func (c *Client) conn() (*ethclient.Client, error) {
	c.clientMu.RLock()
	defer c.clientMu.RUnlock()
	if c.client == nil {
		return nil, apperror.New(apperror.CodeRPCConnectionFailed,
			apperror.WithContext("node client not connected"))
	}
	return c.client, nil
}

// SuggestGasPrice returns the node-suggested gas price in wei.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	ctx, span := c.tracer.Start(ctx, "eth.suggest_gas_price")
	defer span.End()

	c.metrics.gasPriceFetches.Add(ctx, 1)

	client, err := c.conn()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	wei, err := c.gasCB.Execute(func() (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.Wrap(err, apperror.CodeGasPriceFailed, "gas price fetch failed")
	}

	gweiF, _ := new(big.Float).Quo(
		new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	c.metrics.gasPriceGwei.Record(ctx, gweiF)

	span.SetAttributes(attribute.Float64("gwei", gweiF))
	span.SetStatus(codes.Ok, "fetched")
	return wei, nil
}

// CallContract executes a read-only contract call at the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "eth.call")
	defer span.End()

	if msg.To != nil {
		span.SetAttributes(attribute.String("to", msg.To.Hex()))
	}
	c.metrics.contractCalls.Add(ctx, 1)

	client, err := c.conn()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	out, err := c.callCB.Execute(func() ([]byte, error) {
		return client.CallContract(ctx, msg, blockNumber)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return nil, apperror.Wrap(err, apperror.CodeContractCallFailed, "contract call failed")
	}

	span.SetStatus(codes.Ok, "called")
	return out, nil
}

// ReadTokenMetadata reads ERC-20 symbol, name and decimals from a token
// contract. Used as the fallback when a token is not in the static registry.
func (c *Client) ReadTokenMetadata(ctx context.Context, address common.Address) (*app.TokenMetadata, error) {
	ctx, span := c.tracer.Start(ctx, "eth.token_metadata",
		trace.WithAttributes(attribute.String("token", address.Hex())),
	)
	defer span.End()

	meta := &app.TokenMetadata{}

	var symbol string
	if err := c.callAndUnpack(ctx, address, "symbol", &symbol); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "symbol failed")
		return nil, apperror.Wrap(err, apperror.CodeTokenResolutionFailed,
			fmt.Sprintf("symbol() on %s", address.Hex()))
	}
	meta.Symbol = symbol

	var decimals uint8
	if err := c.callAndUnpack(ctx, address, "decimals", &decimals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decimals failed")
		return nil, apperror.Wrap(err, apperror.CodeTokenResolutionFailed,
			fmt.Sprintf("decimals() on %s", address.Hex()))
	}
	meta.Decimals = decimals

	// name() is optional in practice; fall back to the symbol.
	var name string
	if err := c.callAndUnpack(ctx, address, "name", &name); err != nil {
		name = symbol
	}
	meta.Name = name

	span.SetAttributes(
		attribute.String("symbol", meta.Symbol),
		attribute.Int("decimals", int(meta.Decimals)),
	)
	span.SetStatus(codes.Ok, "resolved")
	return meta, nil
}

func (c *Client) callAndUnpack(ctx context.Context, address common.Address, method string, out any) error {
	data, err := c.erc20ABI.Pack(method)
	if err != nil {
		return err
	}

	raw, err := c.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
	if err != nil {
		return err
	}

	results, err := c.erc20ABI.Unpack(method, raw)
	if err != nil || len(results) == 0 {
		return fmt.Errorf("unpack %s: %w", method, err)
	}

	switch v := out.(type) {
	case *string:
		s, ok := results[0].(string)
		if !ok {
			return fmt.Errorf("%s returned %T, want string", method, results[0])
		}
		*v = s
	case *uint8:
		d, ok := results[0].(uint8)
		if !ok {
			return fmt.Errorf("%s returned %T, want uint8", method, results[0])
		}
		*v = d
	default:
		return fmt.Errorf("unsupported output type %T", out)
	}
	return nil
}

// Close closes the node connection.
func (c *Client) Close() error {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()

	if c.client != nil {
		c.client.Close()
		c.client = nil
	}
	return nil
}
