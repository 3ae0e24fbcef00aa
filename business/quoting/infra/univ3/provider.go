// Package univ3 implements the QuoteProvider interface against QuoterV2
// contracts, which Uniswap V3 and its forks (SushiSwap V3 included) share.
package univ3

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-monitor/business/quoting/app"
	"github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

const (
	tracerName = "github.com/fd1az/dex-monitor/business/quoting/infra/univ3"
	meterName  = "github.com/fd1az/dex-monitor/business/quoting/infra/univ3"
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// ContractCaller executes read-only contract calls. Satisfied by the
// blockchain context's node client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// providerMetrics holds OTEL metric instruments.
type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Provider implements QuoteProvider for one QuoterV2-compatible venue.
type Provider struct {
	venue     domain.Venue
	caller    ContractCaller
	quoter    common.Address
	quoterABI abi.ABI
	feeTiers  []int

	logger logger.LoggerInterface

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a provider for one venue's quoter contract.
func NewProvider(venue domain.Venue, quoter common.Address, caller ContractCaller, log logger.LoggerInterface) (*Provider, error) {
	parsedABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	p := &Provider{
		venue:     venue,
		caller:    caller,
		quoter:    quoter,
		quoterABI: parsedABI,
		feeTiers:  DefaultFeeTiers,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.quotesTotal, err = meter.Int64Counter(
		"dex_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"dex_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"dex_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	return err
}

// Quote retrieves the best quote across the probed fee tiers.
func (p *Provider) Quote(ctx context.Context, tokenIn, tokenOut *asset.Token, amountIn asset.Amount) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "univ3.quote",
		trace.WithAttributes(
			attribute.String("venue", string(p.venue)),
			attribute.String("token_in", tokenIn.Address().Hex()),
			attribute.String("token_out", tokenOut.Address().Hex()),
			attribute.String("amount_in", amountIn.Raw().String()),
		),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("venue", string(p.venue))))

	var bestQuote *QuoteResult
	var bestFeeTier int

	for _, feeTier := range p.feeTiers {
		quote, err := p.quoteForFeeTier(ctx, tokenIn.Address(), tokenOut.Address(), amountIn.Raw(), feeTier)
		if err != nil {
			span.AddEvent("fee_tier_failed",
				trace.WithAttributes(
					attribute.Int("fee_tier", feeTier),
					attribute.String("error", err.Error()),
				),
			)
			continue
		}
		if quote.AmountOut.Sign() <= 0 {
			continue
		}

		// Keep the best (highest output) quote
		if bestQuote == nil || quote.AmountOut.Cmp(bestQuote.AmountOut) > 0 {
			bestQuote = quote
			bestFeeTier = feeTier
		}
	}

	latency := float64(time.Since(start).Milliseconds())
	p.metrics.quoteLatency.Record(ctx, latency,
		metric.WithAttributes(attribute.String("venue", string(p.venue))))

	if bestQuote == nil {
		p.metrics.quoteErrors.Add(ctx, 1,
			metric.WithAttributes(attribute.String("venue", string(p.venue))))
		span.SetStatus(codes.Error, "no valid quote")
		return nil, apperror.New(apperror.CodeNoRouteFound,
			apperror.WithContext(fmt.Sprintf("%s: no pool for %s -> %s",
				p.venue, tokenIn.Symbol(), tokenOut.Symbol())))
	}

	amtOut := asset.NewAmount(tokenOut, bestQuote.AmountOut)
	result := domain.NewQuote(p.venue, tokenIn, tokenOut, amountIn, amtOut,
		bestQuote.GasEstimate.Uint64(), bestFeeTier)

	span.SetAttributes(
		attribute.String("amount_out", bestQuote.AmountOut.String()),
		attribute.Int("fee_tier", bestFeeTier),
		attribute.Int64("gas_estimate", bestQuote.GasEstimate.Int64()),
	)
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "dex quote",
		"venue", string(p.venue),
		"path", result.PathString(),
		"amount_in", amountIn.String(),
		"amount_out", amtOut.String(),
		"fee_tier", bestFeeTier,
	)

	return result, nil
}

// quoteForFeeTier calls QuoterV2.quoteExactInputSingle for a specific fee tier.
func (p *Provider) quoteForFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, feeTier int) (*QuoteResult, error) {
	callData, err := p.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0), // No price limit
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := p.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &p.quoter,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeContractCallFailed,
			fmt.Sprintf("%s quoter call failed for fee tier %d", p.venue, feeTier))
	}

	outputs, err := p.quoterABI.Unpack("quoteExactInputSingle", result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}
