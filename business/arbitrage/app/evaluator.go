package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

const tracerName = "github.com/fd1az/dex-monitor/business/arbitrage/app"

// EvaluatorConfig holds the evaluation parameters.
type EvaluatorConfig struct {
	BuyVenue  quotingDomain.Venue
	SellVenue quotingDomain.Venue
	// MinProfitThreshold is divided by 100 before comparison against ROI.
	MinProfitThreshold decimal.Decimal
}

// Evaluator composes two sequential quotes and a gas estimate into a
// round-trip profitability assessment. Leg 2 spends leg 1's output, so the
// legs are strictly ordered; the gas cost is estimated after both legs,
// once the total gas units are known.
type Evaluator struct {
	cfg      EvaluatorConfig
	quoter   Quoter
	gas      GasEstimator
	resolver TokenResolver
	log      logger.LoggerInterface
	tracer   trace.Tracer
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(cfg EvaluatorConfig, quoter Quoter, gas GasEstimator, resolver TokenResolver, log logger.LoggerInterface) *Evaluator {
	return &Evaluator{
		cfg:      cfg,
		quoter:   quoter,
		gas:      gas,
		resolver: resolver,
		log:      log,
		tracer:   otel.Tracer(tracerName),
	}
}

// Evaluate runs one round-trip check: tokenIn -> tokenOut on the buy venue,
// then back on the sell venue spending leg 1's output. amountIn is in
// tokenIn display units and must be positive; non-positive amounts are
// rejected before any network call.
func (e *Evaluator) Evaluate(ctx context.Context, tokenInAddr, tokenOutAddr common.Address, amountIn decimal.Decimal) (*domain.Opportunity, error) {
	ctx, span := e.tracer.Start(ctx, "arbitrage.evaluate",
		trace.WithAttributes(
			attribute.String("token_in", tokenInAddr.Hex()),
			attribute.String("token_out", tokenOutAddr.Hex()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	if !amountIn.IsPositive() {
		err := apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("amount in must be positive, got %s", amountIn)))
		span.RecordError(err)
		return nil, err
	}

	tokenIn, err := e.resolver.Resolve(ctx, tokenInAddr)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	tokenOut, err := e.resolver.Resolve(ctx, tokenOutAddr)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	probe, err := asset.ParseDecimal(tokenIn, amountIn)
	if err != nil {
		if errors.Is(err, asset.ErrTooManyDecimals) {
			return nil, apperror.New(apperror.CodeInvalidAmount,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("%s has %d decimals", tokenIn.Symbol(), tokenIn.Decimals())))
		}
		return nil, apperror.Wrap(err, apperror.CodeInvalidAmount, amountIn.String())
	}

	leg1, err := e.quoter.Quote(ctx, e.cfg.BuyVenue, tokenIn, tokenOut, probe)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "leg 1 failed")
		return nil, err
	}

	// Leg 2 spends leg 1's output: a round trip, not two independent quotes.
	leg2, err := e.quoter.Quote(ctx, e.cfg.SellVenue, tokenOut, tokenIn, leg1.AmountOut)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "leg 2 failed")
		return nil, err
	}

	cost, err := e.gas.EstimateCost(ctx, leg1.GasUnits+leg2.GasUnits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "gas estimate failed")
		return nil, err
	}

	opp := domain.NewOpportunity(leg1, leg2, cost, e.cfg.MinProfitThreshold)

	span.SetAttributes(
		attribute.String("roi", opp.ROI.String()),
		attribute.Bool("profitable", opp.Profitable),
	)
	span.SetStatus(codes.Ok, "evaluated")

	return opp, nil
}
