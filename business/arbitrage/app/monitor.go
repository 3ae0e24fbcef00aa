package app

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/logger"
)

const meterName = "github.com/fd1az/dex-monitor/business/arbitrage/app"

// Pair is one watched token pair with its probe amount in display units.
type Pair struct {
	TokenIn  common.Address
	TokenOut common.Address
	AmountIn decimal.Decimal
}

// MonitorConfig holds the evaluation loop parameters.
type MonitorConfig struct {
	Interval time.Duration
	// CycleTimeout bounds one full cycle across all pairs. An overrunning
	// cycle is abandoned; its results are discarded, not persisted late.
	CycleTimeout time.Duration
	Pairs        []Pair
}

type monitorMetrics struct {
	cyclesTotal   metric.Int64Counter
	cycleDuration metric.Float64Histogram
	opportunities metric.Int64Counter
	ticksSkipped  metric.Int64Counter
}

// Monitor drives the evaluator on a fixed cadence and forwards results to
// the sink. A failed cycle is logged and dropped; the loop only stops on
// shutdown.
type Monitor struct {
	cfg       MonitorConfig
	evaluator *Evaluator
	sink      Sink
	log       logger.LoggerInterface

	metrics *monitorMetrics

	// running guards against overlapping cycles: a tick that arrives while
	// the previous cycle is still in flight is skipped.
	running sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a Monitor.
func NewMonitor(cfg MonitorConfig, evaluator *Evaluator, sink Sink, log logger.LoggerInterface) (*Monitor, error) {
	m := &Monitor{
		cfg:       cfg,
		evaluator: evaluator,
		sink:      sink,
		log:       log,
		done:      make(chan struct{}),
	}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Monitor) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	m.metrics = &monitorMetrics{}

	m.metrics.cyclesTotal, err = meter.Int64Counter(
		"monitor_cycles_total",
		metric.WithDescription("Evaluation cycles by outcome"),
	)
	if err != nil {
		return err
	}

	m.metrics.cycleDuration, err = meter.Float64Histogram(
		"monitor_cycle_duration_ms",
		metric.WithDescription("Full cycle duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	m.metrics.opportunities, err = meter.Int64Counter(
		"monitor_opportunities_total",
		metric.WithDescription("Opportunities recorded, by profitability"),
	)
	if err != nil {
		return err
	}

	m.metrics.ticksSkipped, err = meter.Int64Counter(
		"monitor_ticks_skipped_total",
		metric.WithDescription("Ticks skipped because the previous cycle was still running"),
	)
	return err
}

// Start launches the monitor loop. The first cycle runs immediately; further
// cycles follow the configured interval until Stop.
func (m *Monitor) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel

	go m.run(loopCtx)

	m.log.Info(ctx, "monitor started",
		"interval", m.cfg.Interval.String(),
		"cycle_timeout", m.cfg.CycleTimeout.String(),
		"pairs", len(m.cfg.Pairs),
	)
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick runs one cycle unless the previous one is still in flight.
func (m *Monitor) tick(ctx context.Context) {
	if !m.running.TryLock() {
		m.metrics.ticksSkipped.Add(ctx, 1)
		m.log.Warn(ctx, "cycle still running, skipping tick")
		return
	}
	defer m.running.Unlock()

	cycleCtx, cancel := context.WithTimeout(ctx, m.cfg.CycleTimeout)
	defer cancel()

	start := time.Now()
	for _, pair := range m.cfg.Pairs {
		result := m.evaluatePair(cycleCtx, pair)
		m.handleResult(cycleCtx, result)

		if cycleCtx.Err() != nil {
			m.log.Warn(ctx, "cycle abandoned", "reason", cycleCtx.Err())
			break
		}
	}
	m.metrics.cycleDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
}

func (m *Monitor) evaluatePair(ctx context.Context, pair Pair) domain.CycleResult {
	start := time.Now()

	opp, err := m.evaluator.Evaluate(ctx, pair.TokenIn, pair.TokenOut, pair.AmountIn)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		return domain.NewOpportunityResult(pair.TokenIn.Hex(), pair.TokenOut.Hex(), opp, elapsed)
	case apperror.IsCycleError(err):
		// No route, resolution failure, upstream trouble: a normal empty
		// cycle, not a fault.
		m.log.Debug(ctx, "no opportunity this cycle",
			"token_in", pair.TokenIn.Hex(),
			"token_out", pair.TokenOut.Hex(),
			"code", string(apperror.GetCode(err)),
		)
		return domain.NewEmptyResult(pair.TokenIn.Hex(), pair.TokenOut.Hex(), elapsed)
	default:
		return domain.NewErrorResult(pair.TokenIn.Hex(), pair.TokenOut.Hex(), err, elapsed)
	}
}

// handleResult forwards an opportunity to the sink and records the cycle
// outcome. Sink failures are logged, never raised: losing one record must
// not stop the loop.
func (m *Monitor) handleResult(ctx context.Context, result domain.CycleResult) {
	m.metrics.cyclesTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))

	switch result.Outcome {
	case domain.OutcomeOpportunity:
		opp := result.Opportunity

		if _, err := m.sink.Persist(ctx, opp); err != nil {
			m.log.Error(ctx, "failed to persist opportunity",
				"id", opp.ID.String(), "error", err)
		}
		if err := m.sink.Broadcast(ctx, opp); err != nil {
			m.log.Warn(ctx, "failed to broadcast opportunity",
				"id", opp.ID.String(), "error", err)
		}

		m.metrics.opportunities.Add(ctx, 1,
			metric.WithAttributes(attribute.Bool("profitable", opp.Profitable)))

		m.log.Info(ctx, "opportunity evaluated",
			"id", opp.ID.String(),
			"pair", opp.RouteLeg1,
			"roi", opp.ROI.StringFixed(4),
			"net_profit_fiat", opp.NetProfitFiat.StringFixed(2),
			"profitable", opp.Profitable,
			"duration", result.Duration.String(),
		)

	case domain.OutcomeError:
		m.log.Error(ctx, "cycle failed",
			"token_in", result.TokenIn,
			"token_out", result.TokenOut,
			"error", result.Err,
			"duration", result.Duration.String(),
		)
	}
}

// CheckNow runs one on-demand evaluation outside the cadence and feeds any
// result through the sink. A nil opportunity with nil error means no
// opportunity was found.
func (m *Monitor) CheckNow(ctx context.Context, tokenIn, tokenOut common.Address, amountIn decimal.Decimal) (*domain.Opportunity, error) {
	opp, err := m.evaluator.Evaluate(ctx, tokenIn, tokenOut, amountIn)
	if err != nil {
		if apperror.IsCycleError(err) {
			m.log.Debug(ctx, "on-demand check found no opportunity",
				"code", string(apperror.GetCode(err)))
			return nil, nil
		}
		return nil, err
	}

	if _, err := m.sink.Persist(ctx, opp); err != nil {
		m.log.Error(ctx, "failed to persist opportunity", "id", opp.ID.String(), "error", err)
	}
	if err := m.sink.Broadcast(ctx, opp); err != nil {
		m.log.Warn(ctx, "failed to broadcast opportunity", "id", opp.ID.String(), "error", err)
	}

	return opp, nil
}

// Stop halts the loop and waits for any in-flight cycle to finish.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel == nil {
		return nil
	}
	m.cancel()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
