package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

type fakeSink struct {
	mu         sync.Mutex
	persisted  []*domain.Opportunity
	broadcast  []*domain.Opportunity
	persistErr error
}

func (f *fakeSink) Persist(ctx context.Context, opp *domain.Opportunity) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.persistErr != nil {
		return "", f.persistErr
	}
	f.persisted = append(f.persisted, opp)
	return opp.ID.String(), nil
}

func (f *fakeSink) Broadcast(ctx context.Context, opp *domain.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, opp)
	return nil
}

func (f *fakeSink) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.persisted), len(f.broadcast)
}

func testMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:     30 * time.Second,
		CycleTimeout: 20 * time.Second,
		Pairs: []Pair{{
			TokenIn:  asset.AddrWETH,
			TokenOut: asset.AddrUSDC,
			AmountIn: decimal.NewFromInt(1),
		}},
	}
}

func newTestMonitor(t *testing.T, quoter Quoter, sink Sink) *Monitor {
	t.Helper()
	e := NewEvaluator(testEvaluatorConfig(), quoter, testGas(), &registryResolver{}, logger.Nop())
	m, err := NewMonitor(testMonitorConfig(), e, sink, logger.Nop())
	if err != nil {
		t.Fatalf("NewMonitor() error: %v", err)
	}
	return m
}

func TestTickForwardsOpportunity(t *testing.T) {
	sink := &fakeSink{}
	m := newTestMonitor(t, roundTripQuoter(t, "1.01"), sink)

	m.tick(context.Background())

	persisted, broadcast := sink.counts()
	if persisted != 1 || broadcast != 1 {
		t.Fatalf("sink got %d persisted / %d broadcast, want 1 / 1", persisted, broadcast)
	}
	if !sink.persisted[0].Profitable {
		t.Error("persisted opportunity not marked profitable")
	}
}

func TestTickSurvivesLegFailure(t *testing.T) {
	quoter := roundTripQuoter(t, "1.01")
	quoter.errs[legKey{venue: "UNISWAP_V3", tokenIn: "WETH"}] = apperror.New(apperror.CodeNoRouteFound)
	sink := &fakeSink{}
	m := newTestMonitor(t, quoter, sink)

	// Must not panic, must not persist anything.
	m.tick(context.Background())
	m.tick(context.Background())

	persisted, broadcast := sink.counts()
	if persisted != 0 || broadcast != 0 {
		t.Errorf("sink got %d persisted / %d broadcast, want 0 / 0", persisted, broadcast)
	}
}

func TestTickSurvivesUnexpectedError(t *testing.T) {
	quoter := roundTripQuoter(t, "1.01")
	quoter.errs[legKey{venue: "UNISWAP_V3", tokenIn: "WETH"}] = errors.New("unexpected explosion")
	sink := &fakeSink{}
	m := newTestMonitor(t, quoter, sink)

	m.tick(context.Background())

	persisted, _ := sink.counts()
	if persisted != 0 {
		t.Errorf("persisted = %d, want 0", persisted)
	}

	// Loop still works once the fault clears.
	delete(quoter.errs, legKey{venue: "UNISWAP_V3", tokenIn: "WETH"})
	m.tick(context.Background())

	persisted, _ = sink.counts()
	if persisted != 1 {
		t.Errorf("persisted after recovery = %d, want 1", persisted)
	}
}

func TestTickSurvivesPersistFailure(t *testing.T) {
	sink := &fakeSink{persistErr: errors.New("db down")}
	m := newTestMonitor(t, roundTripQuoter(t, "1.01"), sink)

	m.tick(context.Background())

	// Broadcast still goes out even when persistence fails.
	_, broadcast := sink.counts()
	if broadcast != 1 {
		t.Errorf("broadcast = %d, want 1", broadcast)
	}
}

func TestCheckNow(t *testing.T) {
	sink := &fakeSink{}
	m := newTestMonitor(t, roundTripQuoter(t, "1.01"), sink)

	opp, err := m.CheckNow(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("CheckNow() error: %v", err)
	}
	if opp == nil {
		t.Fatal("CheckNow() = nil, want opportunity")
	}

	persisted, broadcast := sink.counts()
	if persisted != 1 || broadcast != 1 {
		t.Errorf("sink got %d persisted / %d broadcast, want 1 / 1", persisted, broadcast)
	}
}

func TestCheckNowNoOpportunity(t *testing.T) {
	quoter := roundTripQuoter(t, "1.01")
	quoter.errs[legKey{venue: "SUSHISWAP_V3", tokenIn: "USDC"}] = apperror.New(apperror.CodeNoRouteFound)
	m := newTestMonitor(t, quoter, &fakeSink{})

	opp, err := m.CheckNow(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("CheckNow() error: %v, want nil for cycle-class failure", err)
	}
	if opp != nil {
		t.Errorf("CheckNow() = %v, want nil", opp)
	}
}

func TestCheckNowInvalidAmount(t *testing.T) {
	m := newTestMonitor(t, roundTripQuoter(t, "1.01"), &fakeSink{})

	_, err := m.CheckNow(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.Zero)
	if err == nil {
		t.Fatal("CheckNow() expected error for zero amount, got nil")
	}
	if code := apperror.GetCode(err); code != apperror.CodeInvalidAmount {
		t.Errorf("error code = %s, want %s", code, apperror.CodeInvalidAmount)
	}
}

func TestStartStop(t *testing.T) {
	sink := &fakeSink{}
	m := newTestMonitor(t, roundTripQuoter(t, "1.01"), sink)

	m.Start(context.Background())

	// The first cycle runs immediately.
	deadline := time.After(2 * time.Second)
	for {
		if p, _ := sink.counts(); p > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no cycle completed within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}
