package app

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/dex-monitor/business/blockchain/domain"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
	"github.com/fd1az/dex-monitor/internal/logger"
)

// legKey addresses one configured fake response.
type legKey struct {
	venue   quotingDomain.Venue
	tokenIn string
}

type fakeQuoter struct {
	quotes map[legKey]*quotingDomain.Quote
	errs   map[legKey]error
	calls  []legKey
	seen   []asset.Amount
}

func (f *fakeQuoter) Quote(ctx context.Context, venue quotingDomain.Venue, tokenIn, tokenOut *asset.Token, amountIn asset.Amount) (*quotingDomain.Quote, error) {
	key := legKey{venue: venue, tokenIn: tokenIn.Symbol()}
	f.calls = append(f.calls, key)
	f.seen = append(f.seen, amountIn)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.quotes[key], nil
}

type fakeGas struct {
	cost     *blockchainDomain.GasCost
	err      error
	gasLimit uint64
	calls    int
}

func (f *fakeGas) EstimateCost(ctx context.Context, gasLimit uint64) (*blockchainDomain.GasCost, error) {
	f.calls++
	f.gasLimit = gasLimit
	if f.err != nil {
		return nil, f.err
	}
	return f.cost, nil
}

type registryResolver struct {
	calls int
}

func (r *registryResolver) Resolve(ctx context.Context, address common.Address) (*asset.Token, error) {
	r.calls++
	if t, ok := asset.DefaultRegistry().Get(asset.ChainIDEthereum, address); ok {
		return t, nil
	}
	return nil, apperror.New(apperror.CodeTokenResolutionFailed, apperror.WithContext(address.Hex()))
}

func mustAmount(t *testing.T, token *asset.Token, s string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseString(token, s)
	if err != nil {
		t.Fatal(err)
	}
	return amt
}

func testEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		BuyVenue:           "UNISWAP_V3",
		SellVenue:          "SUSHISWAP_V3",
		MinProfitThreshold: decimal.NewFromInt(30),
	}
}

// roundTripQuoter wires a 1 WETH -> 4000 USDC -> leg2Out WETH round trip.
func roundTripQuoter(t *testing.T, leg2Out string) *fakeQuoter {
	t.Helper()
	in := mustAmount(t, asset.WETH, "1")
	mid := mustAmount(t, asset.USDC, "4000")
	back := mustAmount(t, asset.WETH, leg2Out)

	return &fakeQuoter{
		quotes: map[legKey]*quotingDomain.Quote{
			{venue: "UNISWAP_V3", tokenIn: "WETH"}: quotingDomain.NewQuote(
				"UNISWAP_V3", asset.WETH, asset.USDC, in, mid, 150_000, 3000),
			{venue: "SUSHISWAP_V3", tokenIn: "USDC"}: quotingDomain.NewQuote(
				"SUSHISWAP_V3", asset.USDC, asset.WETH, mid, back, 150_000, 3000),
		},
		errs: map[legKey]error{},
	}
}

func testGas() *fakeGas {
	fifty := decimal.NewFromInt(50)
	return &fakeGas{cost: blockchainDomain.ComputeGasCost(
		300_000,
		blockchainDomain.GweiToWei(fifty),
		blockchainDomain.GweiToWei(fifty),
		decimal.NewFromInt(4000),
	)}
}

func TestEvaluateRejectsNonPositiveAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "zero", amount: "0"},
		{name: "negative", amount: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoter := roundTripQuoter(t, "1.01")
			resolver := &registryResolver{}
			gas := testGas()
			e := NewEvaluator(testEvaluatorConfig(), quoter, gas, resolver, logger.Nop())

			_, err := e.Evaluate(context.Background(), asset.AddrWETH, asset.AddrUSDC,
				decimal.RequireFromString(tt.amount))
			if err == nil {
				t.Fatal("Evaluate() expected error, got nil")
			}
			if code := apperror.GetCode(err); code != apperror.CodeInvalidAmount {
				t.Errorf("error code = %s, want %s", code, apperror.CodeInvalidAmount)
			}
			if resolver.calls != 0 || len(quoter.calls) != 0 || gas.calls != 0 {
				t.Errorf("rejected input still reached collaborators: resolver=%d quoter=%d gas=%d",
					resolver.calls, len(quoter.calls), gas.calls)
			}
		})
	}
}

func TestEvaluateRoundTrip(t *testing.T) {
	quoter := roundTripQuoter(t, "1.01")
	gas := testGas()
	e := NewEvaluator(testEvaluatorConfig(), quoter, gas, &registryResolver{}, logger.Nop())

	opp, err := e.Evaluate(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	// Leg 2 must spend leg 1's output, in order.
	wantCalls := []legKey{
		{venue: "UNISWAP_V3", tokenIn: "WETH"},
		{venue: "SUSHISWAP_V3", tokenIn: "USDC"},
	}
	if len(quoter.calls) != 2 || quoter.calls[0] != wantCalls[0] || quoter.calls[1] != wantCalls[1] {
		t.Errorf("quoter calls = %v, want %v", quoter.calls, wantCalls)
	}
	if got := quoter.seen[1].ToDecimal(); !got.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("leg 2 input = %s, want 4000 (leg 1 output)", got)
	}

	if gas.gasLimit != 300_000 {
		t.Errorf("gas limit = %d, want 300000 (sum of both legs)", gas.gasLimit)
	}

	if !opp.GrossProfit.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("GrossProfit = %s, want 0.01", opp.GrossProfit)
	}
	if !opp.ROI.Equal(decimal.NewFromInt(1)) {
		t.Errorf("ROI = %s, want 1", opp.ROI)
	}
	if !opp.Profitable {
		t.Error("Profitable = false, want true at threshold 30")
	}
	if opp.BuyVenue != "UNISWAP_V3" || opp.SellVenue != "SUSHISWAP_V3" {
		t.Errorf("venues = %s/%s", opp.BuyVenue, opp.SellVenue)
	}
}

func TestEvaluateLosingRoundTrip(t *testing.T) {
	quoter := roundTripQuoter(t, "0.999")
	e := NewEvaluator(testEvaluatorConfig(), quoter, testGas(), &registryResolver{}, logger.Nop())

	opp, err := e.Evaluate(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.NewFromInt(1))
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if !opp.GrossProfit.IsNegative() {
		t.Errorf("GrossProfit = %s, want negative", opp.GrossProfit)
	}
	if opp.Profitable {
		t.Error("Profitable = true, want false")
	}
}

func TestEvaluateLegFailures(t *testing.T) {
	tests := []struct {
		name     string
		failLeg  legKey
		wantCode apperror.Code
	}{
		{
			name:     "leg 1 no route",
			failLeg:  legKey{venue: "UNISWAP_V3", tokenIn: "WETH"},
			wantCode: apperror.CodeNoRouteFound,
		},
		{
			name:     "leg 2 no route back",
			failLeg:  legKey{venue: "SUSHISWAP_V3", tokenIn: "USDC"},
			wantCode: apperror.CodeNoRouteFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoter := roundTripQuoter(t, "1.01")
			quoter.errs[tt.failLeg] = apperror.New(apperror.CodeNoRouteFound)

			e := NewEvaluator(testEvaluatorConfig(), quoter, testGas(), &registryResolver{}, logger.Nop())

			_, err := e.Evaluate(context.Background(), asset.AddrWETH, asset.AddrUSDC, decimal.NewFromInt(1))
			if err == nil {
				t.Fatal("Evaluate() expected error, got nil")
			}
			if code := apperror.GetCode(err); code != tt.wantCode {
				t.Errorf("error code = %s, want %s", code, tt.wantCode)
			}
			if !apperror.IsCycleError(err) {
				t.Error("IsCycleError() = false, want true: leg failures are per-cycle errors")
			}
		})
	}
}

func TestEvaluateResolutionFailure(t *testing.T) {
	unknown := common.HexToAddress("0x0000000000000000000000000000000000000bad")
	quoter := roundTripQuoter(t, "1.01")
	e := NewEvaluator(testEvaluatorConfig(), quoter, testGas(), &registryResolver{}, logger.Nop())

	_, err := e.Evaluate(context.Background(), unknown, asset.AddrUSDC, decimal.NewFromInt(1))
	if err == nil {
		t.Fatal("Evaluate() expected error, got nil")
	}
	if code := apperror.GetCode(err); code != apperror.CodeTokenResolutionFailed {
		t.Errorf("error code = %s, want %s", code, apperror.CodeTokenResolutionFailed)
	}
	if len(quoter.calls) != 0 {
		t.Errorf("quoter calls = %d, want 0", len(quoter.calls))
	}
}
