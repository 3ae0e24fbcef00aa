package domain

import (
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/dex-monitor/business/blockchain/domain"
	quotingDomain "github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/asset"
)

func mustAmount(t *testing.T, token *asset.Token, s string) asset.Amount {
	t.Helper()
	amt, err := asset.ParseString(token, s)
	if err != nil {
		t.Fatal(err)
	}
	return amt
}

func roundTrip(t *testing.T, amountIn, leg1Out, leg2Out string) (*quotingDomain.Quote, *quotingDomain.Quote) {
	t.Helper()
	in := mustAmount(t, asset.WETH, amountIn)
	mid := mustAmount(t, asset.USDC, leg1Out)
	back := mustAmount(t, asset.WETH, leg2Out)

	leg1 := quotingDomain.NewQuote("UNISWAP_V3", asset.WETH, asset.USDC, in, mid, 150_000, 3000)
	leg2 := quotingDomain.NewQuote("SUSHISWAP_V3", asset.USDC, asset.WETH, mid, back, 150_000, 3000)
	return leg1, leg2
}

func testGasCost() *blockchainDomain.GasCost {
	fiftyGwei := new(big.Int).Mul(big.NewInt(50), blockchainDomain.WeiPerGwei)
	return blockchainDomain.ComputeGasCost(300_000, fiftyGwei, fiftyGwei, decimal.NewFromInt(4000))
}

func TestNewOpportunity(t *testing.T) {
	threshold := decimal.NewFromInt(30) // 0.3% after scaling

	tests := []struct {
		name           string
		leg2Out        string
		wantGross      string
		wantROI        string
		wantProfitable bool
	}{
		{
			name:           "profitable round trip",
			leg2Out:        "1.01",
			wantGross:      "0.01",
			wantROI:        "1",
			wantProfitable: true,
		},
		{
			name:           "losing round trip",
			leg2Out:        "0.999",
			wantGross:      "-0.001",
			wantROI:        "-0.1",
			wantProfitable: false,
		},
		{
			name:           "roi exactly at threshold is not profitable",
			leg2Out:        "1.003",
			wantGross:      "0.003",
			wantROI:        "0.3",
			wantProfitable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leg1, leg2 := roundTrip(t, "1", "4000", tt.leg2Out)
			opp := NewOpportunity(leg1, leg2, testGasCost(), threshold)

			if !opp.GrossProfit.Equal(decimal.RequireFromString(tt.wantGross)) {
				t.Errorf("GrossProfit = %s, want %s", opp.GrossProfit, tt.wantGross)
			}
			if !opp.ROI.Equal(decimal.RequireFromString(tt.wantROI)) {
				t.Errorf("ROI = %s, want %s", opp.ROI, tt.wantROI)
			}
			if opp.Profitable != tt.wantProfitable {
				t.Errorf("Profitable = %v, want %v", opp.Profitable, tt.wantProfitable)
			}
			if opp.Status != StatusSimulated {
				t.Errorf("Status = %s, want %s", opp.Status, StatusSimulated)
			}
		})
	}
}

func TestNewOpportunityGasAndNetProfit(t *testing.T) {
	leg1, leg2 := roundTrip(t, "1", "4000", "1.01")
	opp := NewOpportunity(leg1, leg2, testGasCost(), decimal.NewFromInt(30))

	// 300k units at 50 gwei is 0.015 native, 60 fiat at 4000.
	if !opp.GasCostNative.Equal(decimal.RequireFromString("0.015")) {
		t.Errorf("GasCostNative = %s, want 0.015", opp.GasCostNative)
	}
	if !opp.GasCostFiat.Equal(decimal.NewFromInt(60)) {
		t.Errorf("GasCostFiat = %s, want 60", opp.GasCostFiat)
	}

	// 0.01 gross * 4000 - 60 = -20.
	if !opp.NetProfitFiat.Equal(decimal.NewFromInt(-20)) {
		t.Errorf("NetProfitFiat = %s, want -20", opp.NetProfitFiat)
	}

	if opp.RouteLeg1 != "WETH -> USDC" || opp.RouteLeg2 != "USDC -> WETH" {
		t.Errorf("routes = %q / %q", opp.RouteLeg1, opp.RouteLeg2)
	}
	if opp.ID == uuid.Nil {
		t.Error("ID not assigned")
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusSimulated, StatusExecuted, StatusFailed} {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false, want true", s)
		}
	}
	if Status("pending").Valid() {
		t.Error(`Status("pending").Valid() = true, want false`)
	}
}
