package memory

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/storage"
)

func seedRecord(i int) *storage.OpportunityRecord {
	return &storage.OpportunityRecord{
		ID:        uuid.New().String(),
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),

		TokenInAddress:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		TokenInSymbol:   "WETH",
		TokenOutAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		TokenOutSymbol:  "USDC",

		BuyVenue:  "UNISWAP_V3",
		SellVenue: "SUSHISWAP_V3",

		AmountIn:      decimal.NewFromInt(1),
		AmountOutLeg1: decimal.NewFromInt(4000),
		AmountOutLeg2: decimal.RequireFromString("1.01"),

		GrossProfit: decimal.RequireFromString("0.01"),
		ROI:         decimal.NewFromInt(1),

		Profitable: true,
		Status:     "simulated",

		RouteLeg1: "WETH -> USDC",
		RouteLeg2: "USDC -> WETH",
	}
}

func seedStore(t *testing.T, n int) *OpportunityStore {
	t.Helper()
	s := NewOpportunityStore()
	for i := 0; i < n; i++ {
		if err := s.Insert(context.Background(), seedRecord(i)); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}
	return s
}

func TestGetByID(t *testing.T) {
	s := NewOpportunityStore()
	rec := seedRecord(0)
	if err := s.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, err := s.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.ID != rec.ID || got.TokenInSymbol != "WETH" {
		t.Errorf("GetByID() = %+v, want seeded record", got)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := seedStore(t, 1)

	_, err := s.GetByID(context.Background(), uuid.New().String())
	if err == nil {
		t.Fatal("GetByID() expected error for unknown id, got nil")
	}
	if code := apperror.GetCode(err); code != apperror.CodeRecordNotFound {
		t.Errorf("error code = %s, want %s", code, apperror.CodeRecordNotFound)
	}
}

func TestListPagination(t *testing.T) {
	s := seedStore(t, 25)

	recs, meta, err := s.List(context.Background(), storage.Filter{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	if len(recs) != 10 {
		t.Fatalf("len(recs) = %d, want 10", len(recs))
	}
	if meta.Total != 25 {
		t.Errorf("Total = %d, want 25", meta.Total)
	}
	if meta.Pages != 3 {
		t.Errorf("Pages = %d, want 3", meta.Pages)
	}
	if meta.Page != 2 || meta.Limit != 10 {
		t.Errorf("meta = %+v, want page 2 limit 10", meta)
	}

	// Newest first: page 2 of 25 holds the 11th through 20th newest.
	for i, rec := range recs {
		if i > 0 && rec.CreatedAt.After(recs[i-1].CreatedAt) {
			t.Fatalf("records out of order at index %d", i)
		}
	}
	wantNewest := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(14 * time.Minute)
	if !recs[0].CreatedAt.Equal(wantNewest) {
		t.Errorf("first record CreatedAt = %s, want %s", recs[0].CreatedAt, wantNewest)
	}
}

func TestListLastPartialPage(t *testing.T) {
	s := seedStore(t, 25)

	recs, meta, err := s.List(context.Background(), storage.Filter{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 5 {
		t.Errorf("len(recs) = %d, want 5", len(recs))
	}
	if meta.Pages != 3 {
		t.Errorf("Pages = %d, want 3", meta.Pages)
	}
}

func TestListBeyondLastPage(t *testing.T) {
	s := seedStore(t, 5)

	recs, meta, err := s.List(context.Background(), storage.Filter{Page: 9, Limit: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("len(recs) = %d, want 0", len(recs))
	}
	if meta.Total != 5 || meta.Pages != 1 {
		t.Errorf("meta = %+v, want total 5 pages 1", meta)
	}
}

func TestListDefaultsAndClamping(t *testing.T) {
	tests := []struct {
		name      string
		filter    storage.Filter
		wantPage  int
		wantLimit int
	}{
		{name: "zero values", filter: storage.Filter{}, wantPage: 1, wantLimit: storage.DefaultPageLimit},
		{name: "negative page", filter: storage.Filter{Page: -3, Limit: 10}, wantPage: 1, wantLimit: 10},
		{name: "oversized limit", filter: storage.Filter{Page: 1, Limit: 5000}, wantPage: 1, wantLimit: storage.MaxPageLimit},
	}

	s := seedStore(t, 3)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, meta, err := s.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if meta.Page != tt.wantPage || meta.Limit != tt.wantLimit {
				t.Errorf("meta page/limit = %d/%d, want %d/%d",
					meta.Page, meta.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	s := NewOpportunityStore()

	weth := seedRecord(0)
	dai := seedRecord(1)
	dai.TokenInSymbol = "DAI"
	dai.TokenInAddress = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	dai.Status = "executed"

	for _, rec := range []*storage.OpportunityRecord{weth, dai} {
		if err := s.Insert(context.Background(), rec); err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter storage.Filter
		wantID string
		want   int
	}{
		{name: "by symbol", filter: storage.Filter{Token: "DAI"}, wantID: dai.ID, want: 1},
		{name: "by address", filter: storage.Filter{Token: dai.TokenInAddress}, wantID: dai.ID, want: 1},
		{name: "by lowercase address", filter: storage.Filter{Token: strings.ToLower(dai.TokenInAddress)}, wantID: dai.ID, want: 1},
		{name: "by uppercase address", filter: storage.Filter{Token: "0X" + strings.ToUpper(dai.TokenInAddress[2:])}, wantID: dai.ID, want: 1},
		{name: "by shared out symbol", filter: storage.Filter{Token: "USDC"}, want: 2},
		{name: "by status", filter: storage.Filter{Status: "executed"}, wantID: dai.ID, want: 1},
		{name: "no match", filter: storage.Filter{Token: "WBTC"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, meta, err := s.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			if len(recs) != tt.want {
				t.Fatalf("len(recs) = %d, want %d", len(recs), tt.want)
			}
			if meta.Total != int64(tt.want) {
				t.Errorf("Total = %d, want %d", meta.Total, tt.want)
			}
			if tt.wantID != "" && tt.want == 1 && recs[0].ID != tt.wantID {
				t.Errorf("record id = %s, want %s", recs[0].ID, tt.wantID)
			}
		})
	}
}

func TestInsertCopies(t *testing.T) {
	s := NewOpportunityStore()
	rec := seedRecord(0)
	if err := s.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	// Mutating the caller's record must not reach the stored copy.
	rec.Status = "mutated"

	got, err := s.GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Status != "simulated" {
		t.Errorf("stored Status = %s, want simulated", got.Status)
	}
}

func TestPageMetaCeiling(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int64
	}{
		{total: 0, limit: 10, want: 0},
		{total: 1, limit: 10, want: 1},
		{total: 10, limit: 10, want: 1},
		{total: 11, limit: 10, want: 2},
		{total: 25, limit: 10, want: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_by_%d", tt.total, tt.limit), func(t *testing.T) {
			meta := storage.NewPageMeta(storage.Filter{Page: 1, Limit: tt.limit}.Normalize(), tt.total)
			if meta.Pages != tt.want {
				t.Errorf("Pages = %d, want %d", meta.Pages, tt.want)
			}
		})
	}
}
