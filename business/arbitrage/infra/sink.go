// Package infra wires the arbitrage context's outbound adapters: durable
// opportunity storage and realtime broadcast.
package infra

import (
	"context"
	"encoding/json"

	"github.com/fd1az/dex-monitor/business/arbitrage/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// Broadcaster pushes an encoded event to currently-connected listeners.
// Satisfied by the server's WebSocket hub.
type Broadcaster interface {
	Broadcast(ctx context.Context, data []byte) error
}

// Sink persists opportunities to the store and pushes them to the
// broadcaster. Persistence is durable; broadcast is best-effort.
type Sink struct {
	store       storage.OpportunityStore
	broadcaster Broadcaster
}

// NewSink creates a Sink. broadcaster may be nil, in which case Broadcast
// is a no-op.
func NewSink(store storage.OpportunityStore, broadcaster Broadcaster) *Sink {
	return &Sink{store: store, broadcaster: broadcaster}
}

// Persist stores one opportunity and returns its id.
func (s *Sink) Persist(ctx context.Context, opp *domain.Opportunity) (string, error) {
	rec := ToRecord(opp)
	if err := s.store.Insert(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Broadcast pushes the opportunity to connected listeners as a JSON event.
func (s *Sink) Broadcast(ctx context.Context, opp *domain.Opportunity) error {
	if s.broadcaster == nil {
		return nil
	}

	data, err := json.Marshal(Event{
		Type:    EventTypeOpportunity,
		Payload: ToRecord(opp),
	})
	if err != nil {
		return apperror.Wrap(err, apperror.CodeBroadcastFailed, "encode opportunity event")
	}

	if err := s.broadcaster.Broadcast(ctx, data); err != nil {
		return apperror.Wrap(err, apperror.CodeBroadcastFailed, opp.ID.String())
	}
	return nil
}

// EventTypeOpportunity tags opportunity events on the realtime stream.
const EventTypeOpportunity = "opportunity"

// Event is the envelope for realtime stream messages.
type Event struct {
	Type    string                     `json:"type"`
	Payload *storage.OpportunityRecord `json:"payload"`
}

// ToRecord flattens a domain opportunity into its persistence shape.
func ToRecord(opp *domain.Opportunity) *storage.OpportunityRecord {
	return &storage.OpportunityRecord{
		ID:        opp.ID.String(),
		CreatedAt: opp.CreatedAt,

		TokenInAddress:  opp.TokenIn.Address().Hex(),
		TokenInSymbol:   opp.TokenIn.Symbol(),
		TokenOutAddress: opp.TokenOut.Address().Hex(),
		TokenOutSymbol:  opp.TokenOut.Symbol(),

		BuyVenue:  string(opp.BuyVenue),
		SellVenue: string(opp.SellVenue),

		AmountIn:      opp.AmountIn.ToDecimal(),
		AmountOutLeg1: opp.AmountOutLeg1.ToDecimal(),
		AmountOutLeg2: opp.AmountOutLeg2.ToDecimal(),

		GrossProfit: opp.GrossProfit,
		ROI:         opp.ROI,

		GasCostNative: opp.GasCostNative,
		GasCostFiat:   opp.GasCostFiat,
		NetProfitFiat: opp.NetProfitFiat,

		Profitable: opp.Profitable,
		Status:     string(opp.Status),

		RouteLeg1: opp.RouteLeg1,
		RouteLeg2: opp.RouteLeg2,

		PriceImpactLeg1: opp.PriceImpactLeg1,
		PriceImpactLeg2: opp.PriceImpactLeg2,
	}
}
