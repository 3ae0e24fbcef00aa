package app

import (
	"context"
	"fmt"

	"github.com/fd1az/dex-monitor/business/quoting/domain"
	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/asset"
)

// QuoteService dispatches quote requests to the provider configured for a
// venue. The venue set is closed at startup; asking for an unknown venue is
// a wiring error, not a quote failure.
type QuoteService struct {
	providers map[domain.Venue]QuoteProvider
	resolver  TokenResolver
}

// NewQuoteService creates a QuoteService over the given providers.
func NewQuoteService(providers map[domain.Venue]QuoteProvider, resolver TokenResolver) *QuoteService {
	return &QuoteService{
		providers: providers,
		resolver:  resolver,
	}
}

// Resolver returns the service's token resolver.
func (s *QuoteService) Resolver() TokenResolver {
	return s.resolver
}

// Venues returns the configured venue identifiers.
func (s *QuoteService) Venues() []domain.Venue {
	venues := make([]domain.Venue, 0, len(s.providers))
	for v := range s.providers {
		venues = append(venues, v)
	}
	return venues
}

// Quote returns the best quote for a swap leg on the given venue. amountIn
// must be positive; a non-positive amount is rejected before any network
// call.
func (s *QuoteService) Quote(ctx context.Context, venue domain.Venue, tokenIn, tokenOut *asset.Token, amountIn asset.Amount) (*domain.Quote, error) {
	if !amountIn.IsPositive() {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithContext(fmt.Sprintf("amount in must be positive, got %s", amountIn)))
	}

	provider, ok := s.providers[venue]
	if !ok {
		return nil, apperror.New(apperror.CodeUnknownVenue,
			apperror.WithContext(string(venue)))
	}

	return provider.Quote(ctx, tokenIn, tokenOut, amountIn)
}
