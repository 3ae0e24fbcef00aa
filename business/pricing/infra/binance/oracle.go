// Package binance provides a live fiat price oracle backed by the Binance
// REST API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/dex-monitor/business/pricing/domain"
	"github.com/fd1az/dex-monitor/internal/cache"
	"github.com/fd1az/dex-monitor/internal/httpclient"
	"github.com/fd1az/dex-monitor/internal/logger"
)

const (
	tracerName = "github.com/fd1az/dex-monitor/business/pricing/infra/binance"

	// BaseAPIURL is the Binance REST API endpoint.
	BaseAPIURL = "https://api.binance.com"

	tickerEndpoint = "/api/v3/ticker/price"

	httpTimeout = 10 * time.Second
)

// OracleConfig holds configuration for the Binance oracle.
type OracleConfig struct {
	BaseURL string
	// Symbol is the ticker to read, e.g. "ETHUSDT".
	Symbol string
	// CacheTTL bounds how long a fetched price is reused.
	CacheTTL time.Duration
	// FallbackPrice is returned when the feed is unavailable, so a dead
	// price feed degrades cost estimates instead of killing cycles.
	FallbackPrice decimal.Decimal
	Timeout       time.Duration
}

// Oracle fetches the native asset's fiat price from the Binance ticker API.
type Oracle struct {
	config OracleConfig
	client *httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer

	priceCache *cache.Cache[string, *domain.PricePoint]
}

// NewOracle creates a Binance-backed price oracle.
func NewOracle(cfg OracleConfig, log logger.LoggerInterface) (*Oracle, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	client, err := httpclient.New(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithTimeout(timeout),
		httpclient.WithHeader("Accept", "application/json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Oracle{
		config:     cfg,
		client:     client,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
		priceCache: cache.New[string, *domain.PricePoint](time.Minute),
	}, nil
}

// tickerResponse is the REST API response for a single ticker.
type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// apiError represents an error response from the Binance API.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}

// NativePriceFiat returns the current ticker price, reusing a cached value
// within the TTL and falling back to the configured static price when the
// feed is unavailable.
func (o *Oracle) NativePriceFiat(ctx context.Context) (decimal.Decimal, error) {
	ctx, span := o.tracer.Start(ctx, "binance.ticker_price",
		trace.WithAttributes(attribute.String("symbol", o.config.Symbol)),
	)
	defer span.End()

	if point, found := o.priceCache.Get(ctx, o.config.Symbol); found {
		span.AddEvent("cache_hit")
		return point.Price, nil
	}

	point, err := o.fetchTicker(ctx)
	if err != nil {
		span.RecordError(err)
		span.AddEvent("fallback_price_used")
		o.logger.Warn(ctx, "price feed unavailable, using fallback",
			"symbol", o.config.Symbol,
			"fallback", o.config.FallbackPrice.String(),
			"error", err)
		return o.config.FallbackPrice, nil
	}

	o.priceCache.Set(ctx, o.config.Symbol, point, o.config.CacheTTL)

	span.SetAttributes(attribute.String("price", point.Price.String()))
	return point.Price, nil
}

func (o *Oracle) fetchTicker(ctx context.Context) (*domain.PricePoint, error) {
	var result tickerResponse
	resp, err := o.client.Get(tickerEndpoint).
		Query("symbol", o.config.Symbol).
		Result(&result).
		Check(errorHandler).
		Attr("endpoint", "ticker_price").
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.String())
	}

	price, err := decimal.NewFromString(result.Price)
	if err != nil {
		return nil, fmt.Errorf("malformed ticker price %q: %w", result.Price, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("non-positive ticker price %s", price)
	}

	return domain.NewPricePoint(o.config.Symbol, price, "binance"), nil
}

// Close releases the oracle's cache resources.
func (o *Oracle) Close() error {
	o.priceCache.Close()
	return nil
}
