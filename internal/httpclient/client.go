// Package httpclient provides a small instrumented client for JSON REST
// APIs. The transport carries OTEL spans and connection-level traces; every
// request increments a per-provider counter.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultDialKeepAlive   = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	meterName            = "github.com/fd1az/dex-monitor/internal/httpclient"
	metricRequestCounter = "http_client_requests_total"
)

// Client issues JSON requests against one upstream provider.
type Client struct {
	http     *http.Client
	baseURL  string
	headers  map[string]string
	provider string

	tracer   trace.Tracer
	requests metric.Int64Counter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the URL prefix for relative request paths.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout bounds each request end to end.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

// WithHeader sets a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithProviderName names the upstream in metrics and spans.
func WithProviderName(name string) Option {
	return func(c *Client) { c.provider = name }
}

// New creates a Client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					KeepAlive: defaultDialKeepAlive,
				}).DialContext,
				MaxConnsPerHost: defaultMaxConnsPerHost,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
		headers:  make(map[string]string),
		provider: "default",
	}
	for _, opt := range opts {
		opt(c)
	}

	c.http.Transport = otelhttp.NewTransport(
		c.http.Transport,
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	c.tracer = otel.Tracer(meterName)

	meter := otel.GetMeterProvider().Meter(meterName)
	requests, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("HTTP client requests by provider and outcome"),
	)
	if err != nil {
		return nil, err
	}
	c.requests = requests

	return c, nil
}

func (c *Client) countRequest(ctx context.Context, success bool, extra []attribute.KeyValue) {
	attrs := append([]attribute.KeyValue{
		attribute.String("provider", c.provider),
		attribute.Bool("success", success),
	}, extra...)
	c.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
}
