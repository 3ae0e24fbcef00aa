package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CheckFunc inspects a response and converts upstream-reported failures
// into an error. It runs before the result is decoded.
type CheckFunc func(statusCode int, body []byte) error

// GetRequest builds one GET call.
type GetRequest struct {
	client *Client
	path   string
	query  url.Values
	result any
	check  CheckFunc
	attrs  []attribute.KeyValue
}

// Get starts a request for path, resolved against the client's base URL
// unless absolute.
func (c *Client) Get(path string) *GetRequest {
	return &GetRequest{
		client: c,
		path:   path,
		query:  url.Values{},
	}
}

// Query adds one query parameter.
func (r *GetRequest) Query(key, value string) *GetRequest {
	r.query.Set(key, value)
	return r
}

// Result sets the destination the JSON body is decoded into on success.
func (r *GetRequest) Result(v any) *GetRequest {
	r.result = v
	return r
}

// Check installs an upstream error translator.
func (r *GetRequest) Check(fn CheckFunc) *GetRequest {
	r.check = fn
	return r
}

// Attr adds a label to the request counter and span.
func (r *GetRequest) Attr(key, value string) *GetRequest {
	r.attrs = append(r.attrs, attribute.String(key, value))
	return r
}

// Response is the outcome of an executed request.
type Response struct {
	StatusCode int
	body       []byte
}

// Body returns the raw response body.
func (r *Response) Body() []byte { return r.body }

// String returns the body as a string, for error context.
func (r *Response) String() string { return string(r.body) }

// IsError reports whether the status code indicates a failure.
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// Do executes the request.
func (r *GetRequest) Do(ctx context.Context) (*Response, error) {
	c := r.client

	target := r.path
	if c.baseURL != "" && !strings.HasPrefix(target, "http") {
		target = strings.TrimSuffix(c.baseURL, "/") + "/" + strings.TrimPrefix(target, "/")
	}
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "http.get",
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("http.url", target),
			attribute.String("provider", c.provider),
		}, r.attrs...)...),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.countRequest(ctx, false, r.attrs)
		return nil, err
	}

	body, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		c.countRequest(ctx, false, r.attrs)
		return nil, fmt.Errorf("read response body: %w", err)
	}

	resp := &Response{StatusCode: httpResp.StatusCode, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if r.check != nil {
		if checkErr := r.check(resp.StatusCode, body); checkErr != nil {
			span.SetStatus(codes.Error, checkErr.Error())
			c.countRequest(ctx, false, r.attrs)
			return resp, checkErr
		}
	}

	if r.result != nil && !resp.IsError() && len(body) > 0 {
		if err := json.Unmarshal(body, r.result); err != nil {
			span.RecordError(err)
			c.countRequest(ctx, false, r.attrs)
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}

	c.countRequest(ctx, !resp.IsError(), r.attrs)
	return resp, nil
}
