package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(
		WithProviderName("test"),
		WithBaseURL(baseURL),
		WithTimeout(2*time.Second),
		WithHeader("Accept", "application/json"),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestGetDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/thing" {
			t.Errorf("path = %q, want /api/v3/thing", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "ETH USDT" {
			t.Errorf("symbol query = %q, want %q", got, "ETH USDT")
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept header = %q", got)
		}
		fmt.Fprint(w, `{"name":"eth","value":42}`)
	}))
	defer srv.Close()

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	// Base URL joining tolerates a trailing slash; query values are encoded.
	resp, err := newTestClient(t, srv.URL+"/").
		Get("/api/v3/thing").
		Query("symbol", "ETH USDT").
		Result(&result).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("IsError() = true, status %d", resp.StatusCode)
	}
	if result.Name != "eth" || result.Value != 42 {
		t.Errorf("result = %+v, want eth/42", result)
	}
}

func TestGetCheckTranslatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, `{"code":-1,"msg":"nope"}`)
	}))
	defer srv.Close()

	wantErr := errors.New("upstream said nope")
	resp, err := newTestClient(t, srv.URL).
		Get("/x").
		Check(func(status int, body []byte) error {
			if status >= 400 {
				return wantErr
			}
			return nil
		}).
		Do(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do() error = %v, want translated upstream error", err)
	}
	// The response still carries the body for error context.
	if resp == nil || resp.StatusCode != http.StatusTeapot {
		t.Errorf("resp = %+v, want status 418", resp)
	}
}

func TestGetMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	var result map[string]any
	_, err := newTestClient(t, srv.URL).
		Get("/x").
		Result(&result).
		Do(context.Background())
	if err == nil {
		t.Fatal("Do() accepted a malformed JSON body")
	}
}

func TestGetErrorStatusSkipsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `upstream down`)
	}))
	defer srv.Close()

	var result map[string]any
	resp, err := newTestClient(t, srv.URL).
		Get("/x").
		Result(&result).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error: %v, want error surfaced via status", err)
	}
	if !resp.IsError() {
		t.Error("IsError() = false, want true for 502")
	}
	if resp.String() != "upstream down" {
		t.Errorf("body = %q", resp.String())
	}
}
