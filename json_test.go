// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2/json2"
)

// rawNode answers every request with the body and status produced by reply.
func rawNode(t *testing.T, hits *atomic.Int64, reply func(w http.ResponseWriter, r *http.Request)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		reply(w, r)
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func dialTest(t *testing.T, address string, opts ...DialOption) Client {
	t.Helper()
	opts = append([]DialOption{WithRetries(3, time.Millisecond)}, opts...)
	client, err := Dial(context.Background(), address, opts...)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestHTTPClientCall(t *testing.T) {
	node := newFakeNode(t, map[string]nodeHandler{methodGetAuctionInfo: auctionInfoHandler})
	client := dialTest(t, node.address())

	resp, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("5"), nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(resp.ID) != "5" {
		t.Errorf("id = %s, want 5", resp.ID)
	}
	var result struct {
		APIVersion string `json:"api_version"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.APIVersion != "1.4.5" {
		t.Errorf("api_version = %q", result.APIVersion)
	}
}

func TestHTTPClientRemoteError(t *testing.T) {
	node := newFakeNode(t, map[string]nodeHandler{
		methodGetAuctionInfo: func(json.RawMessage) (any, error) {
			return nil, &json2.Error{Code: json2.E_INVALID_REQ, Message: "bad request"}
		},
	})
	client := dialTest(t, node.address())

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if e.Kind != KindRemote || e.Code != int(json2.E_INVALID_REQ) || e.Message != "bad request" {
		t.Fatalf("err = %+v", e)
	}
}

func TestHTTPClientStatusNotRetried(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusInternalServerError)
	})
	client := dialTest(t, address)

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if KindOf(err) != KindTransport {
		t.Fatalf("err = %v, want a transport error", err)
	}
	if !strings.Contains(err.Error(), "received status code: 500") {
		t.Errorf("err = %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("node received %d requests, want 1", n)
	}
}

func TestHTTPClientRetriesRefusedConnection(t *testing.T) {
	client := dialTest(t, unreachableAddress(t))

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if KindOf(err) != KindTransport {
		t.Fatalf("err = %v, want a transport error", err)
	}
	if !strings.Contains(err.Error(), "failed to issue request after 3 attempts") {
		t.Errorf("err = %v", err)
	}
}

func TestHTTPClientRetriesDroppedConnection(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		if hits.Load() <= 2 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`)
	})
	client := dialTest(t, address)

	resp, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(resp.Result) != `{"ok":true}` {
		t.Errorf("result = %s", resp.Result)
	}
	if n := hits.Load(); n != 3 {
		t.Errorf("node received %d requests, want 3", n)
	}
}

func TestHTTPClientAttemptBudget(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		if conn, _, err := w.(http.Hijacker).Hijack(); err == nil {
			conn.Close()
		}
	})
	client := dialTest(t, address, WithRetries(2, time.Millisecond))

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if err == nil || !strings.Contains(err.Error(), "failed to issue request after 2 attempts") {
		t.Fatalf("err = %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("node received %d requests, want 2 (the first attempt counts)", n)
	}
}

func TestHTTPClientIDMismatch(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":99,"result":{}}`)
	})
	client := dialTest(t, address)

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if !errors.Is(err, ErrIDMismatch) {
		t.Fatalf("err = %v, want ErrIDMismatch", err)
	}
	if KindOf(err) != KindTransport {
		t.Errorf("kind = %s, want transport", KindOf(err))
	}
}

func TestHTTPClientMalformedResponse(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	})
	client := dialTest(t, address)

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if KindOf(err) != KindTransport || !strings.Contains(err.Error(), "failed to parse as json-rpc response") {
		t.Fatalf("err = %v", err)
	}
}

func TestHTTPClientNullResult(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":null}`)
	})
	client := dialTest(t, address)

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if KindOf(err) != KindRemote {
		t.Fatalf("err = %v, want an rpc error", err)
	}
}

func TestHTTPClientResponseTooLarge(t *testing.T) {
	var hits atomic.Int64
	address := rawNode(t, &hits, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":"`+strings.Repeat("a", 64)+`"}`)
	})
	cfg := DefaultConfig().Transport
	cfg.MaxResponseSize = 32
	client := dialTest(t, address, WithTransportConfig(cfg), WithRetries(1, 0))

	_, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("err = %v, want ErrResponseTooLarge", err)
	}
}

func TestHTTPClientRequestOptions(t *testing.T) {
	var hits atomic.Int64
	var gotAuth, gotContentType, gotQuery, gotPath atomic.Value
	address := rawNode(t, &hits, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		gotContentType.Store(r.Header.Get("Content-Type"))
		gotQuery.Store(r.URL.Query().Get("network"))
		gotPath.Store(r.URL.Path)
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	})
	cfg := DefaultConfig().Transport
	cfg.Headers = map[string]string{"Authorization": "Bearer token"}
	client := dialTest(t, address+"/node/",
		WithTransportConfig(cfg),
		WithRetries(1, 0),
		WithRequestOptions(WithQueryParam("network", "testnet")),
	)

	if _, err := client.Call(context.Background(), methodGetAuctionInfo, ParseRequestID("1"), nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got := gotAuth.Load(); got != "Bearer token" {
		t.Errorf("Authorization = %v", got)
	}
	if got := gotContentType.Load(); got != "application/json" {
		t.Errorf("Content-Type = %v", got)
	}
	if got := gotQuery.Load(); got != "testnet" {
		t.Errorf("network = %v", got)
	}
	if got := gotPath.Load(); got != "/node/rpc" {
		t.Errorf("path = %v", got)
	}
}

func TestHTTPClientContextCancelled(t *testing.T) {
	client := dialTest(t, unreachableAddress(t), WithRetries(3, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := client.Call(ctx, methodGetAuctionInfo, ParseRequestID("1"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, true},
		{errors.New("read tcp: connection reset by peer"), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("write: broken pipe"), true},
		{errors.New("x509: certificate signed by unknown authority"), false},
	}
	for _, tt := range tests {
		if got := isRetryableError(tt.err); got != tt.want {
			t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
