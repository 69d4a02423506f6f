// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2/json2"
)

// nodeHandler serves one JSON-RPC method of a fake node.
type nodeHandler func(params json.RawMessage) (any, error)

// fakeNode is a JSON-RPC node served by gorilla's json2 server codec.
type fakeNode struct {
	server   *httptest.Server
	hits     atomic.Int64
	handlers map[string]nodeHandler
}

func newFakeNode(t *testing.T, handlers map[string]nodeHandler) *fakeNode {
	t.Helper()
	n := &fakeNode{handlers: handlers}
	codec := json2.NewCodec()
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.hits.Add(1)
		if r.URL.Path != DefaultRPCPath {
			http.NotFound(w, r)
			return
		}
		req := codec.NewRequest(r)
		method, err := req.Method()
		if err != nil {
			req.WriteError(w, http.StatusBadRequest, err)
			return
		}
		handler, ok := n.handlers[method]
		if !ok {
			req.WriteError(w, http.StatusOK, &json2.Error{Code: json2.E_NO_METHOD, Message: "method not found"})
			return
		}
		var params json.RawMessage
		if err := req.ReadRequest(&params); err != nil {
			req.WriteError(w, http.StatusBadRequest, err)
			return
		}
		result, err := handler(params)
		if err != nil {
			req.WriteError(w, http.StatusOK, err)
			return
		}
		req.WriteResponse(w, result)
	}))
	t.Cleanup(n.server.Close)
	return n
}

func (n *fakeNode) address() string {
	return n.server.URL
}

// unreachableAddress returns the address of a node that refuses connections.
func unreachableAddress(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()
	return addr
}

func auctionInfoHandler(params json.RawMessage) (any, error) {
	return map[string]any{
		"api_version": "1.4.5",
		"auction_state": map[string]any{
			"block_height":      412,
			"era_validators":    []any{},
			"bids":              []any{},
			"state_root_hash":   "8e7c1ab8a5bb3ac6c8a1d1e0a3e8b3a40f1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e",
			"validator_weights": nil,
		},
	}, nil
}

func newTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 4
	cfg.Transport.RetryBaseWait = time.Millisecond
	cfg.Transport.RequestTimeout = 5 * time.Second
	return cfg
}

func newTestBoundary(t *testing.T, opts ...BoundaryOption) *Boundary {
	t.Helper()
	b, err := New(newTestConfig(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Shutdown)
	return b
}

// terminated returns the bytes of buf before the first NUL, failing the
// test if there is none.
func terminated(t *testing.T, buf []byte) []byte {
	t.Helper()
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		t.Fatalf("buffer is not NUL-terminated: %q", buf)
	}
	return buf[:i]
}

// decodeEnvelope parses a NUL-terminated JSON-RPC response from buf.
func decodeEnvelope(t *testing.T, buf []byte) (id json.RawMessage, result map[string]any) {
	t.Helper()
	var env struct {
		Version string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  map[string]any  `json:"result"`
	}
	if err := json.Unmarshal(terminated(t, buf), &env); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if env.Version != "2.0" {
		t.Fatalf("jsonrpc = %q, want 2.0", env.Version)
	}
	return env.ID, env.Result
}

func strPtr(s string) *string {
	return &s
}
