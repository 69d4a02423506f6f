// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package clientffi exposes node JSON-RPC calls to foreign callers through a
// synchronous, fixed-buffer boundary. Network I/O runs on a background worker
// pool; the caller blocks, receives a bool, and reads results from a buffer
// it owns.
//
// # Calling convention
//
// Every RPC operation returns true on success, with the compact JSON-RPC
// response written into the caller's buffer followed by a NUL byte:
//
//	{"jsonrpc":"2.0","id":1,"result":{...}}
//
// The terminator counts against the buffer's capacity. A response that does
// not fit is never truncated: the call returns false and the buffer is left
// untouched. MaxResponseBufferLen (1024) is the recommended buffer size.
//
// On false, GetLastError copies the failure message (at most MaxErrorLen
// bytes, cut on a UTF-8 boundary, not terminated) and returns its length.
// Messages start with the failure kind:
//
//	validation error: node address is empty
//	transport error: failed to issue request after 3 attempts: ...
//	rpc error: no such block (code -32001)
//	marshal error: response needs 1375 bytes, buffer holds 1024: ...
//
// The last error is shared by every thread using the same Boundary and is
// only replaced by the next failure; read it before issuing another call.
//
// # Usage
//
//	b := clientffi.Default()
//	node := "http://localhost:7777"
//	out := make([]byte, clientffi.MaxResponseBufferLen)
//	if !b.GetAuctionInfo(nil, &node, false, out) {
//	    msg, _ := b.LastError()
//	    log.Fatal(msg)
//	}
//
// cmd/libcasperclient exports the same operations as a C shared library.
//
// # Architecture
//
//   - errorstore.go: ErrorStore, the last-error slot
//   - buffer.go: bounded writes into caller buffers
//   - bridge.go: Runtime, the worker pool behind RunBlocking
//   - boundary.go: Boundary, input validation and the façade call path
//   - auction.go, block.go, chainspec.go: one façade per RPC
//   - client.go, dial.go, transport.go: Client interface, Dial, scheme registry
//   - json.go, codec.go, options.go: JSON-RPC over HTTP with retries
//   - config.go, logger.go: YAML configuration and zap logging
package clientffi
