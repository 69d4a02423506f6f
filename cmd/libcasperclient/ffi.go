// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"unsafe"

	"github.com/luxfi/clientffi"
)

// The exports in main.go convert C types and delegate here. Everything below
// takes plain Go values so it can run without a C caller.

// recordPanic keeps panics from unwinding into the foreign caller.
func recordPanic(b *clientffi.Boundary, op string, ok *bool) {
	if p := recover(); p != nil {
		b.RecordError(op, fmt.Errorf("%s panicked: %v", op, p))
		*ok = false
	}
}

// lastError copies the last error into the length bytes at buf and returns
// the count written. An unusable buffer yields 0.
func lastError(b *clientffi.Boundary, buf unsafe.Pointer, length uintptr) (n uintptr) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	out, err := clientffi.ForeignBuffer(buf, length)
	if err != nil {
		return 0
	}
	return uintptr(b.GetLastError(out))
}

// callInto checks the foreign response buffer and hands it to call.
func callInto(b *clientffi.Boundary, op string, buf unsafe.Pointer, length uintptr, call func(out []byte) bool) (ok bool) {
	defer recordPanic(b, op, &ok)

	out, err := clientffi.ForeignBuffer(buf, length)
	if err != nil {
		b.RecordError(op, err)
		return false
	}
	return call(out)
}

func auctionInfo(b *clientffi.Boundary, maybeRPCID, nodeAddress *string, verbose bool, buf unsafe.Pointer, length uintptr) bool {
	return callInto(b, "get_auction_info", buf, length, func(out []byte) bool {
		return b.GetAuctionInfo(maybeRPCID, nodeAddress, verbose, out)
	})
}

func block(b *clientffi.Boundary, maybeRPCID, nodeAddress *string, verbose bool, maybeBlockID *string, buf unsafe.Pointer, length uintptr) bool {
	return callInto(b, "get_block", buf, length, func(out []byte) bool {
		return b.GetBlock(maybeRPCID, nodeAddress, verbose, maybeBlockID, out)
	})
}

func chainspec(b *clientffi.Boundary, maybeRPCID, nodeAddress *string, verbose bool, buf unsafe.Pointer, length uintptr) bool {
	return callInto(b, "get_chainspec", buf, length, func(out []byte) bool {
		return b.GetChainspec(maybeRPCID, nodeAddress, verbose, out)
	})
}

func setup(b *clientffi.Boundary) (ok bool) {
	defer recordPanic(b, "setup_client", &ok)
	return b.Setup()
}

func shutdown(b *clientffi.Boundary) {
	var ok bool
	defer recordPanic(b, "shutdown_client", &ok)
	b.Shutdown()
}
