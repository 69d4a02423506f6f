// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:build cgo

// Command libcasperclient is the C ABI of clientffi. Build it with
//
//	go build -buildmode=c-shared -o libcasperclient.so ./cmd/libcasperclient
//
// which also writes libcasperclient.h declaring the exported functions.
// This is the only package that imports "C"; every foreign pointer is
// checked here before Go code touches it.
package main

/*
#include <stdbool.h>
#include <stdint.h>

// Maximum length of error-string output in bytes.
#define MAX_ERROR_LEN 255

// Recommended length of the response buffer passed to RPC calls.
#define MAX_RESPONSE_BUFFER_LEN 1024
*/
import "C"

import (
	"unsafe"

	"github.com/luxfi/clientffi"
)

func main() {}

// goString converts a nullable C string; NULL becomes nil.
func goString(s *C.char) *string {
	if s == nil {
		return nil
	}
	v := C.GoString(s)
	return &v
}

//export get_last_error
func get_last_error(buf *C.uchar, length C.uintptr_t) C.uintptr_t {
	return C.uintptr_t(lastError(clientffi.Default(), unsafe.Pointer(buf), uintptr(length)))
}

//export get_auction_info
func get_auction_info(
	maybeRPCID *C.char,
	nodeAddress *C.char,
	verbose C.bool,
	responseBuf *C.uchar,
	responseBufLen C.uintptr_t,
) C.bool {
	return C.bool(auctionInfo(clientffi.Default(),
		goString(maybeRPCID), goString(nodeAddress), bool(verbose),
		unsafe.Pointer(responseBuf), uintptr(responseBufLen)))
}

//export get_block
func get_block(
	maybeRPCID *C.char,
	nodeAddress *C.char,
	verbose C.bool,
	maybeBlockID *C.char,
	responseBuf *C.uchar,
	responseBufLen C.uintptr_t,
) C.bool {
	return C.bool(block(clientffi.Default(),
		goString(maybeRPCID), goString(nodeAddress), bool(verbose), goString(maybeBlockID),
		unsafe.Pointer(responseBuf), uintptr(responseBufLen)))
}

//export get_chainspec
func get_chainspec(
	maybeRPCID *C.char,
	nodeAddress *C.char,
	verbose C.bool,
	responseBuf *C.uchar,
	responseBufLen C.uintptr_t,
) C.bool {
	return C.bool(chainspec(clientffi.Default(),
		goString(maybeRPCID), goString(nodeAddress), bool(verbose),
		unsafe.Pointer(responseBuf), uintptr(responseBufLen)))
}

//export setup_client
func setup_client() C.bool {
	return C.bool(setup(clientffi.Default()))
}

//export shutdown_client
func shutdown_client() {
	shutdown(clientffi.Default())
}
