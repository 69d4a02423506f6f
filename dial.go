// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Dial creates a client for the node at nodeAddress, choosing the transport
// from the address scheme. No network I/O happens until the first Call.
func Dial(ctx context.Context, nodeAddress string, opts ...DialOption) (Client, error) {
	o := newDialOptions(opts)
	endpoint, err := ParseNodeAddress(nodeAddress, o.rpcPath)
	if err != nil {
		return nil, err
	}
	dial, _ := lookupTransport(endpoint.Scheme)
	return dial(ctx, endpoint, o)
}

// ParseNodeAddress validates a node address such as "http://localhost:7777"
// and returns the endpoint URL with rpcPath appended. Every failure is a
// KindValidation error.
func ParseNodeAddress(nodeAddress, rpcPath string) (*url.URL, error) {
	if nodeAddress == "" {
		return nil, validationError("node address is empty")
	}
	if !utf8.ValidString(nodeAddress) {
		return nil, validationError("node address is not valid UTF-8")
	}
	u, err := url.Parse(nodeAddress)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Message: "invalid node address", Cause: err}
	}
	if u.Scheme == "" {
		return nil, validationError("node address %q has no scheme", nodeAddress)
	}
	if !HasTransport(u.Scheme) {
		return nil, validationError("node address %q has unsupported scheme %q (want one of %s)",
			nodeAddress, u.Scheme, strings.Join(AvailableTransports(), ", "))
	}
	if u.Host == "" || u.Hostname() == "" {
		return nil, validationError("node address %q has no host", nodeAddress)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + rpcPath
	u.RawPath = ""
	return u, nil
}
