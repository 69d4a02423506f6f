// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"sort"
	"sync"
)

// Transport types, keyed by node address scheme
const (
	TransportHTTP  = "http"
	TransportHTTPS = "https"
)

var (
	transportsMu sync.RWMutex
	transports   = map[string]dialFunc{
		TransportHTTP:  dialHTTP,
		TransportHTTPS: dialHTTP,
	}
)

// registerTransport registers a dial function for a node address scheme.
// It is the hook for schemes beyond http and https. The package ships only
// those two, so today only tests register additional schemes.
func registerTransport(scheme string, dial dialFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[scheme] = dial
}

func lookupTransport(scheme string) (dialFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	dial, ok := transports[scheme]
	return dial, ok
}

// AvailableTransports returns the registered schemes in sorted order.
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(scheme string) bool {
	_, ok := lookupTransport(scheme)
	return ok
}
