// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

const methodGetAuctionInfo = "state_get_auction_info"

// GetAuctionInfo fetches the node's auction info (bids, validators and era
// validators) and writes the JSON-RPC response, NUL-terminated, into out.
//
// maybeRPCID may be nil or empty for a random id. nodeAddress is required,
// e.g. "http://localhost:7777". On false, the reason is available from
// GetLastError.
func (b *Boundary) GetAuctionInfo(maybeRPCID, nodeAddress *string, verbose bool, out []byte) bool {
	return b.invoke("get_auction_info", out, func(cfg Config) (*request, error) {
		return newRequest("get_auction_info", methodGetAuctionInfo, cfg, maybeRPCID, nodeAddress, verbose)
	})
}
