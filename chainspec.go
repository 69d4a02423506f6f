// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

const methodGetChainspec = "info_get_chainspec"

// GetChainspec fetches the network's chainspec. Inputs and output follow
// GetAuctionInfo.
func (b *Boundary) GetChainspec(maybeRPCID, nodeAddress *string, verbose bool, out []byte) bool {
	return b.invoke("get_chainspec", out, func(cfg Config) (*request, error) {
		return newRequest("get_chainspec", methodGetChainspec, cfg, maybeRPCID, nodeAddress, verbose)
	})
}
