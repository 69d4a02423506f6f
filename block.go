// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf8"
)

const methodGetBlock = "chain_get_block"

// blockHashLen is the length of a hex-encoded block hash.
const blockHashLen = 64

// BlockIdentifier selects a block by hash or by height.
type BlockIdentifier struct {
	Hash   string  `json:"Hash,omitempty"`
	Height *uint64 `json:"Height,omitempty"`
}

type getBlockParams struct {
	BlockIdentifier BlockIdentifier `json:"block_identifier"`
}

// ParseBlockIdentifier accepts a 64-character hex block hash or a decimal
// height. Empty input means the latest block and yields nil.
func ParseBlockIdentifier(s string) (*BlockIdentifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !utf8.ValidString(s) {
		return nil, validationError("block identifier is not valid UTF-8")
	}
	if len(s) == blockHashLen {
		if _, err := hex.DecodeString(s); err == nil {
			return &BlockIdentifier{Hash: strings.ToLower(s)}, nil
		}
	}
	height, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, validationError("failed to parse %q as a block hash or height", s)
	}
	return &BlockIdentifier{Height: &height}, nil
}

// GetBlock fetches a block. maybeBlockID may be nil or empty for the latest
// block known to the node; otherwise it is a hex block hash or a height.
// Other inputs and the output follow GetAuctionInfo.
func (b *Boundary) GetBlock(maybeRPCID, nodeAddress *string, verbose bool, maybeBlockID *string, out []byte) bool {
	return b.invoke("get_block", out, func(cfg Config) (*request, error) {
		req, err := newRequest("get_block", methodGetBlock, cfg, maybeRPCID, nodeAddress, verbose)
		if err != nil {
			return nil, err
		}
		if maybeBlockID != nil {
			blockID, err := ParseBlockIdentifier(*maybeBlockID)
			if err != nil {
				return nil, err
			}
			if blockID != nil {
				req.params = getBlockParams{BlockIdentifier: *blockID}
			}
		}
		return req, nil
	})
}
