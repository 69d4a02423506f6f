// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package clientffi

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"strconv"
)

// jsonRPCVersion is the protocol version carried by every envelope.
const jsonRPCVersion = "2.0"

// RequestID is a JSON-RPC request identifier: either an integer or a string.
type RequestID struct {
	num   int64
	str   string
	isStr bool
}

// ParseRequestID interprets a caller-supplied id. Empty text yields a random
// non-negative integer id, decimal integer text yields a numeric id, and any
// other text is used verbatim as a string id.
func ParseRequestID(s string) RequestID {
	if s == "" {
		return RequestID{num: rand.Int64()}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return RequestID{num: n}
	}
	return RequestID{str: s, isStr: true}
}

func (id RequestID) String() string {
	if id.isStr {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

func (id RequestID) MarshalJSON() ([]byte, error) {
	if id.isStr {
		return json.Marshal(id.str)
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

// matches reports whether raw, an id echoed by a node, encodes id.
func (id RequestID) matches(raw json.RawMessage) bool {
	want, err := id.MarshalJSON()
	if err != nil {
		return false
	}
	var got bytes.Buffer
	if err := json.Compact(&got, raw); err != nil {
		return false
	}
	return bytes.Equal(got.Bytes(), want)
}

// clientRequest is a JSON-RPC 2.0 request envelope. Params is omitted for
// methods that take none.
type clientRequest struct {
	Version string    `json:"jsonrpc"`
	ID      RequestID `json:"id"`
	Method  string    `json:"method"`
	Params  any       `json:"params,omitempty"`
}

func encodeRequest(method string, id RequestID, params any) ([]byte, error) {
	return json.Marshal(&clientRequest{
		Version: jsonRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	})
}

// responseEnvelope extracts the id from a raw response; the result and error
// members are decoded by json2.
type responseEnvelope struct {
	ID json.RawMessage `json:"id"`
}

// Response is a successful JSON-RPC response.
type Response struct {
	ID     json.RawMessage
	Result json.RawMessage
}

type serverResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
}

// Marshal encodes the response as a compact JSON-RPC 2.0 response object.
func (r *Response) Marshal() ([]byte, error) {
	data, err := json.Marshal(&serverResponse{
		Version: jsonRPCVersion,
		ID:      r.ID,
		Result:  r.Result,
	})
	if err != nil {
		return nil, &Error{Kind: KindMarshal, Message: "failed to encode response", Cause: err}
	}
	return data, nil
}
