// Package api holds the kate.v1 wire messages exchanged over Connect.
//
// Messages are plain Go structs carried by a JSON codec registered under
// the "json" name, so browsers speaking the Connect protocol with
// Content-Type application/json need no protobuf runtime.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec is the JSON codec shared by handlers and clients.
var Codec connect.Codec = jsonCodec{}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, message)
}
