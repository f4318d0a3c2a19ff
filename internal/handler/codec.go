package handler

import (
	"encoding/json"
)

// Codec carries messages as JSON. Both ends must force it: the server with
// grpc.ForceServerCodec, clients with grpc.ForceCodec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (Codec) Name() string                       { return "json" }
