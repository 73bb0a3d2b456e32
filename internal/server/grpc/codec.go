package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype clients select with
// grpc.CallContentSubtype(codecName).
const codecName = "json"

// jsonCodec carries plain Go structs as JSON. The service has no
// generated protobuf messages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
