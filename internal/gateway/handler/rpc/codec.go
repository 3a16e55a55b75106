package rpc

import (
	"encoding/json"

	"connectrpc.com/connect"

	"sanogenic/internal/util/jsonutil"
)

// MaxMessageBytes bounds a single request body or websocket frame.
const MaxMessageBytes = 64 << 10

// jsonCodec lets Connect carry plain Go structs. It replaces the protojson
// codec under the names Connect negotiates for application/json.
type jsonCodec struct{ name string }

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return jsonutil.MarshalNoEscape(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// CodecOptions registers the JSON codec on a handler and caps request size
// at MaxMessageBytes.
func CodecOptions() []connect.HandlerOption {
	return []connect.HandlerOption{
		connect.WithCodec(jsonCodec{name: "json"}),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
		connect.WithReadMaxBytes(MaxMessageBytes),
	}
}

// ClientCodec is the matching option for connect.NewClient.
func ClientCodec() connect.ClientOption {
	return connect.WithCodec(jsonCodec{name: "json"})
}
