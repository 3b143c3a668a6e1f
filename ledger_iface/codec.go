package ledger_iface

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// Codec carries plain Go structs as JSON under the "json" codec name, so
// both connect and plain http+json callers work.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string {
	return "json"
}

// Marshal implements connect.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

var _ connect.Codec = Codec{}

func WithCodec() connect.Option {
	return connect.WithCodec(Codec{})
}
