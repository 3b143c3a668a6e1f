package ledger_iface

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

func mountUnary[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	opts = append([]connect.HandlerOption{WithCodec()}, opts...)
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

func newUnaryClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{WithCodec()}, opts...)
	return connect.NewClient[Req, Res](httpClient, baseURL+procedure, opts...)
}
