package ledger_iface

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

const (
	TransferServiceName = "ledger.v1.TransferService"

	TransferServiceTransferCreateProcedure = "/ledger.v1.TransferService/TransferCreate"
)

type TransferCreateRequest struct {
	BranchScope
	SourceAccountID      uint            `json:"source_account_id" validate:"required"`
	DestinationAccountID uint            `json:"destination_account_id" validate:"required"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
	Reference            string          `json:"reference"`
}

type TransferCreateResponse struct {
	Reference string                          `json:"reference"`
	Out       *ledger_core.AccountTransaction `json:"out"`
	In        *ledger_core.AccountTransaction `json:"in"`
}

type TransferServiceHandler interface {
	TransferCreate(context.Context, *connect.Request[TransferCreateRequest]) (*connect.Response[TransferCreateResponse], error)
}

func NewTransferServiceHandler(svc TransferServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mountUnary(mux, TransferServiceTransferCreateProcedure, svc.TransferCreate, opts)
	return "/" + TransferServiceName + "/", mux
}

type TransferServiceClient struct {
	transferCreate *connect.Client[TransferCreateRequest, TransferCreateResponse]
}

func NewTransferServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TransferServiceClient {
	return &TransferServiceClient{
		transferCreate: newUnaryClient[TransferCreateRequest, TransferCreateResponse](httpClient, baseURL, TransferServiceTransferCreateProcedure, opts),
	}
}

func (c *TransferServiceClient) TransferCreate(ctx context.Context, req *connect.Request[TransferCreateRequest]) (*connect.Response[TransferCreateResponse], error) {
	return c.transferCreate.CallUnary(ctx, req)
}
