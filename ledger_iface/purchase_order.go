package ledger_iface

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/shopspring/decimal"
)

const (
	PurchaseOrderServiceName = "ledger.v1.PurchaseOrderService"

	PurchaseOrderServicePurchaseOrderCreateProcedure  = "/ledger.v1.PurchaseOrderService/PurchaseOrderCreate"
	PurchaseOrderServicePurchaseOrderGetProcedure     = "/ledger.v1.PurchaseOrderService/PurchaseOrderGet"
	PurchaseOrderServicePaymentApplyProcedure         = "/ledger.v1.PurchaseOrderService/PaymentApply"
	PurchaseOrderServicePaymentReverseLatestProcedure = "/ledger.v1.PurchaseOrderService/PaymentReverseLatest"
)

type PurchaseOrderCreateRequest struct {
	BranchScope
	OrderNumber  string          `json:"order_number" validate:"required"`
	SupplierName string          `json:"supplier_name"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	// ExchangeRate is looked up from the rate provider when zero.
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
}

type PurchaseOrderCreateResponse struct {
	Order *ledger_model.PurchaseOrder `json:"order"`
}

type PurchaseOrderGetRequest struct {
	BranchScope
	PurchaseOrderID uint `json:"purchase_order_id" validate:"required"`
}

type PurchaseOrderGetResponse struct {
	Order    *ledger_model.PurchaseOrder          `json:"order"`
	Payments []*ledger_model.PurchaseOrderPayment `json:"payments"`
}

type PaymentApplyRequest struct {
	BranchScope
	PurchaseOrderID uint            `json:"purchase_order_id" validate:"required"`
	AccountID       uint            `json:"account_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	Description     string          `json:"description"`
}

type PaymentReverseLatestRequest struct {
	BranchScope
	PurchaseOrderID uint   `json:"purchase_order_id" validate:"required"`
	Reason          string `json:"reason" validate:"required"`
}

type PaymentResponse struct {
	Order       *ledger_model.PurchaseOrder        `json:"order"`
	Payment     *ledger_model.PurchaseOrderPayment `json:"payment"`
	Transaction *ledger_core.AccountTransaction    `json:"transaction"`
}

type PurchaseOrderServiceHandler interface {
	PurchaseOrderCreate(context.Context, *connect.Request[PurchaseOrderCreateRequest]) (*connect.Response[PurchaseOrderCreateResponse], error)
	PurchaseOrderGet(context.Context, *connect.Request[PurchaseOrderGetRequest]) (*connect.Response[PurchaseOrderGetResponse], error)
	PaymentApply(context.Context, *connect.Request[PaymentApplyRequest]) (*connect.Response[PaymentResponse], error)
	PaymentReverseLatest(context.Context, *connect.Request[PaymentReverseLatestRequest]) (*connect.Response[PaymentResponse], error)
}

func NewPurchaseOrderServiceHandler(svc PurchaseOrderServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mountUnary(mux, PurchaseOrderServicePurchaseOrderCreateProcedure, svc.PurchaseOrderCreate, opts)
	mountUnary(mux, PurchaseOrderServicePurchaseOrderGetProcedure, svc.PurchaseOrderGet, opts)
	mountUnary(mux, PurchaseOrderServicePaymentApplyProcedure, svc.PaymentApply, opts)
	mountUnary(mux, PurchaseOrderServicePaymentReverseLatestProcedure, svc.PaymentReverseLatest, opts)
	return "/" + PurchaseOrderServiceName + "/", mux
}

type PurchaseOrderServiceClient struct {
	purchaseOrderCreate  *connect.Client[PurchaseOrderCreateRequest, PurchaseOrderCreateResponse]
	purchaseOrderGet     *connect.Client[PurchaseOrderGetRequest, PurchaseOrderGetResponse]
	paymentApply         *connect.Client[PaymentApplyRequest, PaymentResponse]
	paymentReverseLatest *connect.Client[PaymentReverseLatestRequest, PaymentResponse]
}

func NewPurchaseOrderServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PurchaseOrderServiceClient {
	return &PurchaseOrderServiceClient{
		purchaseOrderCreate:  newUnaryClient[PurchaseOrderCreateRequest, PurchaseOrderCreateResponse](httpClient, baseURL, PurchaseOrderServicePurchaseOrderCreateProcedure, opts),
		purchaseOrderGet:     newUnaryClient[PurchaseOrderGetRequest, PurchaseOrderGetResponse](httpClient, baseURL, PurchaseOrderServicePurchaseOrderGetProcedure, opts),
		paymentApply:         newUnaryClient[PaymentApplyRequest, PaymentResponse](httpClient, baseURL, PurchaseOrderServicePaymentApplyProcedure, opts),
		paymentReverseLatest: newUnaryClient[PaymentReverseLatestRequest, PaymentResponse](httpClient, baseURL, PurchaseOrderServicePaymentReverseLatestProcedure, opts),
	}
}

func (c *PurchaseOrderServiceClient) PurchaseOrderCreate(ctx context.Context, req *connect.Request[PurchaseOrderCreateRequest]) (*connect.Response[PurchaseOrderCreateResponse], error) {
	return c.purchaseOrderCreate.CallUnary(ctx, req)
}

func (c *PurchaseOrderServiceClient) PurchaseOrderGet(ctx context.Context, req *connect.Request[PurchaseOrderGetRequest]) (*connect.Response[PurchaseOrderGetResponse], error) {
	return c.purchaseOrderGet.CallUnary(ctx, req)
}

func (c *PurchaseOrderServiceClient) PaymentApply(ctx context.Context, req *connect.Request[PaymentApplyRequest]) (*connect.Response[PaymentResponse], error) {
	return c.paymentApply.CallUnary(ctx, req)
}

func (c *PurchaseOrderServiceClient) PaymentReverseLatest(ctx context.Context, req *connect.Request[PaymentReverseLatestRequest]) (*connect.Response[PaymentResponse], error) {
	return c.paymentReverseLatest.CallUnary(ctx, req)
}
