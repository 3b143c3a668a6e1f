package ledger_iface

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

const (
	LedgerServiceName = "ledger.v1.LedgerService"

	LedgerServiceTransactionPostProcedure    = "/ledger.v1.LedgerService/TransactionPost"
	LedgerServiceTransactionListProcedure    = "/ledger.v1.LedgerService/TransactionList"
	LedgerServiceTransactionReverseProcedure = "/ledger.v1.LedgerService/TransactionReverse"
	LedgerServiceAccountAuditProcedure       = "/ledger.v1.LedgerService/AccountAudit"
)

type TransactionPostRequest struct {
	BranchScope
	AccountID   uint                        `json:"account_id" validate:"required"`
	Type        ledger_core.TransactionType `json:"type" validate:"required"`
	Direction   ledger_core.Direction       `json:"direction"`
	Amount      decimal.Decimal             `json:"amount"`
	Description string                      `json:"description"`
	Reference   string                      `json:"reference"`
	Related     *ledger_core.RelatedEntity  `json:"related"`
	Metadata    *ledger_core.TxMetadata     `json:"metadata"`
}

type TransactionPostResponse struct {
	Transaction *ledger_core.AccountTransaction `json:"transaction"`
}

type TransactionListRequest struct {
	BranchScope
	AccountID uint                        `json:"account_id"`
	Type      ledger_core.TransactionType `json:"type"`
	Reference string                      `json:"reference"`
	Keyword   string                      `json:"keyword"`
	TimeRange *TimeFilterRange            `json:"time_range"`
	Sort      SortType                    `json:"sort" validate:"omitempty,oneof=asc desc"`
	Page      PageFilter                  `json:"page"`
}

type TransactionListResponse struct {
	Data     []*ledger_core.AccountTransaction `json:"data"`
	PageInfo *PageInfo                         `json:"page_info"`
}

type TransactionReverseRequest struct {
	BranchScope
	TransactionID uint   `json:"transaction_id" validate:"required"`
	Reason        string `json:"reason" validate:"required"`
}

type TransactionReverseResponse struct {
	Original *ledger_core.AccountTransaction `json:"original"`
	Reversal *ledger_core.AccountTransaction `json:"reversal"`
}

type AccountAuditRequest struct {
	BranchScope
	AccountID uint `json:"account_id" validate:"required"`
}

type AccountAuditResponse struct {
	Report *ledger_core.AuditReport `json:"report"`
}

type LedgerServiceHandler interface {
	TransactionPost(context.Context, *connect.Request[TransactionPostRequest]) (*connect.Response[TransactionPostResponse], error)
	TransactionList(context.Context, *connect.Request[TransactionListRequest]) (*connect.Response[TransactionListResponse], error)
	TransactionReverse(context.Context, *connect.Request[TransactionReverseRequest]) (*connect.Response[TransactionReverseResponse], error)
	AccountAudit(context.Context, *connect.Request[AccountAuditRequest]) (*connect.Response[AccountAuditResponse], error)
}

func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mountUnary(mux, LedgerServiceTransactionPostProcedure, svc.TransactionPost, opts)
	mountUnary(mux, LedgerServiceTransactionListProcedure, svc.TransactionList, opts)
	mountUnary(mux, LedgerServiceTransactionReverseProcedure, svc.TransactionReverse, opts)
	mountUnary(mux, LedgerServiceAccountAuditProcedure, svc.AccountAudit, opts)
	return "/" + LedgerServiceName + "/", mux
}

type LedgerServiceClient struct {
	transactionPost    *connect.Client[TransactionPostRequest, TransactionPostResponse]
	transactionList    *connect.Client[TransactionListRequest, TransactionListResponse]
	transactionReverse *connect.Client[TransactionReverseRequest, TransactionReverseResponse]
	accountAudit       *connect.Client[AccountAuditRequest, AccountAuditResponse]
}

func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	return &LedgerServiceClient{
		transactionPost:    newUnaryClient[TransactionPostRequest, TransactionPostResponse](httpClient, baseURL, LedgerServiceTransactionPostProcedure, opts),
		transactionList:    newUnaryClient[TransactionListRequest, TransactionListResponse](httpClient, baseURL, LedgerServiceTransactionListProcedure, opts),
		transactionReverse: newUnaryClient[TransactionReverseRequest, TransactionReverseResponse](httpClient, baseURL, LedgerServiceTransactionReverseProcedure, opts),
		accountAudit:       newUnaryClient[AccountAuditRequest, AccountAuditResponse](httpClient, baseURL, LedgerServiceAccountAuditProcedure, opts),
	}
}

func (c *LedgerServiceClient) TransactionPost(ctx context.Context, req *connect.Request[TransactionPostRequest]) (*connect.Response[TransactionPostResponse], error) {
	return c.transactionPost.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) TransactionList(ctx context.Context, req *connect.Request[TransactionListRequest]) (*connect.Response[TransactionListResponse], error) {
	return c.transactionList.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) TransactionReverse(ctx context.Context, req *connect.Request[TransactionReverseRequest]) (*connect.Response[TransactionReverseResponse], error) {
	return c.transactionReverse.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AccountAudit(ctx context.Context, req *connect.Request[AccountAuditRequest]) (*connect.Response[AccountAuditResponse], error) {
	return c.accountAudit.CallUnary(ctx, req)
}
