package ledger_iface

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

const (
	AccountServiceName = "ledger.v1.AccountService"

	AccountServiceAccountCreateProcedure        = "/ledger.v1.AccountService/AccountCreate"
	AccountServiceAccountGetProcedure           = "/ledger.v1.AccountService/AccountGet"
	AccountServiceAccountListProcedure          = "/ledger.v1.AccountService/AccountList"
	AccountServiceAccountDeactivateProcedure    = "/ledger.v1.AccountService/AccountDeactivate"
	AccountServiceAccountActivateProcedure      = "/ledger.v1.AccountService/AccountActivate"
	AccountServiceAccountDeleteProcedure        = "/ledger.v1.AccountService/AccountDelete"
	AccountServiceAccountBalanceAdjustProcedure = "/ledger.v1.AccountService/AccountBalanceAdjust"
	AccountServiceBaseCurrencySummaryProcedure  = "/ledger.v1.AccountService/BaseCurrencySummary"
)

type AccountCreateRequest struct {
	BranchScope
	Name            string                  `json:"name" validate:"required"`
	Type            ledger_core.AccountType `json:"type" validate:"required"`
	Currency        string                  `json:"currency" validate:"required,len=3"`
	InitialBalance  decimal.Decimal         `json:"initial_balance"`
	IsPaymentMethod bool                    `json:"is_payment_method"`
	IsShared        bool                    `json:"is_shared"`
}

type AccountCreateResponse struct {
	Account *ledger_core.FinanceAccount `json:"account"`
}

type AccountGetRequest struct {
	BranchScope
	AccountID uint `json:"account_id" validate:"required"`
}

type AccountGetResponse struct {
	Account *ledger_core.FinanceAccount `json:"account"`
}

type AccountListRequest struct {
	BranchScope
	Type          ledger_core.AccountType `json:"type"`
	Currency      string                  `json:"currency"`
	Active        *bool                   `json:"active"`
	PaymentMethod *bool                   `json:"payment_method"`
}

type AccountListResponse struct {
	Data []*ledger_core.FinanceAccount `json:"data"`
}

// AccountStatusRequest is shared by activate, deactivate and delete.
type AccountStatusRequest struct {
	BranchScope
	AccountID uint `json:"account_id" validate:"required"`
}

type AccountStatusResponse struct {
	Account *ledger_core.FinanceAccount `json:"account"`
}

type AccountBalanceAdjustRequest struct {
	BranchScope
	AccountID  uint            `json:"account_id" validate:"required"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Reason     string          `json:"reason" validate:"required"`
}

type AccountBalanceAdjustResponse struct {
	Account     *ledger_core.FinanceAccount     `json:"account"`
	Transaction *ledger_core.AccountTransaction `json:"transaction"`
}

type BaseCurrencySummaryRequest struct {
	BranchScope
}

type CurrencyTotal struct {
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Rate       decimal.Decimal `json:"rate"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Accounts   int             `json:"accounts"`
}

type BaseCurrencySummaryResponse struct {
	BaseCurrency string           `json:"base_currency"`
	Total        decimal.Decimal  `json:"total"`
	Items        []*CurrencyTotal `json:"items"`
}

type AccountServiceHandler interface {
	AccountCreate(context.Context, *connect.Request[AccountCreateRequest]) (*connect.Response[AccountCreateResponse], error)
	AccountGet(context.Context, *connect.Request[AccountGetRequest]) (*connect.Response[AccountGetResponse], error)
	AccountList(context.Context, *connect.Request[AccountListRequest]) (*connect.Response[AccountListResponse], error)
	AccountDeactivate(context.Context, *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error)
	AccountActivate(context.Context, *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error)
	AccountDelete(context.Context, *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error)
	AccountBalanceAdjust(context.Context, *connect.Request[AccountBalanceAdjustRequest]) (*connect.Response[AccountBalanceAdjustResponse], error)
	BaseCurrencySummary(context.Context, *connect.Request[BaseCurrencySummaryRequest]) (*connect.Response[BaseCurrencySummaryResponse], error)
}

func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mountUnary(mux, AccountServiceAccountCreateProcedure, svc.AccountCreate, opts)
	mountUnary(mux, AccountServiceAccountGetProcedure, svc.AccountGet, opts)
	mountUnary(mux, AccountServiceAccountListProcedure, svc.AccountList, opts)
	mountUnary(mux, AccountServiceAccountDeactivateProcedure, svc.AccountDeactivate, opts)
	mountUnary(mux, AccountServiceAccountActivateProcedure, svc.AccountActivate, opts)
	mountUnary(mux, AccountServiceAccountDeleteProcedure, svc.AccountDelete, opts)
	mountUnary(mux, AccountServiceAccountBalanceAdjustProcedure, svc.AccountBalanceAdjust, opts)
	mountUnary(mux, AccountServiceBaseCurrencySummaryProcedure, svc.BaseCurrencySummary, opts)
	return "/" + AccountServiceName + "/", mux
}

type AccountServiceClient struct {
	accountCreate        *connect.Client[AccountCreateRequest, AccountCreateResponse]
	accountGet           *connect.Client[AccountGetRequest, AccountGetResponse]
	accountList          *connect.Client[AccountListRequest, AccountListResponse]
	accountDeactivate    *connect.Client[AccountStatusRequest, AccountStatusResponse]
	accountActivate      *connect.Client[AccountStatusRequest, AccountStatusResponse]
	accountDelete        *connect.Client[AccountStatusRequest, AccountStatusResponse]
	accountBalanceAdjust *connect.Client[AccountBalanceAdjustRequest, AccountBalanceAdjustResponse]
	baseCurrencySummary  *connect.Client[BaseCurrencySummaryRequest, BaseCurrencySummaryResponse]
}

func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AccountServiceClient {
	return &AccountServiceClient{
		accountCreate:        newUnaryClient[AccountCreateRequest, AccountCreateResponse](httpClient, baseURL, AccountServiceAccountCreateProcedure, opts),
		accountGet:           newUnaryClient[AccountGetRequest, AccountGetResponse](httpClient, baseURL, AccountServiceAccountGetProcedure, opts),
		accountList:          newUnaryClient[AccountListRequest, AccountListResponse](httpClient, baseURL, AccountServiceAccountListProcedure, opts),
		accountDeactivate:    newUnaryClient[AccountStatusRequest, AccountStatusResponse](httpClient, baseURL, AccountServiceAccountDeactivateProcedure, opts),
		accountActivate:      newUnaryClient[AccountStatusRequest, AccountStatusResponse](httpClient, baseURL, AccountServiceAccountActivateProcedure, opts),
		accountDelete:        newUnaryClient[AccountStatusRequest, AccountStatusResponse](httpClient, baseURL, AccountServiceAccountDeleteProcedure, opts),
		accountBalanceAdjust: newUnaryClient[AccountBalanceAdjustRequest, AccountBalanceAdjustResponse](httpClient, baseURL, AccountServiceAccountBalanceAdjustProcedure, opts),
		baseCurrencySummary:  newUnaryClient[BaseCurrencySummaryRequest, BaseCurrencySummaryResponse](httpClient, baseURL, AccountServiceBaseCurrencySummaryProcedure, opts),
	}
}

func (c *AccountServiceClient) AccountCreate(ctx context.Context, req *connect.Request[AccountCreateRequest]) (*connect.Response[AccountCreateResponse], error) {
	return c.accountCreate.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountGet(ctx context.Context, req *connect.Request[AccountGetRequest]) (*connect.Response[AccountGetResponse], error) {
	return c.accountGet.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountList(ctx context.Context, req *connect.Request[AccountListRequest]) (*connect.Response[AccountListResponse], error) {
	return c.accountList.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountDeactivate(ctx context.Context, req *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error) {
	return c.accountDeactivate.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountActivate(ctx context.Context, req *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error) {
	return c.accountActivate.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountDelete(ctx context.Context, req *connect.Request[AccountStatusRequest]) (*connect.Response[AccountStatusResponse], error) {
	return c.accountDelete.CallUnary(ctx, req)
}

func (c *AccountServiceClient) AccountBalanceAdjust(ctx context.Context, req *connect.Request[AccountBalanceAdjustRequest]) (*connect.Response[AccountBalanceAdjustResponse], error) {
	return c.accountBalanceAdjust.CallUnary(ctx, req)
}

func (c *AccountServiceClient) BaseCurrencySummary(ctx context.Context, req *connect.Request[BaseCurrencySummaryRequest]) (*connect.Response[BaseCurrencySummaryResponse], error) {
	return c.baseCurrencySummary.CallUnary(ctx, req)
}
