package account

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
)

// AccountGet implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) AccountGet(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountGetRequest],
) (*connect.Response[ledger_iface.AccountGetResponse], error) {
	res := connect.NewResponse(&ledger_iface.AccountGetResponse{})

	acc, err := findAccount(a.db.WithContext(ctx), req.Msg.Branch(), req.Msg.AccountID)
	if err != nil {
		return res, err
	}

	res.Msg.Account = acc
	return res, nil
}

// AccountList implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) AccountList(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountListRequest],
) (*connect.Response[ledger_iface.AccountListResponse], error) {
	res := connect.NewResponse(&ledger_iface.AccountListResponse{
		Data: []*ledger_core.FinanceAccount{},
	})

	pay := req.Msg
	query := pay.
		Branch().
		ScopeAccounts(a.db.WithContext(ctx).Model(&ledger_core.FinanceAccount{}))

	if pay.Type != "" {
		query = query.Where("finance_accounts.type = ?", pay.Type)
	}
	if pay.Currency != "" {
		query = query.Where("finance_accounts.currency = ?", pay.Currency)
	}
	if pay.Active != nil {
		query = query.Where("finance_accounts.is_active = ?", *pay.Active)
	}
	if pay.PaymentMethod != nil {
		query = query.Where("finance_accounts.is_payment_method = ?", *pay.PaymentMethod)
	}

	err := query.
		Order("finance_accounts.name asc").
		Find(&res.Msg.Data).
		Error

	return res, err
}
