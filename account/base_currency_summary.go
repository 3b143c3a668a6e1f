package account

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/shopspring/decimal"
)

type currencyBalance struct {
	Currency string
	Balance  decimal.Decimal
	Accounts int
}

// BaseCurrencySummary implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) BaseCurrencySummary(
	ctx context.Context,
	req *connect.Request[ledger_iface.BaseCurrencySummaryRequest],
) (*connect.Response[ledger_iface.BaseCurrencySummaryResponse], error) {
	res := connect.NewResponse(&ledger_iface.BaseCurrencySummaryResponse{
		BaseCurrency: a.rates.Base(),
		Total:        decimal.Zero,
		Items:        []*ledger_iface.CurrencyTotal{},
	})

	accounts := []*ledger_core.FinanceAccount{}
	err := req.Msg.
		Branch().
		ScopeAccounts(a.db.WithContext(ctx).Model(&ledger_core.FinanceAccount{})).
		Where("finance_accounts.is_active = ?", true).
		Order("finance_accounts.currency asc").
		Find(&accounts).
		Error
	if err != nil {
		return res, err
	}

	groups := []*currencyBalance{}
	index := map[string]*currencyBalance{}
	for _, acc := range accounts {
		group, ok := index[acc.Currency]
		if !ok {
			group = &currencyBalance{Currency: acc.Currency}
			index[acc.Currency] = group
			groups = append(groups, group)
		}
		group.Balance = group.Balance.Add(acc.Balance)
		group.Accounts++
	}

	for _, group := range groups {
		base, rate, err := exchange_rate.ToBase(ctx, a.rates, group.Balance, group.Currency)
		if err != nil {
			return res, err
		}

		res.Msg.Total = res.Msg.Total.Add(base)
		res.Msg.Items = append(res.Msg.Items, &ledger_iface.CurrencyTotal{
			Currency:   group.Currency,
			Balance:    group.Balance,
			Rate:       rate,
			BaseAmount: base,
			Accounts:   group.Accounts,
		})
	}

	return res, nil
}
