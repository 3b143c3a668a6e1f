package ledger

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
)

// TransactionList implements ledger_iface.LedgerServiceHandler.
func (l *ledgerServiceImpl) TransactionList(
	ctx context.Context,
	req *connect.Request[ledger_iface.TransactionListRequest],
) (*connect.Response[ledger_iface.TransactionListResponse], error) {
	var err error
	result := ledger_iface.TransactionListResponse{
		Data:     []*ledger_core.AccountTransaction{},
		PageInfo: &ledger_iface.PageInfo{},
	}

	pay := req.Msg
	db := l.db.WithContext(ctx)

	view := NewTransactionView(db)
	view.
		createQuery().
		Branch(pay.Branch()).
		AccountID(pay.AccountID).
		Type(pay.Type).
		Reference(pay.Reference).
		Search(pay.Keyword).
		TimeRange(pay.TimeRange).
		Page(&pay.Page, result.PageInfo).
		Sort(pay.Sort)

	err = view.
		Iterate(func(d *ledger_core.AccountTransaction) error {
			result.Data = append(result.Data, d)
			return nil
		})

	return connect.NewResponse(&result), err
}
