package account

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"gorm.io/gorm"
)

// AccountBalanceAdjust implements ledger_iface.AccountServiceHandler. The
// difference to the requested balance is booked as an adjustment row, the
// balance column is never written directly.
func (a *accountServiceImpl) AccountBalanceAdjust(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountBalanceAdjustRequest],
) (*connect.Response[ledger_iface.AccountBalanceAdjustResponse], error) {
	var err error
	res := connect.NewResponse(&ledger_iface.AccountBalanceAdjustResponse{})

	pay := req.Msg
	branch := pay.Branch()

	if pay.NewBalance.IsNegative() {
		return res, ledger_core.NewValidationError("new_balance", "cannot be negative")
	}

	err = ledger_core.OpenTransaction(ctx, a.db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		acc, err := ledger_core.LockAccount(tx, pay.AccountID)
		if err != nil {
			return err
		}
		if !acc.VisibleIn(branch) {
			return &ledger_core.NotFoundError{Entity: "account", ID: pay.AccountID}
		}

		diff := pay.NewBalance.Sub(acc.Balance)
		if diff.IsZero() {
			return ledger_core.NewValidationError("new_balance", "equals current balance")
		}

		dir := ledger_core.Inflow
		if diff.IsNegative() {
			dir = ledger_core.Outflow
		}

		entry, err := bookmng.Post(branch, &ledger_core.EntryPayload{
			AccountID:   acc.ID,
			Type:        ledger_core.Adjustment,
			Direction:   dir,
			Amount:      diff.Abs(),
			Description: fmt.Sprintf("Balance adjustment: %s", pay.Reason),
			Reference:   ledger_core.NewReference("ADJ"),
			Metadata: ledger_core.NewManualMeta(&ledger_core.ManualEntryMeta{
				Manual:          true,
				PreviousBalance: acc.Balance,
				Reason:          pay.Reason,
			}),
		})
		if err != nil {
			return err
		}

		acc.Balance = entry.BalanceAfter
		res.Msg.Account = acc
		res.Msg.Transaction = entry
		return nil
	})

	return res, err
}
