package account

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
)

type statusChange func(acc *ledger_core.FinanceAccount) (map[string]any, error)

func (a *accountServiceImpl) changeStatus(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountStatusRequest],
	change statusChange,
) (*connect.Response[ledger_iface.AccountStatusResponse], error) {
	res := connect.NewResponse(&ledger_iface.AccountStatusResponse{})
	branch := req.Msg.Branch()

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acc, err := ledger_core.LockAccount(tx, req.Msg.AccountID)
		if err != nil {
			return err
		}

		if !acc.VisibleIn(branch) {
			return &ledger_core.NotFoundError{Entity: "account", ID: req.Msg.AccountID}
		}

		updates, err := change(acc)
		if err != nil {
			return err
		}
		updates["updated_at"] = time.Now()

		err = tx.
			Model(acc).
			Updates(updates).
			Error
		if err != nil {
			return err
		}

		res.Msg.Account = acc
		return nil
	})

	return res, err
}

// AccountDeactivate implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) AccountDeactivate(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountStatusRequest],
) (*connect.Response[ledger_iface.AccountStatusResponse], error) {
	return a.changeStatus(ctx, req, func(acc *ledger_core.FinanceAccount) (map[string]any, error) {
		acc.IsActive = false
		return map[string]any{"is_active": false}, nil
	})
}

// AccountActivate implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) AccountActivate(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountStatusRequest],
) (*connect.Response[ledger_iface.AccountStatusResponse], error) {
	return a.changeStatus(ctx, req, func(acc *ledger_core.FinanceAccount) (map[string]any, error) {
		acc.IsActive = true
		return map[string]any{"is_active": true}, nil
	})
}

// AccountDelete implements ledger_iface.AccountServiceHandler. Rows stay in
// place so the account history remains readable.
func (a *accountServiceImpl) AccountDelete(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountStatusRequest],
) (*connect.Response[ledger_iface.AccountStatusResponse], error) {
	res, err := a.changeStatus(ctx, req, func(acc *ledger_core.FinanceAccount) (map[string]any, error) {
		if !acc.Balance.IsZero() {
			return nil, ledger_core.NewValidationError(
				"account_id",
				"account %s still holds %s",
				acc.Name,
				ledger_core.FormatAmount(acc.Balance, acc.Currency),
			)
		}

		acc.Deleted = true
		acc.IsActive = false
		return map[string]any{
			"deleted":   true,
			"is_active": false,
		}, nil
	})

	if err == nil {
		logging.FromContext(ctx).Info().Uint("account_id", req.Msg.AccountID).Msg("account deleted")
	}
	return res, err
}
