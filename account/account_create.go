package account

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
)

// AccountCreate implements ledger_iface.AccountServiceHandler.
func (a *accountServiceImpl) AccountCreate(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountCreateRequest],
) (*connect.Response[ledger_iface.AccountCreateResponse], error) {
	var err error
	res := connect.NewResponse(&ledger_iface.AccountCreateResponse{})

	pay := req.Msg
	branch := pay.Branch()

	name := strings.TrimSpace(pay.Name)
	if name == "" {
		return res, ledger_core.NewValidationError("name", "required")
	}

	if !pay.Type.Valid() {
		return res, ledger_core.NewValidationError("type", "unknown account type %q", pay.Type)
	}

	currency := strings.ToUpper(pay.Currency)
	if !ledger_core.ValidCurrency(currency) {
		return res, ledger_core.NewValidationError("currency", "unknown currency %q", pay.Currency)
	}

	if pay.InitialBalance.IsNegative() {
		return res, ledger_core.NewValidationError("initial_balance", "cannot be negative")
	}

	acc := ledger_core.FinanceAccount{
		Name:            name,
		Type:            pay.Type,
		Currency:        currency,
		Balance:         pay.InitialBalance,
		IsActive:        true,
		IsPaymentMethod: pay.IsPaymentMethod,
		IsShared:        pay.IsShared,
		BranchID:        branch.BranchID,
		CreatedByID:     branch.UserID,
		CreatedAt:       time.Now(),
	}

	err = a.db.WithContext(ctx).Create(&acc).Error
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Uint("account_id", acc.ID).
		Str("currency", acc.Currency).
		Msg("account created")

	res.Msg.Account = &acc
	return res, nil
}
