package ledger

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
)

func findVisibleAccount(db *gorm.DB, branch ledger_core.BranchContext, id uint) (*ledger_core.FinanceAccount, error) {
	acc := ledger_core.FinanceAccount{}
	err := db.
		Model(&ledger_core.FinanceAccount{}).
		Where("id = ?", id).
		Find(&acc).
		Error
	if err != nil {
		return nil, err
	}

	// deleted accounts stay auditable
	acc.Deleted = false
	if acc.ID == 0 || !acc.VisibleIn(branch) {
		return nil, &ledger_core.NotFoundError{Entity: "account", ID: id}
	}

	return &acc, nil
}

// AccountAudit implements ledger_iface.LedgerServiceHandler.
func (l *ledgerServiceImpl) AccountAudit(
	ctx context.Context,
	req *connect.Request[ledger_iface.AccountAuditRequest],
) (*connect.Response[ledger_iface.AccountAuditResponse], error) {
	res := connect.NewResponse(&ledger_iface.AccountAuditResponse{})
	pay := req.Msg

	_, err := findVisibleAccount(l.db.WithContext(ctx), pay.Branch(), pay.AccountID)
	if err != nil {
		return res, err
	}

	report, err := ledger_core.AuditAccount(ctx, l.db, pay.AccountID)
	if err != nil {
		return res, err
	}

	if !report.Ok() {
		logging.FromContext(ctx).Error().
			Uint("account_id", pay.AccountID).
			Strs("issues", report.Issues).
			Msg("ledger audit failed")
	}

	res.Msg.Report = report
	return res, nil
}
