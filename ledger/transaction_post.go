package ledger

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
)

// TransactionPost implements ledger_iface.LedgerServiceHandler. Transfer and
// reversal rows are only produced by their engines.
func (l *ledgerServiceImpl) TransactionPost(
	ctx context.Context,
	req *connect.Request[ledger_iface.TransactionPostRequest],
) (*connect.Response[ledger_iface.TransactionPostResponse], error) {
	res := connect.NewResponse(&ledger_iface.TransactionPostResponse{})
	pay := req.Msg

	switch pay.Type {
	case ledger_core.TransferIn, ledger_core.TransferOut:
		return res, ledger_core.NewValidationError("type", "use TransferCreate for transfers")
	case ledger_core.Reversal:
		return res, ledger_core.NewValidationError("type", "use TransactionReverse for reversals")
	}

	meta := ledger_core.TxMetadata{}
	if pay.Metadata != nil {
		meta = *pay.Metadata
	}
	switch meta.Kind {
	case ledger_core.NoMeta, ledger_core.ManualMetaKind, ledger_core.InstallmentMetaKind:
	default:
		return res, ledger_core.NewValidationError("metadata", "%s metadata is written by its own operation", meta.Kind)
	}
	if meta.Transfer != nil || meta.Reversal != nil || meta.Payment != nil {
		return res, ledger_core.NewValidationError("metadata", "engine metadata cannot be posted")
	}
	if meta.Reversed || meta.ReversalTransactionID != 0 {
		return res, ledger_core.NewValidationError("metadata", "reversal stamp cannot be posted")
	}
	if pay.Related != nil {
		switch pay.Related.Type {
		case ledger_core.PurchaseOrderEntity, ledger_core.ScheduledTransferEntity, ledger_core.RecurringExpenseEntity:
			return res, ledger_core.NewValidationError("related", "%s rows are written by their own operation", pay.Related.Type)
		}
	}

	entry, err := ledger_core.PostTransaction(ctx, l.db, pay.Branch(), &ledger_core.EntryPayload{
		AccountID:   pay.AccountID,
		Type:        pay.Type,
		Direction:   pay.Direction,
		Amount:      pay.Amount,
		Description: pay.Description,
		Reference:   pay.Reference,
		Related:     pay.Related,
		Metadata:    meta,
	})
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Uint("account_id", entry.AccountID).
		Str("reference", entry.ReferenceNumber).
		Str("type", string(entry.TransactionType)).
		Msg("transaction posted")

	res.Msg.Transaction = entry
	return res, nil
}
