package ledger

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_transaction/reversal_transaction"
	"github.com/pdcgo/ledger_service/logging"
)

// TransactionReverse implements ledger_iface.LedgerServiceHandler.
func (l *ledgerServiceImpl) TransactionReverse(
	ctx context.Context,
	req *connect.Request[ledger_iface.TransactionReverseRequest],
) (*connect.Response[ledger_iface.TransactionReverseResponse], error) {
	res := connect.NewResponse(&ledger_iface.TransactionReverseResponse{})
	pay := req.Msg

	result, err := reversal_transaction.
		NewReversalTransaction(ctx, l.db, pay.Branch()).
		Reverse(&reversal_transaction.ReversalPayload{
			TransactionID: pay.TransactionID,
			Reason:        pay.Reason,
		})
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Uint("transaction_id", pay.TransactionID).
		Uint("reversal_id", result.Reversal.ID).
		Msg("transaction reversed")

	res.Msg.Original = result.Original
	res.Msg.Reversal = result.Reversal
	return res, nil
}
