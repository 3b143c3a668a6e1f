package transfer

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_transaction/transfer_transaction"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
)

type transferServiceImpl struct {
	db *gorm.DB
}

func NewTransferService(db *gorm.DB) *transferServiceImpl {
	return &transferServiceImpl{
		db: db,
	}
}

// TransferCreate implements ledger_iface.TransferServiceHandler.
func (t *transferServiceImpl) TransferCreate(
	ctx context.Context,
	req *connect.Request[ledger_iface.TransferCreateRequest],
) (*connect.Response[ledger_iface.TransferCreateResponse], error) {
	res := connect.NewResponse(&ledger_iface.TransferCreateResponse{})
	pay := req.Msg

	result, err := transfer_transaction.
		NewTransferTransaction(ctx, t.db, pay.Branch()).
		Transfer(&transfer_transaction.TransferPayload{
			SourceAccountID:      pay.SourceAccountID,
			DestinationAccountID: pay.DestinationAccountID,
			Amount:               pay.Amount,
			Description:          pay.Description,
			Reference:            pay.Reference,
		})
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Str("reference", result.Reference).
		Uint("source_account_id", pay.SourceAccountID).
		Uint("destination_account_id", pay.DestinationAccountID).
		Msg("transfer created")

	res.Msg.Reference = result.Reference
	res.Msg.Out = result.Out
	res.Msg.In = result.In
	return res, nil
}
