package purchase_order

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_transaction/payment_transaction"
	"github.com/pdcgo/ledger_service/logging"
)

// PaymentApply implements ledger_iface.PurchaseOrderServiceHandler.
func (p *purchaseOrderServiceImpl) PaymentApply(
	ctx context.Context,
	req *connect.Request[ledger_iface.PaymentApplyRequest],
) (*connect.Response[ledger_iface.PaymentResponse], error) {
	res := connect.NewResponse(&ledger_iface.PaymentResponse{})
	pay := req.Msg

	result, err := payment_transaction.
		NewPaymentTransaction(ctx, p.db, pay.Branch(), p.rates).
		ApplyPayment(&payment_transaction.PaymentPayload{
			PurchaseOrderID: pay.PurchaseOrderID,
			AccountID:       pay.AccountID,
			Amount:          pay.Amount,
			Currency:        pay.Currency,
			Description:     pay.Description,
		})
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Uint("purchase_order_id", result.Order.ID).
		Str("payment_status", string(result.Order.PaymentStatus)).
		Str("reference", result.Transaction.ReferenceNumber).
		Msg("purchase order payment applied")

	res.Msg.Order = result.Order
	res.Msg.Payment = result.Payment
	res.Msg.Transaction = result.Transaction
	return res, nil
}

// PaymentReverseLatest implements ledger_iface.PurchaseOrderServiceHandler.
func (p *purchaseOrderServiceImpl) PaymentReverseLatest(
	ctx context.Context,
	req *connect.Request[ledger_iface.PaymentReverseLatestRequest],
) (*connect.Response[ledger_iface.PaymentResponse], error) {
	res := connect.NewResponse(&ledger_iface.PaymentResponse{})
	pay := req.Msg

	result, err := payment_transaction.
		NewPaymentTransaction(ctx, p.db, pay.Branch(), p.rates).
		ReverseLatestPayment(pay.PurchaseOrderID, pay.Reason)
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Uint("purchase_order_id", result.Order.ID).
		Uint("payment_id", result.Payment.ID).
		Msg("purchase order payment reversed")

	res.Msg.Order = result.Order
	res.Msg.Payment = result.Payment
	res.Msg.Transaction = result.Transaction
	return res, nil
}
