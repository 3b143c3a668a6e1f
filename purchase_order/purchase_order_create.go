package purchase_order

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/logging"
)

// PurchaseOrderCreate implements ledger_iface.PurchaseOrderServiceHandler.
func (p *purchaseOrderServiceImpl) PurchaseOrderCreate(
	ctx context.Context,
	req *connect.Request[ledger_iface.PurchaseOrderCreateRequest],
) (*connect.Response[ledger_iface.PurchaseOrderCreateResponse], error) {
	var err error
	res := connect.NewResponse(&ledger_iface.PurchaseOrderCreateResponse{})

	pay := req.Msg
	branch := pay.Branch()

	currency := strings.ToUpper(pay.Currency)
	if !ledger_core.ValidCurrency(currency) {
		return res, ledger_core.NewValidationError("currency", "unknown currency %q", pay.Currency)
	}
	if !pay.TotalAmount.IsPositive() {
		return res, ledger_core.NewValidationError("total_amount", "must be greater than zero")
	}
	if !ledger_core.ValidAmountScale(pay.TotalAmount) {
		return res, ledger_core.NewValidationError("total_amount", "more than %d decimal places", ledger_core.AmountPlaces)
	}

	rate := pay.ExchangeRate
	if rate.IsNegative() {
		return res, ledger_core.NewValidationError("exchange_rate", "cannot be negative")
	}
	if rate.IsZero() {
		rate, err = p.rates.Rate(ctx, currency, p.rates.Base())
		if err != nil {
			return res, err
		}
	}

	now := time.Now()
	po := ledger_model.PurchaseOrder{
		OrderNumber:     strings.TrimSpace(pay.OrderNumber),
		SupplierName:    pay.SupplierName,
		Currency:        currency,
		TotalAmount:     pay.TotalAmount,
		ExchangeRate:    rate,
		TotalAmountBase: ledger_core.RoundAmount(pay.TotalAmount.Mul(rate)),
		PaymentStatus:   ledger_model.PaymentUnpaid,
		BranchID:        branch.BranchID,
		CreatedByID:     branch.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	db := p.db.WithContext(ctx)

	var count int64
	err = db.
		Model(&ledger_model.PurchaseOrder{}).
		Where("order_number = ?", po.OrderNumber).
		Count(&count).
		Error
	if err != nil {
		return res, err
	}
	if count > 0 {
		return res, ledger_core.NewValidationError("order_number", "order %s already exists", po.OrderNumber)
	}

	err = db.Create(&po).Error
	if err != nil {
		return res, err
	}

	logging.FromContext(ctx).Info().
		Str("order_number", po.OrderNumber).
		Str("total_amount_base", po.TotalAmountBase.String()).
		Msg("purchase order created")

	res.Msg.Order = &po
	return res, nil
}

// PurchaseOrderGet implements ledger_iface.PurchaseOrderServiceHandler.
func (p *purchaseOrderServiceImpl) PurchaseOrderGet(
	ctx context.Context,
	req *connect.Request[ledger_iface.PurchaseOrderGetRequest],
) (*connect.Response[ledger_iface.PurchaseOrderGetResponse], error) {
	res := connect.NewResponse(&ledger_iface.PurchaseOrderGetResponse{
		Payments: []*ledger_model.PurchaseOrderPayment{},
	})

	pay := req.Msg
	branch := pay.Branch()
	db := p.db.WithContext(ctx)

	po := ledger_model.PurchaseOrder{}
	err := db.Where("id = ?", pay.PurchaseOrderID).Find(&po).Error
	if err != nil {
		return res, err
	}
	if po.ID == 0 || !(branch.AllBranches || po.BranchID == branch.BranchID) {
		return res, &ledger_core.NotFoundError{Entity: "purchase order", ID: pay.PurchaseOrderID}
	}

	err = db.
		Where("purchase_order_id = ?", po.ID).
		Order("id asc").
		Find(&res.Msg.Payments).
		Error
	if err != nil {
		return res, err
	}

	res.Msg.Order = &po
	return res, nil
}
