package payment_transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/ledger_transaction/reversal_transaction"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Overpayment up to one base unit is accepted to absorb rounding.
var PaymentTolerance = decimal.NewFromInt(1)

type PaymentPayload struct {
	PurchaseOrderID uint            `json:"purchase_order_id"`
	AccountID       uint            `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	At              time.Time       `json:"at"`
}

type PaymentResult struct {
	Order       *ledger_model.PurchaseOrder        `json:"order"`
	Payment     *ledger_model.PurchaseOrderPayment `json:"payment"`
	Transaction *ledger_core.AccountTransaction    `json:"transaction"`
}

type PaymentTransaction interface {
	ApplyPayment(payload *PaymentPayload) (*PaymentResult, error)
	ReverseLatestPayment(poID uint, reason string) (*PaymentResult, error)
}

type paymentTransactionImpl struct {
	ctx    context.Context
	tx     *gorm.DB
	branch ledger_core.BranchContext
	rates  exchange_rate.Provider
}

// ApplyPayment implements PaymentTransaction.
func (p *paymentTransactionImpl) ApplyPayment(payload *PaymentPayload) (*PaymentResult, error) {
	var result *PaymentResult

	if !payload.Amount.IsPositive() {
		return nil, ledger_core.NewValidationError("amount", "amount must be greater than zero")
	}
	if !ledger_core.ValidAmountScale(payload.Amount) {
		return nil, ledger_core.NewValidationError("amount", "amount %s has more than %d decimal places", payload.Amount, ledger_core.AmountPlaces)
	}

	err := ledger_core.OpenTransaction(p.ctx, p.tx, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		po, err := lockOrder(tx, p.branch, payload.PurchaseOrderID)
		if err != nil {
			return err
		}

		if po.PaymentStatus == ledger_model.PaymentPaid {
			return ledger_core.NewValidationError("purchase_order_id", "purchase order %s is already paid", po.OrderNumber)
		}

		currency := strings.ToUpper(payload.Currency)
		if currency == "" {
			currency = po.Currency
		}
		if !ledger_core.ValidCurrency(currency) {
			return ledger_core.NewValidationError("currency", "unknown currency %s", currency)
		}

		rate, err := p.rateFor(po, currency)
		if err != nil {
			return err
		}
		baseAmount := ledger_core.RoundAmount(payload.Amount.Mul(rate))

		remaining := po.Remaining()
		if baseAmount.GreaterThan(remaining.Add(PaymentTolerance)) {
			return ledger_core.NewValidationError(
				"amount",
				"payment %s exceeds remaining %s",
				ledger_core.FormatAmount(baseAmount, p.rates.Base()),
				ledger_core.FormatAmount(remaining, p.rates.Base()),
			)
		}

		acc, err := ledger_core.LockAccount(tx, payload.AccountID)
		if err != nil {
			return err
		}

		var posted decimal.Decimal
		switch acc.Currency {
		case currency:
			posted = payload.Amount
		case p.rates.Base():
			posted = baseAmount
		default:
			return ledger_core.NewValidationError(
				"account_id",
				"account %s holds %s, payment is in %s",
				acc.Name, acc.Currency, currency,
			)
		}

		desc := payload.Description
		if desc == "" {
			desc = fmt.Sprintf("Payment for purchase order %s", po.OrderNumber)
		}

		row, err := bookmng.Post(p.branch, &ledger_core.EntryPayload{
			AccountID:   acc.ID,
			Type:        ledger_core.PaymentMade,
			Amount:      posted,
			Description: desc,
			Reference:   po.OrderNumber,
			Related:     po.Related(),
			EntryTime:   payload.At,
			Metadata: ledger_core.NewPaymentMeta(&ledger_core.PaymentMeta{
				PurchaseOrderID: po.ID,
				Currency:        currency,
				OriginalAmount:  payload.Amount,
				ExchangeRate:    rate,
				BaseAmount:      baseAmount,
			}),
		})
		if err != nil {
			return err
		}

		payment := ledger_model.PurchaseOrderPayment{
			PurchaseOrderID: po.ID,
			AccountID:       acc.ID,
			TransactionID:   row.ID,
			Amount:          payload.Amount,
			Currency:        currency,
			ExchangeRate:    rate,
			BaseAmount:      baseAmount,
			Status:          ledger_model.PurchasePaymentCompleted,
			CreatedByID:     p.branch.UserID,
		}
		err = tx.Create(&payment).Error
		if err != nil {
			return err
		}

		po.TotalPaid = po.TotalPaid.Add(baseAmount)
		err = saveTotals(tx, po)
		if err != nil {
			return err
		}

		result = &PaymentResult{
			Order:       po,
			Payment:     &payment,
			Transaction: row,
		}
		return nil
	})

	return result, err
}

// ReverseLatestPayment implements PaymentTransaction.
func (p *paymentTransactionImpl) ReverseLatestPayment(poID uint, reason string) (*PaymentResult, error) {
	var result *PaymentResult

	err := ledger_core.OpenTransaction(p.ctx, p.tx, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		po, err := lockOrder(tx, p.branch, poID)
		if err != nil {
			return err
		}

		payment := ledger_model.PurchaseOrderPayment{}
		err = tx.
			Model(&ledger_model.PurchaseOrderPayment{}).
			Where("purchase_order_id = ?", po.ID).
			Where("status = ?", ledger_model.PurchasePaymentCompleted).
			Order("id desc").
			First(&payment).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ledger_core.NotFoundError{Entity: "purchase_order_payment", ID: po.ID}
			}
			return err
		}

		reversed, err := reversal_transaction.ReverseWithBook(tx, bookmng, p.branch, &reversal_transaction.ReversalPayload{
			TransactionID: payment.TransactionID,
			Reason:        reason,
			SettlesOrder:  true,
		})
		if err != nil {
			return err
		}

		payment.Status = ledger_model.PurchasePaymentReversed
		payment.ReversalTransactionID = reversed.Reversal.ID
		err = tx.
			Model(&ledger_model.PurchaseOrderPayment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{
				"status":                  payment.Status,
				"reversal_transaction_id": payment.ReversalTransactionID,
			}).
			Error
		if err != nil {
			return err
		}

		po.TotalPaid = po.TotalPaid.Sub(payment.BaseAmount)
		if po.TotalPaid.IsNegative() {
			po.TotalPaid = decimal.Zero
		}
		err = saveTotals(tx, po)
		if err != nil {
			return err
		}

		result = &PaymentResult{
			Order:       po,
			Payment:     &payment,
			Transaction: reversed.Reversal,
		}
		return nil
	})

	return result, err
}

// rateFor converts payment currency to base. The order's stored rate wins
// for its own currency; anything else asks the provider.
func (p *paymentTransactionImpl) rateFor(po *ledger_model.PurchaseOrder, currency string) (decimal.Decimal, error) {
	if currency == p.rates.Base() {
		return decimal.NewFromInt(1), nil
	}
	if currency == po.Currency && po.ExchangeRate.IsPositive() {
		return po.ExchangeRate, nil
	}

	return p.rates.Rate(p.ctx, currency, p.rates.Base())
}

func NewPaymentTransaction(
	ctx context.Context,
	tx *gorm.DB,
	branch ledger_core.BranchContext,
	rates exchange_rate.Provider,
) PaymentTransaction {
	return &paymentTransactionImpl{
		ctx:    ctx,
		tx:     tx,
		branch: branch,
		rates:  rates,
	}
}

func lockOrder(tx *gorm.DB, branch ledger_core.BranchContext, id uint) (*ledger_model.PurchaseOrder, error) {
	po := ledger_model.PurchaseOrder{}
	err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
		}).
		Model(&ledger_model.PurchaseOrder{}).
		Where("id = ?", id).
		First(&po).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ledger_core.NotFoundError{Entity: "purchase_order", ID: id}
		}
		return nil, err
	}

	if !branch.AllBranches && po.BranchID != branch.BranchID {
		return nil, &ledger_core.NotFoundError{Entity: "purchase_order", ID: id}
	}

	return &po, nil
}

func saveTotals(tx *gorm.DB, po *ledger_model.PurchaseOrder) error {
	po.RefreshStatus()
	return tx.
		Model(&ledger_model.PurchaseOrder{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"total_paid":     po.TotalPaid,
			"payment_status": po.PaymentStatus,
			"updated_at":     time.Now(),
		}).
		Error
}
