package payment_transaction_test

import (
	"errors"
	"testing"

	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/ledger_transaction/payment_transaction"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPurchaseOrderPayment(t *testing.T) {
	var db gorm.DB

	bank := ledger_core.FinanceAccount{Name: "NMB Bank", Type: ledger_core.BankAccount, BranchID: 1, Balance: ledger_mock.Amount("500000")}
	dollar := ledger_core.FinanceAccount{Name: "USD Account", Currency: "USD", BranchID: 1, Balance: ledger_mock.Amount("1000")}
	shilling := ledger_core.FinanceAccount{Name: "KES Wallet", Currency: "KES", BranchID: 1, Balance: ledger_mock.Amount("1000")}

	local := ledger_model.PurchaseOrder{OrderNumber: "PO-0001", Currency: "TZS", TotalAmount: ledger_mock.Amount("100000"), BranchID: 1}
	foreign := ledger_model.PurchaseOrder{
		OrderNumber:  "PO-0002",
		Currency:     "USD",
		TotalAmount:  ledger_mock.Amount("100"),
		ExchangeRate: ledger_mock.Amount("2500"),
		BranchID:     1,
	}
	odd := ledger_model.PurchaseOrder{
		OrderNumber:  "PO-0003",
		Currency:     "USD",
		TotalAmount:  ledger_mock.Amount("10"),
		ExchangeRate: ledger_mock.Amount("2543.12345678"),
		BranchID:     1,
	}

	rates := exchange_rate.NewStaticProvider("TZS", map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(2600),
		"KES": decimal.NewFromInt(20),
	})
	branch := ledger_core.NewBranchContext(1, 4)

	moretest.Suite(t, "testing purchase order payment",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &bank),
			ledger_mock.SeedAccount(&db, &dollar),
			ledger_mock.SeedAccount(&db, &shilling),
			ledger_mock.SeedPurchaseOrder(&db, &local),
			ledger_mock.SeedPurchaseOrder(&db, &foreign),
			ledger_mock.SeedPurchaseOrder(&db, &odd),
		},
		func(t *testing.T) {
			paymentOps := payment_transaction.NewPaymentTransaction(t.Context(), &db, branch, rates)

			t.Run("partial then full payment", func(t *testing.T) {
				result, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: local.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("40000"),
				})
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentPartial, result.Order.PaymentStatus)
				assert.Equal(t, ledger_core.PaymentMade, result.Transaction.TransactionType)
				assert.Equal(t, "PO-0001", result.Transaction.ReferenceNumber)
				assert.Equal(t, local.ID, result.Transaction.Meta().Payment.PurchaseOrderID)

				result, err = paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: local.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("60000"),
				})
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentPaid, result.Order.PaymentStatus)
				assert.True(t, result.Order.Remaining().IsZero())

				po := ledger_model.PurchaseOrder{}
				assert.Nil(t, db.First(&po, local.ID).Error)
				assert.Equal(t, ledger_model.PaymentPaid, po.PaymentStatus)
				assert.Equal(t, "100000", po.TotalPaid.String())
			})

			t.Run("paid order rejects payments", func(t *testing.T) {
				_, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: local.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("1"),
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
			})

			t.Run("reverse latest payment", func(t *testing.T) {
				result, err := paymentOps.ReverseLatestPayment(local.ID, "supplier refund")
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentPartial, result.Order.PaymentStatus)
				assert.Equal(t, "40000", result.Order.TotalPaid.String())
				assert.Equal(t, ledger_model.PurchasePaymentReversed, result.Payment.Status)
				assert.Equal(t, ledger_core.Reversal, result.Transaction.TransactionType)

				acc := ledger_core.FinanceAccount{}
				assert.Nil(t, db.First(&acc, bank.ID).Error)
				assert.Equal(t, "460000", acc.Balance.String())

				result, err = paymentOps.ReverseLatestPayment(local.ID, "supplier refund")
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentUnpaid, result.Order.PaymentStatus)

				_, err = paymentOps.ReverseLatestPayment(local.ID, "nothing left")
				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})

			t.Run("foreign order uses stored exchange rate", func(t *testing.T) {
				result, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: foreign.ID,
					AccountID:       dollar.ID,
					Amount:          ledger_mock.Amount("40"),
					Currency:        "USD",
				})
				assert.Nil(t, err)
				assert.Equal(t, "40", result.Transaction.Amount.String())
				assert.Equal(t, "100000", result.Payment.BaseAmount.String())
				assert.Equal(t, ledger_model.PaymentPartial, result.Order.PaymentStatus)
			})

			t.Run("base account pays converted amount", func(t *testing.T) {
				result, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: foreign.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("20"),
					Currency:        "USD",
				})
				assert.Nil(t, err)
				assert.Equal(t, "50000", result.Transaction.Amount.String())
				assert.Equal(t, "150000", result.Order.TotalPaid.String())
			})

			t.Run("overpayment rejected", func(t *testing.T) {
				_, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: foreign.ID,
					AccountID:       dollar.ID,
					Amount:          ledger_mock.Amount("50"),
					Currency:        "USD",
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "amount", verr.Field)
			})

			t.Run("account in third currency rejected", func(t *testing.T) {
				_, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: foreign.ID,
					AccountID:       shilling.ID,
					Amount:          ledger_mock.Amount("1"),
					Currency:        "USD",
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "account_id", verr.Field)
			})

			t.Run("converted amount rounded to four places", func(t *testing.T) {
				result, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: odd.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("0.0333"),
					Currency:        "USD",
				})
				assert.Nil(t, err)
				assert.Equal(t, "84.686", result.Transaction.Amount.String())
				assert.Equal(t, "84.686", result.Payment.BaseAmount.String())
				assert.Equal(t, "84.686", result.Order.TotalPaid.String())
			})

			t.Run("amount beyond four places rejected", func(t *testing.T) {
				_, err := paymentOps.ApplyPayment(&payment_transaction.PaymentPayload{
					PurchaseOrderID: odd.ID,
					AccountID:       dollar.ID,
					Amount:          ledger_mock.Amount("0.00005"),
					Currency:        "USD",
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "amount", verr.Field)
			})

			t.Run("other branch cannot see order", func(t *testing.T) {
				_, err := payment_transaction.
					NewPaymentTransaction(t.Context(), &db, ledger_core.NewBranchContext(2, 1), rates).
					ApplyPayment(&payment_transaction.PaymentPayload{
						PurchaseOrderID: foreign.ID,
						AccountID:       bank.ID,
						Amount:          ledger_mock.Amount("1"),
					})

				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})
		},
	)
}
