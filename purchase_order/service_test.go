package purchase_order_test

import (
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/purchase_order"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestPurchaseOrderService(t *testing.T) {
	var db gorm.DB

	bank := ledger_core.FinanceAccount{Name: "Equity Bank", Type: ledger_core.BankAccount, BranchID: 1, Balance: ledger_mock.Amount("1000000")}
	scope := ledger_iface.BranchScope{BranchID: 1, UserID: 2}

	rates := exchange_rate.NewStaticProvider("TZS", map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(2500),
	})

	moretest.Suite(t, "testing purchase order service",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &bank),
		},
		func(t *testing.T) {
			srv := purchase_order.NewPurchaseOrderService(&db, rates)

			var order *ledger_model.PurchaseOrder

			t.Run("create uses provider rate", func(t *testing.T) {
				res, err := srv.PurchaseOrderCreate(t.Context(), connect.NewRequest(&ledger_iface.PurchaseOrderCreateRequest{
					BranchScope:  scope,
					OrderNumber:  "PO-2025-001",
					SupplierName: "Acme Imports",
					Currency:     "usd",
					TotalAmount:  ledger_mock.Amount("100"),
				}))
				assert.Nil(t, err)

				order = res.Msg.Order
				assert.Equal(t, "USD", order.Currency)
				assert.Equal(t, "2500", order.ExchangeRate.String())
				assert.Equal(t, "250000", order.TotalAmountBase.String())
				assert.Equal(t, ledger_model.PaymentUnpaid, order.PaymentStatus)
				assert.Equal(t, uint(2), order.CreatedByID)
			})

			t.Run("create rejects duplicates and bad totals", func(t *testing.T) {
				_, err := srv.PurchaseOrderCreate(t.Context(), connect.NewRequest(&ledger_iface.PurchaseOrderCreateRequest{
					BranchScope: scope,
					OrderNumber: "PO-2025-001",
					Currency:    "TZS",
					TotalAmount: ledger_mock.Amount("5"),
				}))
				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "order_number", verr.Field)

				_, err = srv.PurchaseOrderCreate(t.Context(), connect.NewRequest(&ledger_iface.PurchaseOrderCreateRequest{
					BranchScope: scope,
					OrderNumber: "PO-2025-002",
					Currency:    "TZS",
				}))
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "total_amount", verr.Field)
			})

			t.Run("pay and reverse", func(t *testing.T) {
				res, err := srv.PaymentApply(t.Context(), connect.NewRequest(&ledger_iface.PaymentApplyRequest{
					BranchScope:     scope,
					PurchaseOrderID: order.ID,
					AccountID:       bank.ID,
					Amount:          ledger_mock.Amount("100000"),
					Currency:        "TZS",
				}))
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentPartial, res.Msg.Order.PaymentStatus)
				assert.Equal(t, "900000", res.Msg.Transaction.BalanceAfter.String())

				rev, err := srv.PaymentReverseLatest(t.Context(), connect.NewRequest(&ledger_iface.PaymentReverseLatestRequest{
					BranchScope:     scope,
					PurchaseOrderID: order.ID,
					Reason:          "wrong supplier account",
				}))
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.PaymentUnpaid, rev.Msg.Order.PaymentStatus)
				assert.Equal(t, ledger_core.Reversal, rev.Msg.Transaction.TransactionType)
			})

			t.Run("get lists payments", func(t *testing.T) {
				res, err := srv.PurchaseOrderGet(t.Context(), connect.NewRequest(&ledger_iface.PurchaseOrderGetRequest{
					BranchScope:     scope,
					PurchaseOrderID: order.ID,
				}))
				assert.Nil(t, err)
				assert.Len(t, res.Msg.Payments, 1)
				assert.Equal(t, ledger_model.PurchasePaymentReversed, res.Msg.Payments[0].Status)

				_, err = srv.PurchaseOrderGet(t.Context(), connect.NewRequest(&ledger_iface.PurchaseOrderGetRequest{
					BranchScope:     ledger_iface.BranchScope{BranchID: 9},
					PurchaseOrderID: order.ID,
				}))
				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})
		},
	)
}
