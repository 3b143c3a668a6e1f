package reversal_transaction_test

import (
	"errors"
	"testing"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_transaction/reversal_transaction"
	"github.com/pdcgo/ledger_service/ledger_transaction/transfer_transaction"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestReversal(t *testing.T) {
	var db gorm.DB

	acc := ledger_core.FinanceAccount{Name: "M-Pesa", Type: ledger_core.MobileMoneyAccount, BranchID: 1, Balance: ledger_mock.Amount("3000")}
	spend := ledger_core.FinanceAccount{Name: "Petty Cash", BranchID: 1}

	branch := ledger_core.NewBranchContext(1, 1)

	moretest.Suite(t, "testing reversal",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &acc),
			ledger_mock.SeedAccount(&db, &spend),
		},
		func(t *testing.T) {
			reversalOps := reversal_transaction.NewReversalTransaction(t.Context(), &db, branch)

			inflow, err := ledger_core.PostTransaction(t.Context(), &db, branch, &ledger_core.EntryPayload{
				AccountID: acc.ID,
				Type:      ledger_core.PaymentReceived,
				Amount:    ledger_mock.Amount("2000"),
			})
			assert.Nil(t, err)

			t.Run("reason required", func(t *testing.T) {
				_, err := reversalOps.Reverse(&reversal_transaction.ReversalPayload{
					TransactionID: inflow.ID,
					Reason:        "  ",
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
			})

			t.Run("reverse duplicate inflow", func(t *testing.T) {
				result, err := reversalOps.Reverse(&reversal_transaction.ReversalPayload{
					TransactionID: inflow.ID,
					Reason:        "duplicate",
				})
				assert.Nil(t, err)

				assert.Equal(t, ledger_core.Outflow, result.Reversal.Direction)
				assert.Equal(t, ledger_core.Reversal, result.Reversal.TransactionType)
				assert.Equal(t, "2000", result.Reversal.Amount.String())
				assert.Equal(t, "3000", result.Reversal.BalanceAfter.String())
				assert.Equal(t, inflow.ID, result.Reversal.Meta().Reversal.OriginalTransactionID)

				meta := result.Original.Meta()
				assert.True(t, meta.Reversed)
				assert.Equal(t, result.Reversal.ID, meta.ReversalTransactionID)

				fresh := ledger_core.FinanceAccount{}
				assert.Nil(t, db.First(&fresh, acc.ID).Error)
				assert.Equal(t, "3000", fresh.Balance.String())
			})

			t.Run("second reversal always rejected", func(t *testing.T) {
				for i := 0; i < 3; i++ {
					_, err := reversalOps.Reverse(&reversal_transaction.ReversalPayload{
						TransactionID: inflow.ID,
						Reason:        "retry",
					})

					var already *ledger_core.AlreadyReversedError
					assert.True(t, errors.As(err, &already))
				}
			})

			t.Run("reversing an inflow already spent", func(t *testing.T) {
				deposit, err := ledger_core.PostTransaction(t.Context(), &db, branch, &ledger_core.EntryPayload{
					AccountID: spend.ID,
					Type:      ledger_core.PaymentReceived,
					Amount:    ledger_mock.Amount("500"),
				})
				assert.Nil(t, err)

				_, err = ledger_core.PostTransaction(t.Context(), &db, branch, &ledger_core.EntryPayload{
					AccountID: spend.ID,
					Type:      ledger_core.Expense,
					Amount:    ledger_mock.Amount("400"),
				})
				assert.Nil(t, err)

				_, err = reversalOps.Reverse(&reversal_transaction.ReversalPayload{
					TransactionID: deposit.ID,
					Reason:        "bounced",
				})

				var insufficient *ledger_core.InsufficientBalanceError
				assert.True(t, errors.As(err, &insufficient))

				mut := ledger_core.NewTransactionMutation(&db).ByID(deposit.ID, false)
				assert.Nil(t, mut.Err())
				assert.False(t, mut.Data().IsReversed())
			})

			t.Run("reverses only the given transfer leg", func(t *testing.T) {
				result, err := transfer_transaction.
					NewTransferTransaction(t.Context(), &db, branch).
					Transfer(&transfer_transaction.TransferPayload{
						SourceAccountID:      acc.ID,
						DestinationAccountID: spend.ID,
						Amount:               ledger_mock.Amount("1000"),
					})
				assert.Nil(t, err)

				_, err = reversalOps.Reverse(&reversal_transaction.ReversalPayload{
					TransactionID: result.Out.ID,
					Reason:        "wrong account",
				})
				assert.Nil(t, err)

				source := ledger_core.FinanceAccount{}
				assert.Nil(t, db.First(&source, acc.ID).Error)
				assert.Equal(t, "3000", source.Balance.String())

				dest := ledger_core.FinanceAccount{}
				assert.Nil(t, db.First(&dest, spend.ID).Error)
				assert.Equal(t, "1100", dest.Balance.String())
			})

			t.Run("reversal rows cannot be reversed", func(t *testing.T) {
				row := ledger_core.AccountTransaction{}
				err := db.Where("transaction_type = ?", ledger_core.Reversal).First(&row).Error
				assert.Nil(t, err)

				_, err = reversalOps.Reverse(&reversal_transaction.ReversalPayload{
					TransactionID: row.ID,
					Reason:        "undo",
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
			})

			t.Run("other branch cannot reverse", func(t *testing.T) {
				_, err := reversal_transaction.
					NewReversalTransaction(t.Context(), &db, ledger_core.NewBranchContext(2, 1)).
					Reverse(&reversal_transaction.ReversalPayload{
						TransactionID: inflow.ID,
						Reason:        "x",
					})

				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})

			t.Run("history stays consistent", func(t *testing.T) {
				for _, id := range []uint{acc.ID, spend.ID} {
					report, err := ledger_core.AuditAccount(t.Context(), &db, id)
					assert.Nil(t, err)
					assert.True(t, report.Ok(), report.Issues)
				}
			})
		},
	)
}
