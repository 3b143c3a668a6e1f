package transfer_transaction_test

import (
	"errors"
	"testing"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_transaction/transfer_transaction"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func balanceOf(t *testing.T, db *gorm.DB, id uint) string {
	acc := ledger_core.FinanceAccount{}
	err := db.First(&acc, id).Error
	assert.Nil(t, err)
	return acc.Balance.String()
}

func countRows(t *testing.T, db *gorm.DB, id uint) int64 {
	var count int64
	err := db.Model(&ledger_core.AccountTransaction{}).Where("account_id = ?", id).Count(&count).Error
	assert.Nil(t, err)
	return count
}

func TestTransfer(t *testing.T) {
	var db gorm.DB

	cash := ledger_core.FinanceAccount{Name: "Cash Drawer", BranchID: 1, Balance: ledger_mock.Amount("10000")}
	bank := ledger_core.FinanceAccount{Name: "CRDB Bank", Type: ledger_core.BankAccount, BranchID: 1, Balance: ledger_mock.Amount("500")}
	usd := ledger_core.FinanceAccount{Name: "USD Wallet", Currency: "USD", BranchID: 1}

	branch := ledger_core.NewBranchContext(1, 3)

	moretest.Suite(t, "testing transfer",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &cash),
			ledger_mock.SeedAccount(&db, &bank),
			ledger_mock.SeedAccount(&db, &usd),
		},
		func(t *testing.T) {
			transferOps := transfer_transaction.NewTransferTransaction(t.Context(), &db, branch)

			t.Run("transfer rent", func(t *testing.T) {
				result, err := transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("4000"),
					Description:          "rent",
				})
				assert.Nil(t, err)

				assert.Equal(t, "6000", balanceOf(t, &db, cash.ID))
				assert.Equal(t, "4500", balanceOf(t, &db, bank.ID))

				assert.Equal(t, result.Out.ReferenceNumber, result.In.ReferenceNumber)
				assert.Equal(t, result.Reference, result.Out.ReferenceNumber)
				assert.Equal(t, "Transfer to CRDB Bank: rent", result.Out.Description)
				assert.Equal(t, "Transfer from Cash Drawer: rent", result.In.Description)

				outMeta := result.Out.Meta().Transfer
				assert.Equal(t, ledger_core.TransferOutgoing, outMeta.TransferType)
				assert.Equal(t, bank.ID, outMeta.CounterpartAccountID)

				inMeta := result.In.Meta().Transfer
				assert.Equal(t, ledger_core.TransferIncoming, inMeta.TransferType)
				assert.Equal(t, cash.ID, inMeta.CounterpartAccountID)
				assert.Equal(t, "TZS", inMeta.CounterpartCurrency)
			})

			t.Run("same account rejected", func(t *testing.T) {
				_, err := transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      cash.ID,
					DestinationAccountID: cash.ID,
					Amount:               ledger_mock.Amount("1"),
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
			})

			t.Run("non positive amount rejected", func(t *testing.T) {
				_, err := transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("-5"),
				})

				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))
			})

			t.Run("insufficient source", func(t *testing.T) {
				_, err := transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      bank.ID,
					DestinationAccountID: cash.ID,
					Amount:               ledger_mock.Amount("9000"),
				})

				var insufficient *ledger_core.InsufficientBalanceError
				assert.True(t, errors.As(err, &insufficient))
				assert.Equal(t, "CRDB Bank", insufficient.AccountName)
				assert.Equal(t, "4500", balanceOf(t, &db, bank.ID))
			})

			t.Run("failing destination leg leaves source untouched", func(t *testing.T) {
				injected := errors.New("injected destination failure")
				err := db.Callback().Create().Before("gorm:create").Register("test:fail_transfer_in", func(d *gorm.DB) {
					row, ok := d.Statement.Dest.(*ledger_core.AccountTransaction)
					if ok && row.TransactionType == ledger_core.TransferIn {
						_ = d.AddError(injected)
					}
				})
				assert.Nil(t, err)
				defer func() {
					_ = db.Callback().Create().Remove("test:fail_transfer_in")
				}()

				beforeRows := countRows(t, &db, cash.ID)

				_, err = transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("100"),
				})
				assert.ErrorIs(t, err, injected)

				assert.Equal(t, "6000", balanceOf(t, &db, cash.ID))
				assert.Equal(t, "4500", balanceOf(t, &db, bank.ID))
				assert.Equal(t, beforeRows, countRows(t, &db, cash.ID))
			})

			t.Run("cross currency applies literal amount", func(t *testing.T) {
				_, err := transferOps.Transfer(&transfer_transaction.TransferPayload{
					SourceAccountID:      cash.ID,
					DestinationAccountID: usd.ID,
					Amount:               ledger_mock.Amount("1000"),
				})
				assert.Nil(t, err)

				assert.Equal(t, "5000", balanceOf(t, &db, cash.ID))
				assert.Equal(t, "1000", balanceOf(t, &db, usd.ID))
			})

			t.Run("ledger chain stays consistent", func(t *testing.T) {
				for _, id := range []uint{cash.ID, bank.ID, usd.ID} {
					report, err := ledger_core.AuditAccount(t.Context(), &db, id)
					assert.Nil(t, err)
					assert.True(t, report.Ok(), report.Issues)
				}
			})
		},
	)
}
