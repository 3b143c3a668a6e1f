package ledger_core_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/stretchr/testify/assert"
)

func TestTransactionType(t *testing.T) {
	dir, ok := ledger_core.TransferIn.FixedDirection()
	assert.True(t, ok)
	assert.Equal(t, ledger_core.Inflow, dir)

	dir, ok = ledger_core.PaymentMade.FixedDirection()
	assert.True(t, ok)
	assert.Equal(t, ledger_core.Outflow, dir)

	_, ok = ledger_core.Reversal.FixedDirection()
	assert.False(t, ok)

	assert.False(t, ledger_core.TransactionType("refund").Valid())
	assert.Equal(t, ledger_core.Inflow, ledger_core.Outflow.Inverse())
}

func TestCheckBalance(t *testing.T) {
	row := ledger_core.AccountTransaction{
		TransactionType: ledger_core.Expense,
		Direction:       ledger_core.Outflow,
		Amount:          ledger_mock.Amount("10"),
		BalanceBefore:   ledger_mock.Amount("25"),
		BalanceAfter:    ledger_mock.Amount("15"),
	}
	assert.Nil(t, row.CheckBalance())

	row.BalanceAfter = ledger_mock.Amount("35")
	assert.NotNil(t, row.CheckBalance())

	row.Direction = ledger_core.Inflow
	assert.NotNil(t, row.CheckBalance())
}

func TestVisibleIn(t *testing.T) {
	acc := ledger_core.FinanceAccount{BranchID: 1}
	assert.True(t, acc.VisibleIn(ledger_core.NewBranchContext(1, 0)))
	assert.False(t, acc.VisibleIn(ledger_core.NewBranchContext(2, 0)))
	assert.True(t, acc.VisibleIn(ledger_core.SystemContext(2, 0)))

	acc.IsShared = true
	assert.True(t, acc.VisibleIn(ledger_core.NewBranchContext(2, 0)))

	acc.Deleted = true
	assert.False(t, acc.VisibleIn(ledger_core.SystemContext(1, 0)))
}

func TestReference(t *testing.T) {
	ref := ledger_core.NewReference(ledger_core.TransferPrefix)
	assert.True(t, strings.HasPrefix(ref, "TRF-"))
	assert.Len(t, ref, 12)
	assert.Equal(t, strings.ToUpper(ref), ref)

	assert.Equal(t, "RENT-20240315", ledger_core.DatedReference("RENT", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestFormatAmount(t *testing.T) {
	err := &ledger_core.InsufficientBalanceError{
		AccountName: "Cash",
		Currency:    "USD",
		Required:    ledger_mock.Amount("12.5"),
		Available:   ledger_mock.Amount("3"),
	}
	assert.Contains(t, err.Error(), "$12.50")
	assert.Contains(t, err.Error(), "$3.00")

	assert.Equal(t, "7.00 XXZ", ledger_core.FormatAmount(ledger_mock.Amount("7"), "XXZ"))
	assert.True(t, ledger_core.ValidCurrency("TZS"))
	assert.False(t, ledger_core.ValidCurrency("XXZ"))
}
