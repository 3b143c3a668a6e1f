package ledger_mock

import (
	"testing"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		err := db.AutoMigrate(ledger_model.AllModels()...)
		assert.Nil(t, err)
		return nil
	}
}

// SeedAccount inserts acc directly, so the opening balance has no journal
// row. Missing currency defaults to TZS and the account starts active.
func SeedAccount(db *gorm.DB, acc *ledger_core.FinanceAccount) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		if acc.Currency == "" {
			acc.Currency = "TZS"
		}
		if acc.Type == "" {
			acc.Type = ledger_core.CashAccount
		}
		acc.IsActive = true

		err := db.Create(acc).Error
		assert.Nil(t, err)

		return nil
	}
}

// SeedPurchaseOrder stores an unpaid order with its base total computed from
// the exchange rate.
func SeedPurchaseOrder(db *gorm.DB, po *ledger_model.PurchaseOrder) moretest.SetupFunc {
	return func(t *testing.T) func() error {
		if po.ExchangeRate.IsZero() {
			po.ExchangeRate = decimal.NewFromInt(1)
		}
		po.TotalAmountBase = ledger_core.RoundAmount(po.TotalAmount.Mul(po.ExchangeRate))
		po.PaymentStatus = ledger_model.PaymentUnpaid

		err := db.Create(po).Error
		assert.Nil(t, err)

		return nil
	}
}

func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
