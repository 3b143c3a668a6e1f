package account

import (
	"github.com/pdcgo/ledger_service/exchange_rate"
	"github.com/pdcgo/ledger_service/ledger_core"
	"gorm.io/gorm"
)

type accountServiceImpl struct {
	db    *gorm.DB
	rates exchange_rate.Provider
}

func NewAccountService(db *gorm.DB, rates exchange_rate.Provider) *accountServiceImpl {
	return &accountServiceImpl{
		db:    db,
		rates: rates,
	}
}

// findAccount loads an account visible from the branch.
func findAccount(db *gorm.DB, branch ledger_core.BranchContext, id uint) (*ledger_core.FinanceAccount, error) {
	acc := ledger_core.FinanceAccount{}
	err := branch.
		ScopeAccounts(db.Model(&ledger_core.FinanceAccount{})).
		Where("finance_accounts.id = ?", id).
		Find(&acc).
		Error
	if err != nil {
		return nil, err
	}

	if acc.ID == 0 {
		return nil, &ledger_core.NotFoundError{Entity: "account", ID: id}
	}

	return &acc, nil
}
