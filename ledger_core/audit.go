package ledger_core

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AuditReport struct {
	AccountID    uint            `json:"account_id"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions int             `json:"transactions"`
	Issues       []string        `json:"issues"`
}

func (r *AuditReport) Ok() bool {
	return len(r.Issues) == 0
}

// AuditAccount replays every row of the account in id order and checks that
// each row is internally consistent, that rows chain into each other and that
// the last row matches the stored balance.
func AuditAccount(ctx context.Context, db *gorm.DB, accountID uint) (*AuditReport, error) {
	acc := FinanceAccount{}
	err := db.WithContext(ctx).First(&acc, accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "account", ID: accountID}
		}
		return nil, err
	}

	rows := []*AccountTransaction{}
	err = db.
		WithContext(ctx).
		Model(&AccountTransaction{}).
		Where("account_id = ?", accountID).
		Order("id asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	report := AuditReport{
		AccountID:    acc.ID,
		Balance:      acc.Balance,
		Transactions: len(rows),
		Issues:       []string{},
	}

	var prev *AccountTransaction
	for _, row := range rows {
		err = row.CheckBalance()
		if err != nil {
			report.Issues = append(report.Issues, err.Error())
		}

		if prev != nil && !prev.BalanceAfter.Equal(row.BalanceBefore) {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"transaction %d balance_before %s does not follow %d balance_after %s",
				row.ID, row.BalanceBefore, prev.ID, prev.BalanceAfter,
			))
		}
		prev = row
	}

	if prev != nil && !prev.BalanceAfter.Equal(acc.Balance) {
		report.Issues = append(report.Issues, fmt.Sprintf(
			"account balance %s differs from last balance_after %s",
			acc.Balance, prev.BalanceAfter,
		))
	}

	return &report, nil
}
