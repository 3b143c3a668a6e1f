package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_core"
	"gorm.io/gorm"
)

var errNotDue = errors.New("occurrence not due")

// occurrenceError marks a failure of the posting step of one occurrence.
// Those failures are written to the execution log, anything else is not.
type occurrenceError struct {
	err error
}

func (e *occurrenceError) Error() string {
	return e.err.Error()
}

func (e *occurrenceError) Unwrap() error {
	return e.err
}

// unwrapOccurrence strips the marker so callers see the ledger error.
func unwrapOccurrence(err error) error {
	if occ, ok := err.(*occurrenceError); ok {
		return occ.err
	}
	return err
}

type TickResult struct {
	Schedules int `json:"schedules"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// recordFailure writes a failed log row in its own unit, after the
// occurrence unit was rolled back.
func recordFailure(ctx context.Context, db *gorm.DB, name string, row any) error {
	return ledger_core.OpenTransaction(ctx, db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		bookmng.Touch(name)
		return tx.Create(row).Error
	})
}

func normalizeDate(t time.Time) time.Time {
	return clock.Date(t.UTC())
}

func normalizeEnd(end *time.Time) *time.Time {
	if end == nil {
		return nil
	}
	date := normalizeDate(*end)
	return &date
}

func ownedBy(branch ledger_core.BranchContext, branchID uint) bool {
	return branch.AllBranches || branch.BranchID == branchID
}

func scopeBranch(query *gorm.DB, branch ledger_core.BranchContext, table string) *gorm.DB {
	if branch.AllBranches {
		return query
	}
	return query.Where(table+".branch_id = ?", branch.BranchID)
}

// usableAccount checks that the account exists, is visible from the branch
// and is active.
func usableAccount(db *gorm.DB, branch ledger_core.BranchContext, field string, id uint) (*ledger_core.FinanceAccount, error) {
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
	if !acc.IsActive {
		return nil, ledger_core.NewValidationError(field, "account %s is inactive", acc.Name)
	}

	return &acc, nil
}

func daysBetween(from, to time.Time) int {
	return int(normalizeDate(to).Sub(normalizeDate(from)).Hours() / 24)
}
