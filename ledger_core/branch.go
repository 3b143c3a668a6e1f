package ledger_core

import "gorm.io/gorm"

// BranchContext is passed explicitly into every store and journal call.
type BranchContext struct {
	BranchID    uint `json:"branch_id"`
	UserID      uint `json:"user_id"`
	AllBranches bool `json:"all_branches"`
}

func NewBranchContext(branchID, userID uint) BranchContext {
	return BranchContext{
		BranchID: branchID,
		UserID:   userID,
	}
}

// SystemContext is used by the processors, which act on behalf of the branch
// that owns the schedule but may touch shared accounts of any branch.
func SystemContext(branchID, userID uint) BranchContext {
	return BranchContext{
		BranchID:    branchID,
		UserID:      userID,
		AllBranches: true,
	}
}

func (b BranchContext) ScopeAccounts(query *gorm.DB) *gorm.DB {
	query = query.Where("finance_accounts.deleted = ?", false)
	if b.AllBranches {
		return query
	}

	return query.Where("finance_accounts.is_shared = ? OR finance_accounts.branch_id = ?", true, b.BranchID)
}

func (b BranchContext) ScopeTransactions(query *gorm.DB) *gorm.DB {
	if b.AllBranches {
		return query
	}

	return query.Where("account_transactions.branch_id = ?", b.BranchID)
}
