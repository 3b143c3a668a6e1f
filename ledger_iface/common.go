package ledger_iface

import (
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
)

const PackagePrefix = "/ledger.v1."

// BranchScope is embedded in every request and becomes the explicit
// BranchContext of the call.
type BranchScope struct {
	BranchID    uint `json:"branch_id"`
	UserID      uint `json:"user_id"`
	AllBranches bool `json:"all_branches"`
}

func (s *BranchScope) Branch() ledger_core.BranchContext {
	return ledger_core.BranchContext{
		BranchID:    s.BranchID,
		UserID:      s.UserID,
		AllBranches: s.AllBranches,
	}
}

type PageFilter struct {
	Page  int64 `json:"page" validate:"min=0"`
	Limit int64 `json:"limit" validate:"min=0,max=500"`
}

func (p *PageFilter) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 50
	}
}

type PageInfo struct {
	CurrentPage int64 `json:"current_page"`
	TotalPage   int64 `json:"total_page"`
	TotalItems  int64 `json:"total_items"`
}

type TimeFilterRange struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

type SortType string

const (
	SortAsc  SortType = "asc"
	SortDesc SortType = "desc"
)
