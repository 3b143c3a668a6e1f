package ledger_model

import (
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

const DefaultExpensePrefix = "EXP"

type RecurringExpense struct {
	ID                     uint            `json:"id" gorm:"primarykey"`
	Name                   string          `json:"name" gorm:"not null"`
	Description            string          `json:"description"`
	VendorName             string          `json:"vendor_name"`
	AccountID              uint            `json:"account_id" gorm:"index;not null"`
	Category               string          `json:"category"`
	Amount                 decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	ReferencePrefix        string          `json:"reference_prefix"`
	Frequency              Frequency       `json:"frequency" gorm:"not null"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                *time.Time      `json:"end_date"`
	NextDueDate            time.Time       `json:"next_due_date" gorm:"index"`
	LastProcessedDate      *time.Time      `json:"last_processed_date"`
	AutoProcess            bool            `json:"auto_process"`
	NotificationDaysBefore int             `json:"notification_days_before"`
	IsActive               bool            `json:"is_active" gorm:"index"`
	Status                 ScheduleStatus  `json:"status"`
	ProcessCount           int             `json:"process_count"`
	BranchID               uint            `json:"branch_id" gorm:"index"`
	CreatedByID            uint            `json:"created_by_id"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (RecurringExpense) TableName() string {
	return "recurring_expenses"
}

func (e *RecurringExpense) Expired() bool {
	return PastEnd(e.NextDueDate, e.EndDate)
}

func (e *RecurringExpense) Due(now time.Time) bool {
	return e.IsActive && !e.Expired() && !e.NextDueDate.After(now)
}

func (e *RecurringExpense) Advance() {
	e.NextDueDate = e.Frequency.Next(e.StartDate, e.NextDueDate)
	if e.Expired() {
		e.IsActive = false
		e.Status = ScheduleExpired
	}
}

func (e *RecurringExpense) Reference(date time.Time) string {
	prefix := e.ReferencePrefix
	if prefix == "" {
		prefix = DefaultExpensePrefix
	}
	return ledger_core.DatedReference(prefix, date)
}

func (e *RecurringExpense) Related() *ledger_core.RelatedEntity {
	return &ledger_core.RelatedEntity{
		Type: ledger_core.RecurringExpenseEntity,
		ID:   e.ID,
	}
}

type ExpenseProcessLog struct {
	ID                 uint            `json:"id" gorm:"primarykey"`
	RecurringExpenseID uint            `json:"recurring_expense_id" gorm:"index;not null"`
	Status             ExecutionStatus `json:"status"`
	Amount             decimal.Decimal `json:"amount" gorm:"type:decimal(20,4)"`
	DueDate            time.Time       `json:"due_date"`
	ProcessedAt        time.Time       `json:"processed_at"`
	ReferenceNumber    string          `json:"reference_number"`
	ErrorMessage       string          `json:"error_message"`
	TransactionID      uint            `json:"transaction_id"`
}

func (ExpenseProcessLog) TableName() string {
	return "recurring_expense_logs"
}
