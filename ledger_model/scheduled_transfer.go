package ledger_model

import (
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

const DefaultTransferPrefix = "SCHED-TRF"

type ScheduledTransfer struct {
	ID                     uint            `json:"id" gorm:"primarykey"`
	SourceAccountID        uint            `json:"source_account_id" gorm:"index;not null"`
	DestinationAccountID   uint            `json:"destination_account_id" gorm:"index;not null"`
	Amount                 decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	Description            string          `json:"description"`
	ReferencePrefix        string          `json:"reference_prefix"`
	Frequency              Frequency       `json:"frequency" gorm:"not null"`
	StartDate              time.Time       `json:"start_date"`
	EndDate                *time.Time      `json:"end_date"`
	NextExecutionDate      time.Time       `json:"next_execution_date" gorm:"index"`
	LastExecutedDate       *time.Time      `json:"last_executed_date"`
	AutoExecute            bool            `json:"auto_execute"`
	NotificationEnabled    bool            `json:"notification_enabled"`
	NotificationDaysBefore int             `json:"notification_days_before"`
	IsActive               bool            `json:"is_active" gorm:"index"`
	Status                 ScheduleStatus  `json:"status"`
	ExecutionCount         int             `json:"execution_count"`
	BranchID               uint            `json:"branch_id" gorm:"index"`
	CreatedByID            uint            `json:"created_by_id"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (ScheduledTransfer) TableName() string {
	return "scheduled_transfers"
}

func (s *ScheduledTransfer) Expired() bool {
	return PastEnd(s.NextExecutionDate, s.EndDate)
}

func (s *ScheduledTransfer) Due(now time.Time) bool {
	return s.IsActive && !s.Expired() && !s.NextExecutionDate.After(now)
}

// Advance moves to the next occurrence after a successful or skipped run and
// expires the schedule once the end date is passed.
func (s *ScheduledTransfer) Advance() {
	s.NextExecutionDate = s.Frequency.Next(s.StartDate, s.NextExecutionDate)
	if s.Expired() {
		s.IsActive = false
		s.Status = ScheduleExpired
	}
}

func (s *ScheduledTransfer) Reference(date time.Time) string {
	prefix := s.ReferencePrefix
	if prefix == "" {
		prefix = DefaultTransferPrefix
	}
	return ledger_core.DatedReference(prefix, date)
}

func (s *ScheduledTransfer) Related() *ledger_core.RelatedEntity {
	return &ledger_core.RelatedEntity{
		Type: ledger_core.ScheduledTransferEntity,
		ID:   s.ID,
	}
}

type TransferExecution struct {
	ID                  uint            `json:"id" gorm:"primarykey"`
	ScheduledTransferID uint            `json:"scheduled_transfer_id" gorm:"index;not null"`
	Status              ExecutionStatus `json:"status"`
	Amount              decimal.Decimal `json:"amount" gorm:"type:decimal(20,4)"`
	ScheduledDate       time.Time       `json:"scheduled_date"`
	ExecutedAt          time.Time       `json:"executed_at"`
	ReferenceNumber     string          `json:"reference_number"`
	ErrorMessage        string          `json:"error_message"`
	OutTransactionID    uint            `json:"out_transaction_id"`
	InTransactionID     uint            `json:"in_transaction_id"`
}

func (TransferExecution) TableName() string {
	return "scheduled_transfer_executions"
}
