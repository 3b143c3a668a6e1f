package ledger_core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type AccountType string

const (
	CashAccount        AccountType = "cash"
	BankAccount        AccountType = "bank"
	MobileMoneyAccount AccountType = "mobile_money"
	CreditCardAccount  AccountType = "credit_card"
	SavingsAccount     AccountType = "savings"
	OtherAccount       AccountType = "other"
)

func (t AccountType) Valid() bool {
	switch t {
	case CashAccount, BankAccount, MobileMoneyAccount, CreditCardAccount, SavingsAccount, OtherAccount:
		return true
	default:
		return false
	}
}

type Direction string

const (
	Inflow  Direction = "in"
	Outflow Direction = "out"
)

func (d Direction) Valid() bool {
	return d == Inflow || d == Outflow
}

func (d Direction) Inverse() Direction {
	if d == Inflow {
		return Outflow
	}
	return Inflow
}

// Apply returns balance moved by amount in this direction.
func (d Direction) Apply(balance, amount decimal.Decimal) decimal.Decimal {
	if d == Inflow {
		return balance.Add(amount)
	}
	return balance.Sub(amount)
}

type TransactionType string

const (
	PaymentReceived TransactionType = "payment_received"
	TransferIn      TransactionType = "transfer_in"
	Expense         TransactionType = "expense"
	PaymentMade     TransactionType = "payment_made"
	TransferOut     TransactionType = "transfer_out"
	Adjustment      TransactionType = "adjustment"
	Reversal        TransactionType = "reversal"
)

// FixedDirection reports the direction implied by the type. Adjustment and
// reversal carry their direction explicitly.
func (t TransactionType) FixedDirection() (Direction, bool) {
	switch t {
	case PaymentReceived, TransferIn:
		return Inflow, true
	case Expense, PaymentMade, TransferOut:
		return Outflow, true
	default:
		return "", false
	}
}

func (t TransactionType) Valid() bool {
	switch t {
	case PaymentReceived, TransferIn, Expense, PaymentMade, TransferOut, Adjustment, Reversal:
		return true
	default:
		return false
	}
}

type FinanceAccount struct {
	ID              uint            `json:"id" gorm:"primarykey"`
	Name            string          `json:"name" gorm:"not null"`
	Type            AccountType     `json:"type" gorm:"not null"`
	Currency        string          `json:"currency" gorm:"size:3;not null"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:decimal(20,4);not null;default:0"`
	IsActive        bool            `json:"is_active" gorm:"index"`
	IsPaymentMethod bool            `json:"is_payment_method"`
	IsShared        bool            `json:"is_shared"`
	BranchID        uint            `json:"branch_id" gorm:"index"`
	Deleted         bool            `json:"deleted" gorm:"index"`
	CreatedByID     uint            `json:"created_by_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (FinanceAccount) TableName() string {
	return "finance_accounts"
}

// VisibleIn reports whether the account can be used from the branch.
func (a *FinanceAccount) VisibleIn(branch BranchContext) bool {
	if a.Deleted {
		return false
	}
	if branch.AllBranches || a.IsShared {
		return true
	}
	return a.BranchID == branch.BranchID
}

type RelatedEntityType string

const (
	SaleEntity              RelatedEntityType = "sale"
	PurchaseOrderEntity     RelatedEntityType = "purchase_order"
	ScheduledTransferEntity RelatedEntityType = "scheduled_transfer"
	RecurringExpenseEntity  RelatedEntityType = "recurring_expense"
	InstallmentEntity       RelatedEntityType = "installment_plan"
)

type RelatedEntity struct {
	Type RelatedEntityType `json:"type"`
	ID   uint              `json:"id"`
}

// Key formats the entity as "type#id".
func (r *RelatedEntity) Key() string {
	return fmt.Sprintf("%s#%d", r.Type, r.ID)
}

type AccountTransaction struct {
	ID                uint                           `json:"id" gorm:"primarykey"`
	AccountID         uint                           `json:"account_id" gorm:"index;not null"`
	TransactionType   TransactionType                `json:"transaction_type" gorm:"index;not null"`
	Direction         Direction                      `json:"direction" gorm:"size:3;not null"`
	Amount            decimal.Decimal                `json:"amount" gorm:"type:decimal(20,4);not null"`
	BalanceBefore     decimal.Decimal                `json:"balance_before" gorm:"type:decimal(20,4);not null"`
	BalanceAfter      decimal.Decimal                `json:"balance_after" gorm:"type:decimal(20,4);not null"`
	Description       string                         `json:"description"`
	ReferenceNumber   string                         `json:"reference_number" gorm:"index"`
	RelatedEntityType RelatedEntityType              `json:"related_entity_type" gorm:"index:related_entity"`
	RelatedEntityID   uint                           `json:"related_entity_id" gorm:"index:related_entity"`
	Metadata          datatypes.JSONType[TxMetadata] `json:"metadata"`
	BranchID          uint                           `json:"branch_id" gorm:"index"`
	CreatedByID       uint                           `json:"created_by_id"`
	CreatedAt         time.Time                      `json:"created_at"`

	Account *FinanceAccount `json:"-"`
}

func (AccountTransaction) TableName() string {
	return "account_transactions"
}

func (t *AccountTransaction) IsInflow() bool {
	return t.Direction == Inflow
}

func (t *AccountTransaction) Meta() TxMetadata {
	return t.Metadata.Data()
}

func (t *AccountTransaction) IsReversed() bool {
	return t.Meta().Reversed
}

func (t *AccountTransaction) Related() *RelatedEntity {
	if t.RelatedEntityType == "" {
		return nil
	}
	return &RelatedEntity{
		Type: t.RelatedEntityType,
		ID:   t.RelatedEntityID,
	}
}

// CheckBalance verifies balance_after = balance_before ± amount for this row.
func (t *AccountTransaction) CheckBalance() error {
	if fixed, ok := t.TransactionType.FixedDirection(); ok && fixed != t.Direction {
		return fmt.Errorf("transaction %d type %s has direction %s", t.ID, t.TransactionType, t.Direction)
	}

	want := t.Direction.Apply(t.BalanceBefore, t.Amount)
	if !want.Equal(t.BalanceAfter) {
		return fmt.Errorf("transaction %d balance_after %s want %s", t.ID, t.BalanceAfter, want)
	}

	if t.BalanceAfter.IsNegative() {
		return fmt.Errorf("transaction %d balance_after negative %s", t.ID, t.BalanceAfter)
	}

	return nil
}
