package ledger_core

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEntryCommitted = errors.New("entry already committed")

// CreateEntry builds one ledger row. Commit is the only place an account
// balance changes: it locks the account, checks the resulting balance, then
// updates the balance and appends the row in the caller's db transaction.
type CreateEntry interface {
	Account(accountID uint) CreateEntry
	Type(ttype TransactionType) CreateEntry
	Direction(dir Direction) CreateEntry
	Amount(amount decimal.Decimal) CreateEntry
	Desc(desc string) CreateEntry
	Reference(ref string) CreateEntry
	Related(entity *RelatedEntity) CreateEntry
	Metadata(meta TxMetadata) CreateEntry
	EntryTime(t time.Time) CreateEntry
	Commit() CreateEntry
	Data() *AccountTransaction
	Err() error
}

type createEntryImpl struct {
	tx          *gorm.DB
	branch      BranchContext
	entry       *AccountTransaction
	meta        TxMetadata
	committed   bool
	afterCommit func(entry *AccountTransaction) error
	err         error
}

func NewCreateEntry(tx *gorm.DB, branch BranchContext) CreateEntry {
	return &createEntryImpl{
		tx:     tx,
		branch: branch,
		entry:  &AccountTransaction{},
	}
}

// Account implements CreateEntry.
func (c *createEntryImpl) Account(accountID uint) CreateEntry {
	c.entry.AccountID = accountID
	return c
}

// Type implements CreateEntry.
func (c *createEntryImpl) Type(ttype TransactionType) CreateEntry {
	c.entry.TransactionType = ttype
	return c
}

// Direction implements CreateEntry.
func (c *createEntryImpl) Direction(dir Direction) CreateEntry {
	c.entry.Direction = dir
	return c
}

// Amount implements CreateEntry.
func (c *createEntryImpl) Amount(amount decimal.Decimal) CreateEntry {
	c.entry.Amount = amount
	return c
}

// Desc implements CreateEntry.
func (c *createEntryImpl) Desc(desc string) CreateEntry {
	c.entry.Description = desc
	return c
}

// Reference implements CreateEntry.
func (c *createEntryImpl) Reference(ref string) CreateEntry {
	c.entry.ReferenceNumber = ref
	return c
}

// Related implements CreateEntry.
func (c *createEntryImpl) Related(entity *RelatedEntity) CreateEntry {
	if entity == nil {
		return c
	}
	c.entry.RelatedEntityType = entity.Type
	c.entry.RelatedEntityID = entity.ID
	return c
}

// Metadata implements CreateEntry.
func (c *createEntryImpl) Metadata(meta TxMetadata) CreateEntry {
	c.meta = meta
	return c
}

// EntryTime implements CreateEntry.
func (c *createEntryImpl) EntryTime(t time.Time) CreateEntry {
	c.entry.CreatedAt = t
	return c
}

// Commit implements CreateEntry.
func (c *createEntryImpl) Commit() CreateEntry {
	if c.err != nil {
		return c
	}
	if c.committed {
		return c.setErr(ErrEntryCommitted)
	}

	entry := c.entry
	err := c.validate()
	if err != nil {
		return c.setErr(err)
	}

	acc, err := LockAccount(c.tx, entry.AccountID)
	if err != nil {
		return c.setErr(err)
	}
	if !acc.VisibleIn(c.branch) {
		return c.setErr(&NotFoundError{Entity: "account", ID: entry.AccountID})
	}
	if !acc.IsActive {
		return c.setErr(NewValidationError("account_id", "account %s is inactive", acc.Name))
	}

	newBalance := entry.Direction.Apply(acc.Balance, entry.Amount)
	if newBalance.IsNegative() {
		return c.setErr(&InsufficientBalanceError{
			AccountID:   acc.ID,
			AccountName: acc.Name,
			Currency:    acc.Currency,
			Required:    entry.Amount,
			Available:   acc.Balance,
		})
	}

	entry.BalanceBefore = acc.Balance
	entry.BalanceAfter = newBalance
	entry.Metadata = datatypes.NewJSONType(c.meta)
	entry.BranchID = c.branch.BranchID
	entry.CreatedByID = c.branch.UserID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	err = setBalance(c.tx, acc.ID, newBalance)
	if err != nil {
		return c.setErr(err)
	}

	err = c.tx.Create(entry).Error
	if err != nil {
		return c.setErr(err)
	}

	acc.Balance = newBalance
	entry.Account = acc
	c.committed = true

	if c.afterCommit != nil {
		err = c.afterCommit(entry)
		if err != nil {
			return c.setErr(err)
		}
	}

	return c
}

func (c *createEntryImpl) validate() error {
	entry := c.entry

	if entry.AccountID == 0 {
		return NewValidationError("account_id", "account is required")
	}
	if !entry.TransactionType.Valid() {
		return NewValidationError("transaction_type", "unknown transaction type %q", entry.TransactionType)
	}
	if !entry.Amount.IsPositive() {
		return NewValidationError("amount", "amount must be greater than zero")
	}
	if !ValidAmountScale(entry.Amount) {
		return NewValidationError("amount", "amount %s has more than %d decimal places", entry.Amount, AmountPlaces)
	}

	fixed, ok := entry.TransactionType.FixedDirection()
	switch {
	case ok && entry.Direction == "":
		entry.Direction = fixed
	case ok && entry.Direction != fixed:
		return NewValidationError("direction", "%s is always %s", entry.TransactionType, fixed)
	case !ok && !entry.Direction.Valid():
		return NewValidationError("direction", "%s requires an explicit direction", entry.TransactionType)
	}

	err := c.meta.Validate()
	if err != nil {
		return err
	}
	if kind := ExpectedKind(entry.TransactionType); kind != NoMeta && c.meta.Kind != kind {
		return NewValidationError("metadata", "%s requires %s metadata", entry.TransactionType, kind)
	}

	return nil
}

// Data implements CreateEntry.
func (c *createEntryImpl) Data() *AccountTransaction {
	return c.entry
}

// Err implements CreateEntry.
func (c *createEntryImpl) Err() error {
	return c.err
}

func (c *createEntryImpl) setErr(err error) *createEntryImpl {
	if c.err != nil {
		return c
	}

	if err != nil {
		c.err = err
	}

	return c
}

// LockAccount loads the account with a row lock held until the enclosing db
// transaction ends.
func LockAccount(tx *gorm.DB, accountID uint) (*FinanceAccount, error) {
	acc := FinanceAccount{}
	err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
		}).
		Model(&FinanceAccount{}).
		Where("id = ?", accountID).
		First(&acc).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "account", ID: accountID}
		}
		return nil, err
	}

	return &acc, nil
}

// LockAccounts locks in ascending id order so two writers touching the same
// pair cannot deadlock.
func LockAccounts(tx *gorm.DB, accountIDs ...uint) (map[uint]*FinanceAccount, error) {
	ids := sortedUnique(accountIDs)
	result := map[uint]*FinanceAccount{}

	for _, id := range ids {
		acc, err := LockAccount(tx, id)
		if err != nil {
			return result, err
		}
		result[id] = acc
	}

	return result, nil
}

func setBalance(tx *gorm.DB, accountID uint, balance decimal.Decimal) error {
	return tx.
		Model(&FinanceAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"balance":    balance,
			"updated_at": time.Now(),
		}).
		Error
}

func sortedUnique(ids []uint) []uint {
	seen := map[uint]bool{}
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	slices.Sort(result)
	return result
}
