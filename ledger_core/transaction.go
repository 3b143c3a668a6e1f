package ledger_core

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrTransactionNotLoaded = errors.New("transaction not loaded")

type TransactionMutation interface {
	ByID(id uint, lock bool) TransactionMutation
	CheckBalance() TransactionMutation
	StampReversal(reversal *AccountTransaction, reason string, at time.Time) TransactionMutation
	Data() *AccountTransaction
	Err() error
}

type transactionMutationImpl struct {
	tx   *gorm.DB
	data *AccountTransaction
	err  error
}

func NewTransactionMutation(tx *gorm.DB) TransactionMutation {
	return &transactionMutationImpl{
		tx: tx,
	}
}

// ByID implements TransactionMutation.
func (t *transactionMutationImpl) ByID(id uint, lock bool) TransactionMutation {
	if t.err != nil {
		return t
	}

	tx := t.tx
	if lock {
		tx = tx.Clauses(clause.Locking{
			Strength: "UPDATE",
		})
	}

	data := AccountTransaction{}
	err := tx.
		Model(&AccountTransaction{}).
		Preload("Account").
		Where("id = ?", id).
		First(&data).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t.setErr(&NotFoundError{Entity: "transaction", ID: id})
		}
		return t.setErr(err)
	}

	t.data = &data
	return t
}

// CheckBalance implements TransactionMutation.
func (t *transactionMutationImpl) CheckBalance() TransactionMutation {
	if t.err != nil {
		return t
	}
	if t.data == nil {
		return t.setErr(ErrTransactionNotLoaded)
	}

	return t.setErr(t.data.CheckBalance())
}

// StampReversal is the only update ever applied to a committed row.
func (t *transactionMutationImpl) StampReversal(reversal *AccountTransaction, reason string, at time.Time) TransactionMutation {
	if t.err != nil {
		return t
	}
	if t.data == nil {
		return t.setErr(ErrTransactionNotLoaded)
	}
	if t.data.IsReversed() {
		return t.setErr(&AlreadyReversedError{TransactionID: t.data.ID})
	}

	meta := t.data.Meta()
	meta.Reversed = true
	meta.ReversedAt = &at
	meta.ReversalReason = reason
	meta.ReversalTransactionID = reversal.ID

	stamped := datatypes.NewJSONType(meta)
	err := t.tx.
		Model(&AccountTransaction{}).
		Where("id = ?", t.data.ID).
		Update("metadata", stamped).
		Error

	if err != nil {
		return t.setErr(err)
	}

	t.data.Metadata = stamped
	return t
}

// Data implements TransactionMutation.
func (t *transactionMutationImpl) Data() *AccountTransaction {
	return t.data
}

// Err implements TransactionMutation.
func (t *transactionMutationImpl) Err() error {
	return t.err
}

func (t *transactionMutationImpl) setErr(err error) *transactionMutationImpl {
	if t.err != nil {
		return t
	}

	if err != nil {
		t.err = err
	}

	return t
}
