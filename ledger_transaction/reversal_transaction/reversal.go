package reversal_transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"gorm.io/gorm"
)

type ReversalPayload struct {
	TransactionID uint      `json:"transaction_id"`
	Reason        string    `json:"reason"`
	At            time.Time `json:"at"`

	// SettlesOrder is set by the purchase order flow, which keeps the
	// order totals in step with the reversal.
	SettlesOrder bool `json:"-"`
}

type ReversalResult struct {
	Original *ledger_core.AccountTransaction `json:"original"`
	Reversal *ledger_core.AccountTransaction `json:"reversal"`
}

type ReversalTransaction interface {
	Reverse(payload *ReversalPayload) (*ReversalResult, error)
}

type reversalTransactionImpl struct {
	ctx    context.Context
	tx     *gorm.DB
	branch ledger_core.BranchContext
}

// Reverse implements ReversalTransaction.
func (r *reversalTransactionImpl) Reverse(payload *ReversalPayload) (*ReversalResult, error) {
	var result *ReversalResult

	err := ledger_core.OpenTransaction(r.ctx, r.tx, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		result, err = ReverseWithBook(tx, bookmng, r.branch, payload)
		return err
	})

	return result, err
}

func NewReversalTransaction(ctx context.Context, tx *gorm.DB, branch ledger_core.BranchContext) ReversalTransaction {
	return &reversalTransactionImpl{
		ctx:    ctx,
		tx:     tx,
		branch: branch,
	}
}

// ReverseWithBook posts the compensating row for a single transaction and
// stamps the original. The counterpart leg of a transfer is left alone.
func ReverseWithBook(
	tx *gorm.DB,
	bookmng ledger_core.BookManage,
	branch ledger_core.BranchContext,
	payload *ReversalPayload,
) (*ReversalResult, error) {
	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		return nil, ledger_core.NewValidationError("reason", "reversal reason is required")
	}

	at := payload.At
	if at.IsZero() {
		at = time.Now()
	}

	mut := ledger_core.
		NewTransactionMutation(tx).
		ByID(payload.TransactionID, true)

	err := mut.Err()
	if err != nil {
		return nil, err
	}

	original := mut.Data()
	if original.Account == nil || !original.Account.VisibleIn(branch) {
		return nil, &ledger_core.NotFoundError{Entity: "transaction", ID: payload.TransactionID}
	}
	if original.IsReversed() {
		return nil, &ledger_core.AlreadyReversedError{TransactionID: original.ID}
	}
	if original.TransactionType == ledger_core.Reversal {
		return nil, ledger_core.NewValidationError("transaction_id", "transaction %d is itself a reversal", original.ID)
	}
	if original.RelatedEntityType == ledger_core.PurchaseOrderEntity && !payload.SettlesOrder {
		return nil, ledger_core.NewValidationError(
			"transaction_id",
			"transaction %d pays purchase order %d, use PaymentReverseLatest",
			original.ID, original.RelatedEntityID,
		)
	}

	reversal, err := bookmng.Post(branch, &ledger_core.EntryPayload{
		AccountID:   original.AccountID,
		Type:        ledger_core.Reversal,
		Direction:   original.Direction.Inverse(),
		Amount:      original.Amount,
		Description: fmt.Sprintf("Reversal of %s: %s", describe(original), reason),
		Reference:   original.ReferenceNumber,
		Related:     original.Related(),
		EntryTime:   at,
		Metadata: ledger_core.NewReversalMeta(&ledger_core.ReversalMeta{
			OriginalTransactionID: original.ID,
			OriginalAmount:        original.Amount,
			OriginalType:          original.TransactionType,
			Reason:                reason,
		}),
	})
	if err != nil {
		return nil, err
	}

	err = mut.StampReversal(reversal, reason, at).Err()
	if err != nil {
		return nil, err
	}

	return &ReversalResult{
		Original: mut.Data(),
		Reversal: reversal,
	}, nil
}

func describe(t *ledger_core.AccountTransaction) string {
	if t.ReferenceNumber != "" {
		return t.ReferenceNumber
	}
	return fmt.Sprintf("%s #%d", t.TransactionType, t.ID)
}
