package transfer_transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransferPayload struct {
	SourceAccountID      uint                       `json:"source_account_id"`
	DestinationAccountID uint                       `json:"destination_account_id"`
	Amount               decimal.Decimal            `json:"amount"`
	Description          string                     `json:"description"`
	Reference            string                     `json:"reference_number"`
	Related              *ledger_core.RelatedEntity `json:"related_entity"`
	ScheduledTransferID  uint                       `json:"scheduled_transfer_id"`
	EntryTime            time.Time                  `json:"entry_time"`
}

type TransferResult struct {
	Reference string                          `json:"reference_number"`
	Out       *ledger_core.AccountTransaction `json:"out"`
	In        *ledger_core.AccountTransaction `json:"in"`
}

type TransferTransaction interface {
	Transfer(payload *TransferPayload) (*TransferResult, error)
}

type transferTransactionImpl struct {
	ctx    context.Context
	tx     *gorm.DB
	branch ledger_core.BranchContext
}

// Transfer implements TransferTransaction.
func (t *transferTransactionImpl) Transfer(payload *TransferPayload) (*TransferResult, error) {
	var result *TransferResult

	err := ledger_core.OpenTransaction(t.ctx, t.tx, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
		var err error
		result, err = TransferWithBook(tx, bookmng, t.branch, payload)
		return err
	})

	return result, err
}

func NewTransferTransaction(ctx context.Context, tx *gorm.DB, branch ledger_core.BranchContext) TransferTransaction {
	return &transferTransactionImpl{
		ctx:    ctx,
		tx:     tx,
		branch: branch,
	}
}

// TransferWithBook posts both legs into an already open unit. Callers that
// need more writes in the same unit, like the scheduler, use this directly.
func TransferWithBook(
	tx *gorm.DB,
	bookmng ledger_core.BookManage,
	branch ledger_core.BranchContext,
	payload *TransferPayload,
) (*TransferResult, error) {
	if payload.SourceAccountID == 0 || payload.DestinationAccountID == 0 {
		return nil, ledger_core.NewValidationError("account_id", "source and destination are required")
	}
	if payload.SourceAccountID == payload.DestinationAccountID {
		return nil, ledger_core.NewValidationError("destination_account_id", "source and destination must differ")
	}
	if !payload.Amount.IsPositive() {
		return nil, ledger_core.NewValidationError("amount", "amount must be greater than zero")
	}

	accs, err := ledger_core.LockAccounts(tx, payload.SourceAccountID, payload.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	source := accs[payload.SourceAccountID]
	dest := accs[payload.DestinationAccountID]

	ref := payload.Reference
	if ref == "" {
		ref = ledger_core.NewReference(ledger_core.TransferPrefix)
	}

	out, err := bookmng.Post(branch, &ledger_core.EntryPayload{
		AccountID:   source.ID,
		Type:        ledger_core.TransferOut,
		Amount:      payload.Amount,
		Description: describe("Transfer to", dest.Name, payload.Description),
		Reference:   ref,
		Related:     payload.Related,
		EntryTime:   payload.EntryTime,
		Metadata: ledger_core.NewTransferMeta(&ledger_core.TransferMeta{
			TransferType:         ledger_core.TransferOutgoing,
			CounterpartAccountID: dest.ID,
			CounterpartName:      dest.Name,
			CounterpartCurrency:  dest.Currency,
			ScheduledTransferID:  payload.ScheduledTransferID,
		}),
	})
	if err != nil {
		return nil, err
	}

	in, err := bookmng.Post(branch, &ledger_core.EntryPayload{
		AccountID:   dest.ID,
		Type:        ledger_core.TransferIn,
		Amount:      payload.Amount,
		Description: describe("Transfer from", source.Name, payload.Description),
		Reference:   ref,
		Related:     payload.Related,
		EntryTime:   payload.EntryTime,
		Metadata: ledger_core.NewTransferMeta(&ledger_core.TransferMeta{
			TransferType:         ledger_core.TransferIncoming,
			CounterpartAccountID: source.ID,
			CounterpartName:      source.Name,
			CounterpartCurrency:  source.Currency,
			ScheduledTransferID:  payload.ScheduledTransferID,
		}),
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		Reference: ref,
		Out:       out,
		In:        in,
	}, nil
}

func describe(prefix, name, desc string) string {
	if desc == "" {
		return fmt.Sprintf("%s %s", prefix, name)
	}
	return fmt.Sprintf("%s %s: %s", prefix, name, desc)
}
