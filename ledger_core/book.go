package ledger_core

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pdcgo/ledger_service/logging"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrEntriesEmpty = errors.New("entries empty in ending transaction")

var maxRetry atomic.Int32

func init() {
	maxRetry.Store(3)
}

// MaxRetry bounds how many times a unit is replayed after a lock or
// serialization conflict.
func MaxRetry() int {
	return int(maxRetry.Load())
}

// SetMaxRetry changes the replay bound and returns the previous one. Values
// below one are stored as one.
func SetMaxRetry(n int) int {
	if n < 1 {
		n = 1
	}
	return int(maxRetry.Swap(int32(n)))
}

var RetryBackoff = 20 * time.Millisecond

type EntryPayload struct {
	AccountID   uint            `json:"account_id"`
	Type        TransactionType `json:"transaction_type"`
	Direction   Direction       `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference_number"`
	Related     *RelatedEntity  `json:"related_entity"`
	Metadata    TxMetadata      `json:"metadata"`
	EntryTime   time.Time       `json:"entry_time"`
}

type BookManage interface {
	NewCreateEntry(branch BranchContext) CreateEntry
	Post(branch BranchContext, payload *EntryPayload) (*AccountTransaction, error)
	Entries() []*AccountTransaction
	Touch(name string)
}

type bookManageImpl struct {
	tx      *gorm.DB
	entries []*AccountTransaction
	touched []string
}

// NewCreateEntry implements BookManage.
func (h *bookManageImpl) NewCreateEntry(branch BranchContext) CreateEntry {
	return &createEntryImpl{
		tx:          h.tx,
		branch:      branch,
		entry:       &AccountTransaction{},
		afterCommit: h.afterCommit,
	}
}

// Post implements BookManage.
func (h *bookManageImpl) Post(branch BranchContext, payload *EntryPayload) (*AccountTransaction, error) {
	entry := h.
		NewCreateEntry(branch).
		Account(payload.AccountID).
		Type(payload.Type).
		Direction(payload.Direction).
		Amount(payload.Amount).
		Desc(payload.Description).
		Reference(payload.Reference).
		Related(payload.Related).
		Metadata(payload.Metadata)

	if !payload.EntryTime.IsZero() {
		entry = entry.EntryTime(payload.EntryTime)
	}

	err := entry.Commit().Err()
	if err != nil {
		return nil, err
	}

	return entry.Data(), nil
}

// Entries implements BookManage.
func (h *bookManageImpl) Entries() []*AccountTransaction {
	return h.entries
}

// Touch marks a unit that changed ledger state without posting a row, such
// as a failed execution log or a skipped occurrence.
func (h *bookManageImpl) Touch(name string) {
	h.touched = append(h.touched, name)
}

func (h *bookManageImpl) afterCommit(entry *AccountTransaction) error {
	h.entries = append(h.entries, entry)
	return nil
}

// OpenTransaction runs handle inside one db transaction. The whole unit is
// replayed on a conflict, and custom handlers run only after commit.
func OpenTransaction(ctx context.Context, db *gorm.DB, handle func(tx *gorm.DB, bookmng BookManage) error) error {
	var err error
	var hdlr *bookManageImpl

	log := logging.FromContext(ctx)
	attempts := MaxRetry()

	for attempt := 1; attempt <= attempts; attempt++ {
		hdlr = &bookManageImpl{}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			hdlr.tx = tx

			err := handle(tx, hdlr)
			if err != nil {
				return err
			}

			if len(hdlr.entries) == 0 && len(hdlr.touched) == 0 {
				return ErrEntriesEmpty
			}

			for _, entry := range hdlr.entries {
				if entry.ID == 0 {
					return fmt.Errorf("theres entry not saved on account %d", entry.AccountID)
				}
			}

			return nil
		})

		if !IsConflict(err) {
			break
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("ledger unit conflict, retrying")
		if attempt == attempts {
			return &ConcurrencyConflictError{Attempts: attempt, Err: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RetryBackoff * time.Duration(attempt)):
		}
	}

	if err != nil {
		if errors.Is(err, ErrSkipTransaction) {
			return nil
		}

		return err
	}

	for name, handler := range customHandlers() {
		herr := handler(ctx, hdlr)
		if herr != nil {
			log.Error().Err(herr).Str("handler", name).Msg("after commit handler failed")
		}
	}

	return nil
}

// PostTransaction posts a single row in its own unit.
func PostTransaction(ctx context.Context, db *gorm.DB, branch BranchContext, payload *EntryPayload) (*AccountTransaction, error) {
	var result *AccountTransaction

	err := OpenTransaction(ctx, db, func(tx *gorm.DB, bookmng BookManage) error {
		var err error
		result, err = bookmng.Post(branch, payload)
		return err
	})

	return result, err
}
