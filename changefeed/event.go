package changefeed

import (
	"context"
	"errors"
	"time"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/shopspring/decimal"
)

type AccountBalance struct {
	AccountID uint            `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// Event describes one committed ledger unit.
type Event struct {
	Accounts       []*AccountBalance `json:"accounts"`
	TransactionIDs []uint            `json:"transaction_ids"`
	References     []string          `json:"references"`
	CommittedAt    time.Time         `json:"committed_at"`
}

// EventFromEntries keeps the last balance seen per account, in posting order.
func EventFromEntries(entries []*ledger_core.AccountTransaction, at time.Time) *Event {
	event := Event{
		Accounts:       []*AccountBalance{},
		TransactionIDs: []uint{},
		References:     []string{},
		CommittedAt:    at,
	}

	accounts := map[uint]*AccountBalance{}
	refs := map[string]bool{}

	for _, entry := range entries {
		event.TransactionIDs = append(event.TransactionIDs, entry.ID)

		if entry.ReferenceNumber != "" && !refs[entry.ReferenceNumber] {
			refs[entry.ReferenceNumber] = true
			event.References = append(event.References, entry.ReferenceNumber)
		}

		bal, ok := accounts[entry.AccountID]
		if !ok {
			bal = &AccountBalance{AccountID: entry.AccountID}
			accounts[entry.AccountID] = bal
			event.Accounts = append(event.Accounts, bal)
		}
		bal.Balance = entry.BalanceAfter
	}

	return &event
}

type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

const HandlerName = "changefeed"

// NewHandler turns committed units into events for every publisher. Units
// that posted nothing produce no event.
func NewHandler(publishers ...Publisher) ledger_core.CustomHandler {
	return func(ctx context.Context, bookmng ledger_core.BookManage) error {
		entries := bookmng.Entries()
		if len(entries) == 0 {
			return nil
		}

		event := EventFromEntries(entries, time.Now())

		var errs []error
		for _, pub := range publishers {
			err := pub.Publish(ctx, event)
			if err != nil {
				errs = append(errs, err)
			}
		}

		return errors.Join(errs...)
	}
}

// Register installs the changefeed as an after-commit handler.
func Register(publishers ...Publisher) func() {
	return ledger_core.RegisterCustomHandler(HandlerName, NewHandler(publishers...))
}
