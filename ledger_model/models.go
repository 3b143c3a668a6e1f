package ledger_model

import "github.com/pdcgo/ledger_service/ledger_core"

// AllModels lists every table owned by the service in migration order.
func AllModels() []any {
	return []any{
		&ledger_core.FinanceAccount{},
		&ledger_core.AccountTransaction{},
		&ScheduledTransfer{},
		&TransferExecution{},
		&RecurringExpense{},
		&ExpenseProcessLog{},
		&PurchaseOrder{},
		&PurchaseOrderPayment{},
	}
}
