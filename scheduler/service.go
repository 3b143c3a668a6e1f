package scheduler

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/logging"
	"gorm.io/gorm"
)

type schedulerServiceImpl struct {
	clock     clock.Clock
	transfers *TransferScheduler
	expenses  *ExpenseScheduler
}

func NewSchedulerService(db *gorm.DB, clk clock.Clock, maxCatchUp int) *schedulerServiceImpl {
	return &schedulerServiceImpl{
		clock:     clk,
		transfers: NewTransferScheduler(db, clk, maxCatchUp),
		expenses:  NewExpenseScheduler(db, clk, maxCatchUp),
	}
}

// Tick implements ledger_iface.SchedulerServiceHandler. It is called by the
// external trigger, cmd/tick or a cron job.
func (s *schedulerServiceImpl) Tick(
	ctx context.Context,
	req *connect.Request[ledger_iface.TickRequest],
) (*connect.Response[ledger_iface.TickResponse], error) {
	now := s.clock.Now()
	if req.Msg.Now != nil {
		now = *req.Msg.Now
	}

	res := connect.NewResponse(&ledger_iface.TickResponse{Now: now})

	transfers, err := s.transfers.Tick(ctx, now)
	if err != nil {
		return res, err
	}
	expenses, err := s.expenses.Tick(ctx, now)
	if err != nil {
		return res, err
	}

	res.Msg.Transfers = tickSummary(transfers)
	res.Msg.Expenses = tickSummary(expenses)

	logging.FromContext(ctx).Info().
		Time("now", now).
		Int("transfers", transfers.Succeeded).
		Int("transfers_failed", transfers.Failed).
		Int("expenses", expenses.Succeeded).
		Int("expenses_failed", expenses.Failed).
		Msg("tick finished")

	return res, nil
}

func tickSummary(r *TickResult) *ledger_iface.TickSummary {
	return &ledger_iface.TickSummary{
		Schedules: r.Schedules,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
	}
}
