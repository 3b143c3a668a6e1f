package scheduler

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_model"
)

// ExpenseCreate implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseCreate(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseCreateRequest],
) (*connect.Response[ledger_iface.ExpenseResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseResponse{})
	pay := req.Msg

	exp := ledger_model.RecurringExpense{
		Name:                   pay.Name,
		Description:            pay.Description,
		VendorName:             pay.VendorName,
		AccountID:              pay.AccountID,
		Category:               pay.Category,
		Amount:                 pay.Amount,
		ReferencePrefix:        pay.ReferencePrefix,
		Frequency:              pay.Frequency,
		StartDate:              pay.StartDate,
		EndDate:                pay.EndDate,
		AutoProcess:            pay.AutoProcess,
		NotificationDaysBefore: pay.NotificationDaysBefore,
	}

	err := s.expenses.Create(ctx, pay.Branch(), &exp)
	if err != nil {
		return res, err
	}

	res.Msg.Expense = &exp
	return res, nil
}

// ExpenseList implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseList(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseListRequest],
) (*connect.Response[ledger_iface.ExpenseListResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseListResponse{})

	data, err := s.expenses.List(ctx, req.Msg.Branch(), req.Msg.Status)
	res.Msg.Data = data
	return res, err
}

// ExpensePause implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpensePause(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseIDRequest],
) (*connect.Response[ledger_iface.ExpenseResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseResponse{})

	exp, err := s.expenses.Pause(ctx, req.Msg.Branch(), req.Msg.ExpenseID)
	res.Msg.Expense = exp
	return res, err
}

// ExpenseResume implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseResume(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseIDRequest],
) (*connect.Response[ledger_iface.ExpenseResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseResponse{})

	exp, err := s.expenses.Resume(ctx, req.Msg.Branch(), req.Msg.ExpenseID)
	res.Msg.Expense = exp
	return res, err
}

// ExpenseSkip implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseSkip(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseIDRequest],
) (*connect.Response[ledger_iface.ExpenseProcessResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseProcessResponse{})

	exp, plog, err := s.expenses.Skip(ctx, req.Msg.Branch(), req.Msg.ExpenseID)
	res.Msg.Expense = exp
	res.Msg.Log = plog
	return res, err
}

// ExpenseProcess implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseProcess(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseIDRequest],
) (*connect.Response[ledger_iface.ExpenseProcessResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseProcessResponse{})

	exp, plog, err := s.expenses.Process(ctx, req.Msg.Branch(), req.Msg.ExpenseID)
	res.Msg.Expense = exp
	res.Msg.Log = plog
	return res, err
}

// ExpenseDue implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseDue(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseDueRequest],
) (*connect.Response[ledger_iface.ExpenseListResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseListResponse{})

	now := s.clock.Now()
	if req.Msg.Now != nil {
		now = *req.Msg.Now
	}

	data, err := s.expenses.Due(ctx, req.Msg.Branch(), now)
	res.Msg.Data = data
	return res, err
}

// ExpenseLogs implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ExpenseLogs(
	ctx context.Context,
	req *connect.Request[ledger_iface.ExpenseIDRequest],
) (*connect.Response[ledger_iface.ExpenseLogsResponse], error) {
	res := connect.NewResponse(&ledger_iface.ExpenseLogsResponse{})

	data, err := s.expenses.Logs(ctx, req.Msg.Branch(), req.Msg.ExpenseID)
	res.Msg.Data = data
	return res, err
}
