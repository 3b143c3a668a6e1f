package scheduler

import (
	"context"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_model"
)

// ScheduleCreate implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleCreate(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleCreateRequest],
) (*connect.Response[ledger_iface.ScheduleResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleResponse{})
	pay := req.Msg

	sched := ledger_model.ScheduledTransfer{
		SourceAccountID:        pay.SourceAccountID,
		DestinationAccountID:   pay.DestinationAccountID,
		Amount:                 pay.Amount,
		Description:            pay.Description,
		ReferencePrefix:        pay.ReferencePrefix,
		Frequency:              pay.Frequency,
		StartDate:              pay.StartDate,
		EndDate:                pay.EndDate,
		AutoExecute:            pay.AutoExecute,
		NotificationEnabled:    pay.NotificationEnabled,
		NotificationDaysBefore: pay.NotificationDaysBefore,
	}

	err := s.transfers.Create(ctx, pay.Branch(), &sched)
	if err != nil {
		return res, err
	}

	res.Msg.Schedule = &sched
	return res, nil
}

// ScheduleGet implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleGet(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleResponse{})

	sched, err := s.transfers.Get(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Schedule = sched
	return res, err
}

// ScheduleList implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleList(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleListRequest],
) (*connect.Response[ledger_iface.ScheduleListResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleListResponse{})

	data, err := s.transfers.List(ctx, req.Msg.Branch(), req.Msg.Status)
	res.Msg.Data = data
	return res, err
}

// SchedulePause implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) SchedulePause(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleResponse{})

	sched, err := s.transfers.Pause(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Schedule = sched
	return res, err
}

// ScheduleResume implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleResume(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleResponse{})

	sched, err := s.transfers.Resume(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Schedule = sched
	return res, err
}

// ScheduleSkip implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleSkip(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleExecuteResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleExecuteResponse{})

	sched, exec, err := s.transfers.Skip(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Schedule = sched
	res.Msg.Execution = exec
	return res, err
}

// ScheduleExecuteNow implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleExecuteNow(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleExecuteResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleExecuteResponse{})

	sched, exec, err := s.transfers.ExecuteNow(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Schedule = sched
	res.Msg.Execution = exec
	return res, err
}

// ScheduleExecutions implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleExecutions(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleIDRequest],
) (*connect.Response[ledger_iface.ScheduleExecutionsResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleExecutionsResponse{})

	data, err := s.transfers.Executions(ctx, req.Msg.Branch(), req.Msg.ScheduleID)
	res.Msg.Data = data
	return res, err
}

// ScheduleUpcoming implements ledger_iface.SchedulerServiceHandler.
func (s *schedulerServiceImpl) ScheduleUpcoming(
	ctx context.Context,
	req *connect.Request[ledger_iface.ScheduleUpcomingRequest],
) (*connect.Response[ledger_iface.ScheduleUpcomingResponse], error) {
	res := connect.NewResponse(&ledger_iface.ScheduleUpcomingResponse{
		Data: []*ledger_iface.UpcomingTransfer{},
	})

	now := s.clock.Now()
	if req.Msg.Now != nil {
		now = *req.Msg.Now
	}

	upcoming, err := s.transfers.Upcoming(ctx, req.Msg.Branch(), now)
	if err != nil {
		return res, err
	}

	for _, item := range upcoming {
		res.Msg.Data = append(res.Msg.Data, &ledger_iface.UpcomingTransfer{
			Schedule:  item.Schedule,
			DueDate:   item.DueDate,
			DaysUntil: item.DaysUntil,
		})
	}

	return res, nil
}
