package ledger_iface

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/shopspring/decimal"
)

const (
	SchedulerServiceName = "ledger.v1.SchedulerService"

	SchedulerServiceScheduleCreateProcedure     = "/ledger.v1.SchedulerService/ScheduleCreate"
	SchedulerServiceScheduleGetProcedure        = "/ledger.v1.SchedulerService/ScheduleGet"
	SchedulerServiceScheduleListProcedure       = "/ledger.v1.SchedulerService/ScheduleList"
	SchedulerServiceSchedulePauseProcedure      = "/ledger.v1.SchedulerService/SchedulePause"
	SchedulerServiceScheduleResumeProcedure     = "/ledger.v1.SchedulerService/ScheduleResume"
	SchedulerServiceScheduleSkipProcedure       = "/ledger.v1.SchedulerService/ScheduleSkip"
	SchedulerServiceScheduleExecuteNowProcedure = "/ledger.v1.SchedulerService/ScheduleExecuteNow"
	SchedulerServiceScheduleExecutionsProcedure = "/ledger.v1.SchedulerService/ScheduleExecutions"
	SchedulerServiceScheduleUpcomingProcedure   = "/ledger.v1.SchedulerService/ScheduleUpcoming"
	SchedulerServiceExpenseCreateProcedure      = "/ledger.v1.SchedulerService/ExpenseCreate"
	SchedulerServiceExpenseListProcedure        = "/ledger.v1.SchedulerService/ExpenseList"
	SchedulerServiceExpensePauseProcedure       = "/ledger.v1.SchedulerService/ExpensePause"
	SchedulerServiceExpenseResumeProcedure      = "/ledger.v1.SchedulerService/ExpenseResume"
	SchedulerServiceExpenseSkipProcedure        = "/ledger.v1.SchedulerService/ExpenseSkip"
	SchedulerServiceExpenseProcessProcedure     = "/ledger.v1.SchedulerService/ExpenseProcess"
	SchedulerServiceExpenseDueProcedure         = "/ledger.v1.SchedulerService/ExpenseDue"
	SchedulerServiceExpenseLogsProcedure        = "/ledger.v1.SchedulerService/ExpenseLogs"
	SchedulerServiceTickProcedure               = "/ledger.v1.SchedulerService/Tick"
)

type ScheduleCreateRequest struct {
	BranchScope
	SourceAccountID        uint                   `json:"source_account_id" validate:"required"`
	DestinationAccountID   uint                   `json:"destination_account_id" validate:"required"`
	Amount                 decimal.Decimal        `json:"amount"`
	Description            string                 `json:"description"`
	ReferencePrefix        string                 `json:"reference_prefix" validate:"omitempty,max=20"`
	Frequency              ledger_model.Frequency `json:"frequency" validate:"required"`
	StartDate              time.Time              `json:"start_date" validate:"required"`
	EndDate                *time.Time             `json:"end_date"`
	AutoExecute            bool                   `json:"auto_execute"`
	NotificationEnabled    bool                   `json:"notification_enabled"`
	NotificationDaysBefore int                    `json:"notification_days_before" validate:"min=0,max=90"`
}

type ScheduleIDRequest struct {
	BranchScope
	ScheduleID uint `json:"schedule_id" validate:"required"`
}

type ScheduleResponse struct {
	Schedule *ledger_model.ScheduledTransfer `json:"schedule"`
}

type ScheduleListRequest struct {
	BranchScope
	Status ledger_model.ScheduleStatus `json:"status"`
}

type ScheduleListResponse struct {
	Data []*ledger_model.ScheduledTransfer `json:"data"`
}

type ScheduleExecuteResponse struct {
	Schedule  *ledger_model.ScheduledTransfer `json:"schedule"`
	Execution *ledger_model.TransferExecution `json:"execution"`
}

type ScheduleExecutionsResponse struct {
	Data []*ledger_model.TransferExecution `json:"data"`
}

type ScheduleUpcomingRequest struct {
	BranchScope
	Now *time.Time `json:"now"`
}

type UpcomingTransfer struct {
	Schedule  *ledger_model.ScheduledTransfer `json:"schedule"`
	DueDate   time.Time                       `json:"due_date"`
	DaysUntil int                             `json:"days_until"`
}

type ScheduleUpcomingResponse struct {
	Data []*UpcomingTransfer `json:"data"`
}

type ExpenseCreateRequest struct {
	BranchScope
	Name                   string                 `json:"name" validate:"required"`
	Description            string                 `json:"description"`
	VendorName             string                 `json:"vendor_name"`
	AccountID              uint                   `json:"account_id" validate:"required"`
	Category               string                 `json:"category"`
	Amount                 decimal.Decimal        `json:"amount"`
	ReferencePrefix        string                 `json:"reference_prefix" validate:"omitempty,max=20"`
	Frequency              ledger_model.Frequency `json:"frequency" validate:"required"`
	StartDate              time.Time              `json:"start_date" validate:"required"`
	EndDate                *time.Time             `json:"end_date"`
	AutoProcess            bool                   `json:"auto_process"`
	NotificationDaysBefore int                    `json:"notification_days_before" validate:"min=0,max=90"`
}

type ExpenseIDRequest struct {
	BranchScope
	ExpenseID uint `json:"expense_id" validate:"required"`
}

type ExpenseResponse struct {
	Expense *ledger_model.RecurringExpense `json:"expense"`
}

type ExpenseListRequest struct {
	BranchScope
	Status ledger_model.ScheduleStatus `json:"status"`
}

type ExpenseListResponse struct {
	Data []*ledger_model.RecurringExpense `json:"data"`
}

type ExpenseProcessResponse struct {
	Expense *ledger_model.RecurringExpense `json:"expense"`
	Log     *ledger_model.ExpenseProcessLog `json:"log"`
}

type ExpenseDueRequest struct {
	BranchScope
	Now *time.Time `json:"now"`
}

type ExpenseLogsResponse struct {
	Data []*ledger_model.ExpenseProcessLog `json:"data"`
}

type TickRequest struct {
	Now *time.Time `json:"now"`
}

type TickSummary struct {
	Schedules int `json:"schedules"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type TickResponse struct {
	Now       time.Time    `json:"now"`
	Transfers *TickSummary `json:"transfers"`
	Expenses  *TickSummary `json:"expenses"`
}

type SchedulerServiceHandler interface {
	ScheduleCreate(context.Context, *connect.Request[ScheduleCreateRequest]) (*connect.Response[ScheduleResponse], error)
	ScheduleGet(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleResponse], error)
	ScheduleList(context.Context, *connect.Request[ScheduleListRequest]) (*connect.Response[ScheduleListResponse], error)
	SchedulePause(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleResponse], error)
	ScheduleResume(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleResponse], error)
	ScheduleSkip(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleExecuteResponse], error)
	ScheduleExecuteNow(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleExecuteResponse], error)
	ScheduleExecutions(context.Context, *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleExecutionsResponse], error)
	ScheduleUpcoming(context.Context, *connect.Request[ScheduleUpcomingRequest]) (*connect.Response[ScheduleUpcomingResponse], error)
	ExpenseCreate(context.Context, *connect.Request[ExpenseCreateRequest]) (*connect.Response[ExpenseResponse], error)
	ExpenseList(context.Context, *connect.Request[ExpenseListRequest]) (*connect.Response[ExpenseListResponse], error)
	ExpensePause(context.Context, *connect.Request[ExpenseIDRequest]) (*connect.Response[ExpenseResponse], error)
	ExpenseResume(context.Context, *connect.Request[ExpenseIDRequest]) (*connect.Response[ExpenseResponse], error)
	ExpenseSkip(context.Context, *connect.Request[ExpenseIDRequest]) (*connect.Response[ExpenseProcessResponse], error)
	ExpenseProcess(context.Context, *connect.Request[ExpenseIDRequest]) (*connect.Response[ExpenseProcessResponse], error)
	ExpenseDue(context.Context, *connect.Request[ExpenseDueRequest]) (*connect.Response[ExpenseListResponse], error)
	ExpenseLogs(context.Context, *connect.Request[ExpenseIDRequest]) (*connect.Response[ExpenseLogsResponse], error)
	Tick(context.Context, *connect.Request[TickRequest]) (*connect.Response[TickResponse], error)
}

func NewSchedulerServiceHandler(svc SchedulerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mountUnary(mux, SchedulerServiceScheduleCreateProcedure, svc.ScheduleCreate, opts)
	mountUnary(mux, SchedulerServiceScheduleGetProcedure, svc.ScheduleGet, opts)
	mountUnary(mux, SchedulerServiceScheduleListProcedure, svc.ScheduleList, opts)
	mountUnary(mux, SchedulerServiceSchedulePauseProcedure, svc.SchedulePause, opts)
	mountUnary(mux, SchedulerServiceScheduleResumeProcedure, svc.ScheduleResume, opts)
	mountUnary(mux, SchedulerServiceScheduleSkipProcedure, svc.ScheduleSkip, opts)
	mountUnary(mux, SchedulerServiceScheduleExecuteNowProcedure, svc.ScheduleExecuteNow, opts)
	mountUnary(mux, SchedulerServiceScheduleExecutionsProcedure, svc.ScheduleExecutions, opts)
	mountUnary(mux, SchedulerServiceScheduleUpcomingProcedure, svc.ScheduleUpcoming, opts)
	mountUnary(mux, SchedulerServiceExpenseCreateProcedure, svc.ExpenseCreate, opts)
	mountUnary(mux, SchedulerServiceExpenseListProcedure, svc.ExpenseList, opts)
	mountUnary(mux, SchedulerServiceExpensePauseProcedure, svc.ExpensePause, opts)
	mountUnary(mux, SchedulerServiceExpenseResumeProcedure, svc.ExpenseResume, opts)
	mountUnary(mux, SchedulerServiceExpenseSkipProcedure, svc.ExpenseSkip, opts)
	mountUnary(mux, SchedulerServiceExpenseProcessProcedure, svc.ExpenseProcess, opts)
	mountUnary(mux, SchedulerServiceExpenseDueProcedure, svc.ExpenseDue, opts)
	mountUnary(mux, SchedulerServiceExpenseLogsProcedure, svc.ExpenseLogs, opts)
	mountUnary(mux, SchedulerServiceTickProcedure, svc.Tick, opts)
	return "/" + SchedulerServiceName + "/", mux
}

// SchedulerServiceClient only carries the calls used by operators and the
// tick runner.
type SchedulerServiceClient struct {
	scheduleCreate     *connect.Client[ScheduleCreateRequest, ScheduleResponse]
	scheduleExecuteNow *connect.Client[ScheduleIDRequest, ScheduleExecuteResponse]
	scheduleExecutions *connect.Client[ScheduleIDRequest, ScheduleExecutionsResponse]
	expenseCreate      *connect.Client[ExpenseCreateRequest, ExpenseResponse]
	expenseDue         *connect.Client[ExpenseDueRequest, ExpenseListResponse]
	tick               *connect.Client[TickRequest, TickResponse]
}

func NewSchedulerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SchedulerServiceClient {
	return &SchedulerServiceClient{
		scheduleCreate:     newUnaryClient[ScheduleCreateRequest, ScheduleResponse](httpClient, baseURL, SchedulerServiceScheduleCreateProcedure, opts),
		scheduleExecuteNow: newUnaryClient[ScheduleIDRequest, ScheduleExecuteResponse](httpClient, baseURL, SchedulerServiceScheduleExecuteNowProcedure, opts),
		scheduleExecutions: newUnaryClient[ScheduleIDRequest, ScheduleExecutionsResponse](httpClient, baseURL, SchedulerServiceScheduleExecutionsProcedure, opts),
		expenseCreate:      newUnaryClient[ExpenseCreateRequest, ExpenseResponse](httpClient, baseURL, SchedulerServiceExpenseCreateProcedure, opts),
		expenseDue:         newUnaryClient[ExpenseDueRequest, ExpenseListResponse](httpClient, baseURL, SchedulerServiceExpenseDueProcedure, opts),
		tick:               newUnaryClient[TickRequest, TickResponse](httpClient, baseURL, SchedulerServiceTickProcedure, opts),
	}
}

func (c *SchedulerServiceClient) ScheduleCreate(ctx context.Context, req *connect.Request[ScheduleCreateRequest]) (*connect.Response[ScheduleResponse], error) {
	return c.scheduleCreate.CallUnary(ctx, req)
}

func (c *SchedulerServiceClient) ScheduleExecuteNow(ctx context.Context, req *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleExecuteResponse], error) {
	return c.scheduleExecuteNow.CallUnary(ctx, req)
}

func (c *SchedulerServiceClient) ScheduleExecutions(ctx context.Context, req *connect.Request[ScheduleIDRequest]) (*connect.Response[ScheduleExecutionsResponse], error) {
	return c.scheduleExecutions.CallUnary(ctx, req)
}

func (c *SchedulerServiceClient) ExpenseCreate(ctx context.Context, req *connect.Request[ExpenseCreateRequest]) (*connect.Response[ExpenseResponse], error) {
	return c.expenseCreate.CallUnary(ctx, req)
}

func (c *SchedulerServiceClient) ExpenseDue(ctx context.Context, req *connect.Request[ExpenseDueRequest]) (*connect.Response[ExpenseListResponse], error) {
	return c.expenseDue.CallUnary(ctx, req)
}

func (c *SchedulerServiceClient) Tick(ctx context.Context, req *connect.Request[TickRequest]) (*connect.Response[TickResponse], error) {
	return c.tick.CallUnary(ctx, req)
}
