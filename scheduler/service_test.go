package scheduler_test

import (
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_iface"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/scheduler"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestSchedulerService(t *testing.T) {
	var db gorm.DB

	till := ledger_core.FinanceAccount{Name: "Till", BranchID: 3, Balance: ledger_mock.Amount("1000")}
	safe := ledger_core.FinanceAccount{Name: "Safe", BranchID: 3}

	now := time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC)
	scope := ledger_iface.BranchScope{BranchID: 3, UserID: 9}

	moretest.Suite(t, "testing scheduler service",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &till),
			ledger_mock.SeedAccount(&db, &safe),
		},
		func(t *testing.T) {
			srv := scheduler.NewSchedulerService(&db, clock.Fixed(now), 5)

			var sweep *ledger_model.ScheduledTransfer
			var cleaning *ledger_model.RecurringExpense

			t.Run("create through rpc", func(t *testing.T) {
				res, err := srv.ScheduleCreate(t.Context(), connect.NewRequest(&ledger_iface.ScheduleCreateRequest{
					BranchScope:          scope,
					SourceAccountID:      till.ID,
					DestinationAccountID: safe.ID,
					Amount:               ledger_mock.Amount("100"),
					Description:          "nightly sweep",
					ReferencePrefix:      "SWP",
					Frequency:            ledger_model.Daily,
					StartDate:            day(2025, 3, 1),
					AutoExecute:          true,
				}))
				assert.Nil(t, err)
				sweep = res.Msg.Schedule
				assert.Equal(t, ledger_model.ScheduleActive, sweep.Status)

				exp, err := srv.ExpenseCreate(t.Context(), connect.NewRequest(&ledger_iface.ExpenseCreateRequest{
					BranchScope: scope,
					Name:        "Cleaning",
					VendorName:  "Sparkle Ltd",
					AccountID:   till.ID,
					Amount:      ledger_mock.Amount("50"),
					Frequency:   ledger_model.Weekly,
					StartDate:   day(2025, 3, 1),
					AutoProcess: true,
				}))
				assert.Nil(t, err)
				cleaning = exp.Msg.Expense
			})

			t.Run("tick runs every due occurrence", func(t *testing.T) {
				res, err := srv.Tick(t.Context(), connect.NewRequest(&ledger_iface.TickRequest{}))
				assert.Nil(t, err)

				assert.Equal(t, now, res.Msg.Now)
				assert.Equal(t, 1, res.Msg.Transfers.Schedules)
				assert.Equal(t, 3, res.Msg.Transfers.Succeeded)
				assert.Equal(t, 0, res.Msg.Transfers.Failed)
				assert.Equal(t, 1, res.Msg.Expenses.Succeeded)

				assert.Equal(t, "650", balanceOf(t, &db, till.ID))
				assert.Equal(t, "300", balanceOf(t, &db, safe.ID))
			})

			t.Run("second tick is a no-op", func(t *testing.T) {
				res, err := srv.Tick(t.Context(), connect.NewRequest(&ledger_iface.TickRequest{}))
				assert.Nil(t, err)
				assert.Equal(t, 0, res.Msg.Transfers.Schedules)
				assert.Equal(t, 0, res.Msg.Expenses.Succeeded)
				assert.Equal(t, "650", balanceOf(t, &db, till.ID))
			})

			t.Run("executions and logs", func(t *testing.T) {
				execs, err := srv.ScheduleExecutions(t.Context(), connect.NewRequest(&ledger_iface.ScheduleIDRequest{
					BranchScope: scope,
					ScheduleID:  sweep.ID,
				}))
				assert.Nil(t, err)
				assert.Len(t, execs.Msg.Data, 3)

				logs, err := srv.ExpenseLogs(t.Context(), connect.NewRequest(&ledger_iface.ExpenseIDRequest{
					BranchScope: scope,
					ExpenseID:   cleaning.ID,
				}))
				assert.Nil(t, err)
				assert.Len(t, logs.Msg.Data, 1)

				got, err := srv.ScheduleGet(t.Context(), connect.NewRequest(&ledger_iface.ScheduleIDRequest{
					BranchScope: scope,
					ScheduleID:  sweep.ID,
				}))
				assert.Nil(t, err)
				assert.Equal(t, "2025-03-04", dateOf(got.Msg.Schedule.NextExecutionDate))
			})

			t.Run("explicit now overrides clock", func(t *testing.T) {
				later := time.Date(2025, 3, 4, 6, 0, 0, 0, time.UTC)
				res, err := srv.Tick(t.Context(), connect.NewRequest(&ledger_iface.TickRequest{Now: &later}))
				assert.Nil(t, err)
				assert.Equal(t, 1, res.Msg.Transfers.Succeeded)
				assert.Equal(t, "550", balanceOf(t, &db, till.ID))
			})

			t.Run("paused schedule is listed by status", func(t *testing.T) {
				_, err := srv.SchedulePause(t.Context(), connect.NewRequest(&ledger_iface.ScheduleIDRequest{
					BranchScope: scope,
					ScheduleID:  sweep.ID,
				}))
				assert.Nil(t, err)

				list, err := srv.ScheduleList(t.Context(), connect.NewRequest(&ledger_iface.ScheduleListRequest{
					BranchScope: scope,
					Status:      ledger_model.SchedulePaused,
				}))
				assert.Nil(t, err)
				assert.Len(t, list.Msg.Data, 1)

				other, err := srv.ScheduleList(t.Context(), connect.NewRequest(&ledger_iface.ScheduleListRequest{
					BranchScope: ledger_iface.BranchScope{BranchID: 4},
				}))
				assert.Nil(t, err)
				assert.Len(t, other.Msg.Data, 0)
			})
		},
	)
}
