package scheduler_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pdcgo/ledger_service/clock"
	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/pdcgo/ledger_service/scheduler"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOf(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func balanceOf(t *testing.T, db *gorm.DB, id uint) string {
	acc := ledger_core.FinanceAccount{}
	assert.Nil(t, db.First(&acc, id).Error)
	return acc.Balance.String()
}

func TestTransferScheduler(t *testing.T) {
	var db gorm.DB

	cash := ledger_core.FinanceAccount{Name: "Cash", BranchID: 1, Balance: ledger_mock.Amount("1000")}
	bank := ledger_core.FinanceAccount{Name: "Bank", Type: ledger_core.BankAccount, BranchID: 1, Balance: ledger_mock.Amount("500")}

	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	branch := ledger_core.NewBranchContext(1, 5)

	moretest.Suite(t, "testing scheduled transfers",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &cash),
			ledger_mock.SeedAccount(&db, &bank),
		},
		func(t *testing.T) {
			sch := scheduler.NewTransferScheduler(&db, clock.Fixed(now), 3)

			create := func(t *testing.T, sched *ledger_model.ScheduledTransfer) *ledger_model.ScheduledTransfer {
				err := sch.Create(t.Context(), branch, sched)
				assert.Nil(t, err)
				return sched
			}

			t.Run("monthly schedule executes once and advances", func(t *testing.T) {
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("100"),
					Description:          "float top up",
					Frequency:            ledger_model.Monthly,
					StartDate:            day(2025, 1, 15),
					AutoExecute:          true,
				})
				assert.Equal(t, "2025-01-15", dateOf(sched.NextExecutionDate))

				result, err := sch.Tick(t.Context(), now)
				assert.Nil(t, err)
				assert.Equal(t, 1, result.Succeeded)
				assert.Equal(t, 0, result.Failed)

				got, err := sch.Get(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, "2025-02-15", dateOf(got.NextExecutionDate))
				assert.Equal(t, 1, got.ExecutionCount)
				assert.NotNil(t, got.LastExecutedDate)

				assert.Equal(t, "900", balanceOf(t, &db, cash.ID))
				assert.Equal(t, "600", balanceOf(t, &db, bank.ID))

				execs, err := sch.Executions(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Len(t, execs, 1)
				assert.Equal(t, ledger_model.ExecutionSuccess, execs[0].Status)
				assert.Equal(t, "SCHED-TRF-20250115", execs[0].ReferenceNumber)

				out := ledger_core.AccountTransaction{}
				assert.Nil(t, db.First(&out, execs[0].OutTransactionID).Error)
				assert.Equal(t, "SCHED-TRF-20250115", out.ReferenceNumber)
				assert.Equal(t, sched.ID, out.Meta().Transfer.ScheduledTransferID)
				assert.Equal(t, ledger_core.ScheduledTransferEntity, out.RelatedEntityType)

				result, err = sch.Tick(t.Context(), now)
				assert.Nil(t, err)
				assert.Equal(t, 0, result.Succeeded)
			})

			t.Run("failed occurrence keeps its date", func(t *testing.T) {
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:      bank.ID,
					DestinationAccountID: cash.ID,
					Amount:               ledger_mock.Amount("10000"),
					ReferencePrefix:      "SWEEP",
					Frequency:            ledger_model.Monthly,
					StartDate:            day(2025, 1, 15),
					AutoExecute:          true,
				})

				result, err := sch.Tick(t.Context(), now)
				assert.Nil(t, err)
				assert.Equal(t, 1, result.Failed)

				got, err := sch.Get(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, "2025-01-15", dateOf(got.NextExecutionDate))
				assert.Equal(t, 0, got.ExecutionCount)
				assert.Equal(t, "600", balanceOf(t, &db, bank.ID))

				execs, err := sch.Executions(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Len(t, execs, 1)
				assert.Equal(t, ledger_model.ExecutionFailed, execs[0].Status)
				assert.Contains(t, execs[0].ErrorMessage, "insufficient balance")
				assert.Equal(t, "SWEEP-20250115", execs[0].ReferenceNumber)

				_, err = sch.Pause(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
			})

			t.Run("catch up is bounded", func(t *testing.T) {
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("1"),
					Frequency:            ledger_model.Daily,
					StartDate:            day(2025, 1, 25),
					AutoExecute:          true,
				})

				result, err := sch.Tick(t.Context(), now)
				assert.Nil(t, err)
				assert.Equal(t, 3, result.Succeeded)

				got, err := sch.Get(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, "2025-01-28", dateOf(got.NextExecutionDate))
				assert.Equal(t, "897", balanceOf(t, &db, cash.ID))

				_, err = sch.Pause(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
			})

			t.Run("pause skip resume", func(t *testing.T) {
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("5"),
					Frequency:            ledger_model.Weekly,
					StartDate:            day(2025, 1, 30),
					AutoExecute:          true,
				})

				paused, err := sch.Pause(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.SchedulePaused, paused.Status)

				result, err := sch.Tick(t.Context(), now)
				assert.Nil(t, err)
				assert.Equal(t, 0, result.Schedules)

				skipped, exec, err := sch.Skip(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.ExecutionSkipped, exec.Status)
				assert.Equal(t, "2025-02-06", dateOf(skipped.NextExecutionDate))

				resumed, err := sch.Resume(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.True(t, resumed.IsActive)
				assert.Equal(t, ledger_model.ScheduleActive, resumed.Status)

				list, err := sch.List(t.Context(), branch, ledger_model.SchedulePaused)
				assert.Nil(t, err)
				assert.Len(t, list, 2)
			})

			t.Run("execute now until expired", func(t *testing.T) {
				end := day(2025, 1, 1)
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("10"),
					Frequency:            ledger_model.Monthly,
					StartDate:            day(2025, 1, 1),
					EndDate:              &end,
				})

				got, exec, err := sch.ExecuteNow(t.Context(), branch, sched.ID)
				assert.Nil(t, err)
				assert.Equal(t, ledger_model.ExecutionSuccess, exec.Status)
				assert.Equal(t, ledger_model.ScheduleExpired, got.Status)
				assert.False(t, got.IsActive)

				_, _, err = sch.ExecuteNow(t.Context(), branch, sched.ID)
				var expired *ledger_core.ScheduleExpiredError
				assert.True(t, errors.As(err, &expired))

				_, err = sch.Resume(t.Context(), branch, sched.ID)
				assert.True(t, errors.As(err, &expired))
			})

			t.Run("create validation", func(t *testing.T) {
				err := sch.Create(t.Context(), branch, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: cash.ID,
					Amount:               ledger_mock.Amount("1"),
					Frequency:            ledger_model.Daily,
					StartDate:            day(2025, 1, 1),
				})
				var verr *ledger_core.ValidationError
				assert.True(t, errors.As(err, &verr))

				err = sch.Create(t.Context(), branch, &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("1"),
					Frequency:            "fortnightly",
					StartDate:            day(2025, 1, 1),
				})
				assert.True(t, errors.As(err, &verr))
				assert.Equal(t, "frequency", verr.Field)

				err = sch.Create(t.Context(), ledger_core.NewBranchContext(2, 1), &ledger_model.ScheduledTransfer{
					SourceAccountID:      cash.ID,
					DestinationAccountID: bank.ID,
					Amount:               ledger_mock.Amount("1"),
					Frequency:            ledger_model.Daily,
					StartDate:            day(2025, 1, 1),
				})
				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})

			t.Run("upcoming notifications", func(t *testing.T) {
				sched := create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:        cash.ID,
					DestinationAccountID:   bank.ID,
					Amount:                 ledger_mock.Amount("20"),
					Frequency:              ledger_model.Monthly,
					StartDate:              day(2025, 2, 4),
					NotificationEnabled:    true,
					NotificationDaysBefore: 5,
				})
				create(t, &ledger_model.ScheduledTransfer{
					SourceAccountID:        cash.ID,
					DestinationAccountID:   bank.ID,
					Amount:                 ledger_mock.Amount("20"),
					Frequency:              ledger_model.Monthly,
					StartDate:              day(2025, 3, 4),
					NotificationEnabled:    true,
					NotificationDaysBefore: 5,
				})

				upcoming, err := sch.Upcoming(t.Context(), branch, now)
				assert.Nil(t, err)
				assert.Len(t, upcoming, 1)
				assert.Equal(t, sched.ID, upcoming[0].Schedule.ID)
				assert.Equal(t, 3, upcoming[0].DaysUntil)
			})

			t.Run("other branch cannot see schedules", func(t *testing.T) {
				_, err := sch.Get(t.Context(), ledger_core.NewBranchContext(2, 1), 1)
				var notfound *ledger_core.NotFoundError
				assert.True(t, errors.As(err, &notfound))
			})

			t.Run("ledger stays consistent", func(t *testing.T) {
				for _, id := range []uint{cash.ID, bank.ID} {
					report, err := ledger_core.AuditAccount(t.Context(), &db, id)
					assert.Nil(t, err)
					assert.True(t, report.Ok(), report.Issues)
				}
			})
		},
	)
}
