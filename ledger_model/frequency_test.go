package ledger_model_test

import (
	"testing"
	"time"

	"github.com/pdcgo/ledger_service/ledger_model"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyNext(t *testing.T) {
	start := date(2024, time.January, 31)

	t.Run("monthly clamps to month end and recovers anchor day", func(t *testing.T) {
		next := ledger_model.Monthly.Next(start, start)
		assert.Equal(t, date(2024, time.February, 29), next)

		next = ledger_model.Monthly.Next(start, next)
		assert.Equal(t, date(2024, time.March, 31), next)

		next = ledger_model.Monthly.Next(start, next)
		assert.Equal(t, date(2024, time.April, 30), next)
	})

	t.Run("quarterly and yearly", func(t *testing.T) {
		assert.Equal(t, date(2024, time.April, 30), ledger_model.Quarterly.Next(start, start))

		leap := date(2024, time.February, 29)
		next := ledger_model.Yearly.Next(leap, leap)
		assert.Equal(t, date(2025, time.February, 28), next)
		assert.Equal(t, date(2028, time.February, 29), ledger_model.Yearly.Next(leap, date(2027, time.February, 28)))
	})

	t.Run("day based", func(t *testing.T) {
		d := date(2024, time.December, 30)
		assert.Equal(t, date(2024, time.December, 31), ledger_model.Daily.Next(d, d))
		assert.Equal(t, date(2025, time.January, 6), ledger_model.Weekly.Next(d, d))
		assert.Equal(t, date(2025, time.January, 13), ledger_model.Biweekly.Next(d, d))
	})

	t.Run("occurrences stop at end date", func(t *testing.T) {
		s := date(2024, time.January, 1)
		end := date(2024, time.January, 3)
		list := ledger_model.Occurrences(ledger_model.Daily, s, s, date(2024, time.January, 10), &end, 10)
		assert.Len(t, list, 3)

		list = ledger_model.Occurrences(ledger_model.Daily, s, s, date(2024, time.January, 10), nil, 4)
		assert.Len(t, list, 4)
	})
}

func TestScheduledTransferAdvance(t *testing.T) {
	end := date(2024, time.January, 2)
	sched := ledger_model.ScheduledTransfer{
		Frequency:         ledger_model.Daily,
		StartDate:         date(2024, time.January, 1),
		NextExecutionDate: date(2024, time.January, 1),
		EndDate:           &end,
		IsActive:          true,
		Status:            ledger_model.ScheduleActive,
	}

	assert.True(t, sched.Due(date(2024, time.January, 1)))
	sched.Advance()
	assert.True(t, sched.IsActive)
	assert.Equal(t, date(2024, time.January, 2), sched.NextExecutionDate)

	sched.Advance()
	assert.False(t, sched.IsActive)
	assert.Equal(t, ledger_model.ScheduleExpired, sched.Status)
	assert.False(t, sched.Due(date(2024, time.January, 5)))

	assert.Equal(t, "SCHED-TRF-20240101", sched.Reference(date(2024, time.January, 1)))
}

func TestPurchaseOrderStatus(t *testing.T) {
	po := ledger_model.PurchaseOrder{}
	po.TotalAmountBase = mustDecimal("1000")

	po.RefreshStatus()
	assert.Equal(t, ledger_model.PaymentUnpaid, po.PaymentStatus)

	po.TotalPaid = mustDecimal("400")
	po.RefreshStatus()
	assert.Equal(t, ledger_model.PaymentPartial, po.PaymentStatus)

	po.TotalPaid = mustDecimal("1000")
	po.RefreshStatus()
	assert.Equal(t, ledger_model.PaymentPaid, po.PaymentStatus)
}
