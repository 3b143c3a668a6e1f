package ledger_core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pdcgo/ledger_service/ledger_core"
	"github.com/pdcgo/ledger_service/ledger_mock"
	"github.com/pdcgo/shared/pkg/moretest"
	"github.com/pdcgo/shared/pkg/moretest/moretest_mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConcurrentWriters(t *testing.T) {
	var db gorm.DB

	till := ledger_core.FinanceAccount{Name: "Till", BranchID: 1, Balance: ledger_mock.Amount("100")}
	branch := ledger_core.NewBranchContext(1, 1)

	moretest.Suite(t, "testing concurrent writers",
		moretest.SetupListFunc{
			moretest_mock.MockSqliteDatabase(&db),
			ledger_mock.Migrate(&db),
			ledger_mock.SeedAccount(&db, &till),
		},
		func(t *testing.T) {
			t.Run("one account many writers", func(t *testing.T) {
				previous := ledger_core.SetMaxRetry(10)
				defer ledger_core.SetMaxRetry(previous)

				writers := 8
				var wg sync.WaitGroup
				var mu sync.Mutex
				success := 0
				var failures []error

				for i := 0; i < writers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()

						_, err := ledger_core.PostTransaction(context.Background(), &db, branch, &ledger_core.EntryPayload{
							AccountID:   till.ID,
							Type:        ledger_core.PaymentReceived,
							Amount:      ledger_mock.Amount("1"),
							Description: fmt.Sprintf("Counter sale %d", i),
						})

						mu.Lock()
						defer mu.Unlock()
						if err != nil {
							failures = append(failures, err)
							return
						}
						success++
					}(i)
				}
				wg.Wait()

				assert.Equal(t, writers, success+len(failures))
				for _, err := range failures {
					var conflict *ledger_core.ConcurrencyConflictError
					assert.True(t, errors.As(err, &conflict), err)
				}

				acc := ledger_core.FinanceAccount{}
				assert.Nil(t, db.First(&acc, till.ID).Error)
				want := ledger_mock.Amount("100").Add(decimal.NewFromInt(int64(success)))
				assert.True(t, want.Equal(acc.Balance), acc.Balance.String())

				var rows int64
				assert.Nil(t, db.Model(&ledger_core.AccountTransaction{}).Where("account_id = ?", till.ID).Count(&rows).Error)
				assert.Equal(t, int64(success), rows)

				report, err := ledger_core.AuditAccount(t.Context(), &db, till.ID)
				assert.Nil(t, err)
				assert.True(t, report.Ok(), report.Issues)
			})

			t.Run("handlers registered while units commit", func(t *testing.T) {
				var wg sync.WaitGroup

				for i := 0; i < 4; i++ {
					wg.Add(2)
					go func(i int) {
						defer wg.Done()
						remove := ledger_core.RegisterCustomHandler(fmt.Sprintf("watch_%d", i), func(ctx context.Context, bookmng ledger_core.BookManage) error {
							return nil
						})
						remove()
					}(i)
					go func() {
						defer wg.Done()
						err := ledger_core.OpenTransaction(context.Background(), &db, func(tx *gorm.DB, bookmng ledger_core.BookManage) error {
							bookmng.Touch("noop")
							return nil
						})
						assert.Nil(t, err)
					}()
				}
				wg.Wait()
			})

			t.Run("retry bound floors at one", func(t *testing.T) {
				previous := ledger_core.SetMaxRetry(0)
				defer ledger_core.SetMaxRetry(previous)

				assert.Equal(t, 1, ledger_core.MaxRetry())
			})
		},
	)
}
